package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/kapu/youtube-data-go/internal/constants"
	"go.uber.org/zap"
)

// Report kinds, used as the middle segment of report keys.
const (
	KindVideo    = "video"
	KindPlaylist = "playlist"
	KindChannel  = "channel"
)

// ReportKey returns ytdata:report:<kind>:<sha1(url)>.
func ReportKey(kind, url string) string {
	sum := sha1.Sum([]byte(url))
	return fmt.Sprintf("%s:%s:%s", constants.CacheKeys.ReportPrefix, kind, hex.EncodeToString(sum[:]))
}

// ReportCache stores whole reports keyed by the URL they were built from.
// Failures are logged and reported as misses; they never fail a report.
type ReportCache struct {
	cache  *CacheService
	ttl    time.Duration
	logger *zap.Logger
}

func NewReportCache(cache *CacheService, ttl time.Duration, logger *zap.Logger) *ReportCache {
	if ttl <= 0 {
		ttl = constants.CacheTTL.Report
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportCache{cache: cache, ttl: ttl, logger: logger}
}

// Load decodes the cached report into dest and reports whether it was found.
func (r *ReportCache) Load(ctx context.Context, kind, url string, dest any) bool {
	key := ReportKey(kind, url)

	found, err := r.cache.Get(ctx, key, dest)
	if err != nil {
		r.logger.Warn("Cached report unreadable, ignoring",
			zap.String("kind", kind),
			zap.String("key", key),
			zap.Error(err))
		return false
	}
	if !found {
		return false
	}

	r.logger.Debug("Report cache hit", zap.String("kind", kind), zap.String("url", url))
	return true
}

func (r *ReportCache) Store(ctx context.Context, kind, url string, report any) {
	key := ReportKey(kind, url)
	if err := r.cache.Set(ctx, key, report, r.ttl); err != nil {
		r.logger.Warn("Failed to cache report",
			zap.String("kind", kind),
			zap.String("key", key),
			zap.Error(err))
	}
}

func (r *ReportCache) Forget(ctx context.Context, kind, url string) {
	if _, err := r.cache.Del(ctx, ReportKey(kind, url)); err != nil {
		r.logger.Warn("Failed to drop cached report", zap.String("kind", kind), zap.Error(err))
	}
}

// Clear deletes every cached report of kind, or of all kinds when kind is "".
func (r *ReportCache) Clear(ctx context.Context, kind string) (int64, error) {
	pattern := constants.CacheKeys.ReportPrefix + ":*"
	if kind != "" {
		pattern = fmt.Sprintf("%s:%s:*", constants.CacheKeys.ReportPrefix, kind)
	}

	keys, err := r.cache.Scan(ctx, pattern)
	if err != nil {
		return 0, err
	}
	deleted, err := r.cache.Del(ctx, keys...)
	if err != nil {
		return 0, err
	}

	r.logger.Info("Report cache cleared",
		zap.String("kind", kind),
		zap.Int64("deleted", deleted))
	return deleted, nil
}
