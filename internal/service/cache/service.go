package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kapu/youtube-data-go/internal/constants"
	"github.com/kapu/youtube-data-go/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// CacheService is a JSON document store on top of Redis.
type CacheService struct {
	client *redis.Client
	logger *zap.Logger
}

type CacheConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

func (c CacheConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// NewCacheService dials Redis and waits until it answers a PING.
func NewCacheService(cfg CacheConfig, logger *zap.Logger) (*CacheService, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  constants.RedisConfig.ReadyTimeout,
		ReadTimeout:  constants.RedisConfig.IOTimeout,
		WriteTimeout: constants.RedisConfig.IOTimeout,
		PoolSize:     constants.RedisConfig.PoolSize,
	})
	svc := NewCacheServiceFromClient(client, logger)

	if err := svc.WaitUntilReady(context.Background(), constants.RedisConfig.ReadyTimeout); err != nil {
		_ = client.Close()
		return nil, errors.NewCacheError("failed to connect to Redis", "ping", cfg.Addr(), err)
	}

	svc.logger.Info("Redis connected",
		zap.String("addr", cfg.Addr()),
		zap.Int("db", cfg.DB))
	return svc, nil
}

// NewCacheServiceFromClient wraps an existing client without pinging it.
func NewCacheServiceFromClient(client *redis.Client, logger *zap.Logger) *CacheService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{client: client, logger: logger}
}

// Get decodes the document at key into dest and reports whether it existed.
func (c *CacheService) Get(ctx context.Context, key string, dest any) (bool, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, errors.NewCacheError("get failed", "get", key, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, errors.NewCacheError("stored document is not valid JSON", "get", key, err)
	}
	return true, nil
}

// Set stores value as JSON. A ttl of zero keeps the key forever.
func (c *CacheService) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return errors.NewCacheError("marshal failed", "set", key, err)
	}
	if err := c.client.Set(ctx, key, raw, max(ttl, 0)).Err(); err != nil {
		return errors.NewCacheError("set failed", "set", key, err)
	}
	return nil
}

// Del removes keys and returns how many existed.
func (c *CacheService) Del(ctx context.Context, keys ...string) (int64, error) {
	if len(keys) == 0 {
		return 0, nil
	}
	deleted, err := c.client.Del(ctx, keys...).Result()
	if err != nil {
		return 0, errors.NewCacheError("delete failed", "del", fmt.Sprintf("%d keys", len(keys)), err)
	}
	return deleted, nil
}

// Scan collects every key matching pattern without blocking the server.
func (c *CacheService) Scan(ctx context.Context, pattern string) ([]string, error) {
	var keys []string
	iter := c.client.Scan(ctx, 0, pattern, constants.RedisConfig.ScanCount).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, errors.NewCacheError("scan failed", "scan", pattern, err)
	}
	return keys, nil
}

func (c *CacheService) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// WaitUntilReady pings every 100ms until Redis answers or timeout elapses.
func (c *CacheService) WaitUntilReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		err := c.Ping(ctx)
		if err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("redis not ready after %s: %w", timeout, err)
		case <-ticker.C:
		}
	}
}

func (c *CacheService) Close() error {
	if err := c.client.Close(); err != nil {
		c.logger.Warn("Failed to close Redis connection", zap.Error(err))
		return err
	}
	return nil
}
