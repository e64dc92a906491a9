package collector

import (
	"context"
	"time"

	"github.com/kapu/youtube-data-go/internal/domain"
	"github.com/kapu/youtube-data-go/pkg/errors"
	"go.uber.org/zap"
)

type Options struct {
	MaxPages         int
	BatchConcurrency int
	// Now supplies extraction timestamps. Defaults to time.Now in UTC.
	Now func() time.Time
}

// Collector builds video, playlist and channel reports from a Client.
// It holds no per-call state and is safe for concurrent use.
type Collector struct {
	client    Client
	paginator *Paginator
	batch     *BatchFetcher
	logger    *zap.Logger
	now       func() time.Time
}

func New(client Client, logger *zap.Logger, opts Options) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	now := opts.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}

	return &Collector{
		client:    client,
		paginator: NewPaginator(opts.MaxPages, logger),
		batch:     NewBatchFetcher(client, opts.BatchConcurrency, logger),
		logger:    logger,
		now:       now,
	}
}

// ResolveHandle looks a handle up through the channel-by-handle list call.
func (c *Collector) ResolveHandle(ctx context.Context, handle string) (string, error) {
	page, err := c.client.ListPage(ctx, KindChannelByHandle, handle, "", 1)
	if err != nil {
		return "", asUpstream("channels.list", err)
	}
	if page == nil || len(page.Items) == 0 || page.Items[0].ID == "" {
		return "", errors.NewNotFoundError("channel handle", "@"+handle)
	}
	return page.Items[0].ID, nil
}

func (c *Collector) listPlaylistItems(ctx context.Context, playlistID, cursor string, pageSize int64) (*Page, error) {
	return c.client.ListPage(ctx, KindPlaylistItems, playlistID, cursor, pageSize)
}

// fetchPlaylist paginates a playlist and joins in batched statistics.
func (c *Collector) fetchPlaylist(ctx context.Context, playlistID string) ([]domain.PlaylistEntry, map[string]domain.Statistics, error) {
	items, err := c.paginator.FetchAll(ctx, c.listPlaylistItems, playlistID)
	if err != nil {
		return nil, nil, err
	}
	entries := EntriesFromPage(items)

	stats, err := c.batch.FetchStats(ctx, VideoIDs(entries))
	if err != nil {
		return nil, nil, err
	}
	return entries, stats, nil
}
