package collector

import (
	"context"
	"sync"

	"github.com/kapu/youtube-data-go/internal/constants"
	"github.com/kapu/youtube-data-go/internal/domain"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

// BatchFetcher fetches statistics for many videos, at most 50 ids per call.
type BatchFetcher struct {
	client      Client
	batchSize   int
	concurrency int
	logger      *zap.Logger
}

func NewBatchFetcher(client Client, concurrency int, logger *zap.Logger) *BatchFetcher {
	if concurrency <= 0 {
		concurrency = constants.BatchConfig.DefaultConcurrency
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BatchFetcher{
		client:      client,
		batchSize:   constants.BatchConfig.MaxIDsPerCall,
		concurrency: concurrency,
		logger:      logger,
	}
}

// FetchStats returns statistics keyed by video id. Ids the API did not return
// are absent from the map. The first failing chunk aborts the whole call.
func (b *BatchFetcher) FetchStats(ctx context.Context, ids []string) (map[string]domain.Statistics, error) {
	result := make(map[string]domain.Statistics, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	chunks := Chunk(ids, b.batchSize)
	var mu sync.Mutex

	p := pool.New().
		WithMaxGoroutines(b.concurrency).
		WithContext(ctx).
		WithCancelOnError().
		WithFirstError()

	for i, chunk := range chunks {
		p.Go(func(ctx context.Context) error {
			if err := ctx.Err(); err != nil {
				return asUpstream("videos.list", err)
			}

			items, err := b.client.GetBatchStatistics(ctx, chunk)
			if err != nil {
				b.logger.Error("Statistics batch failed",
					zap.Int("batch", i),
					zap.Int("batch_size", len(chunk)),
					zap.Error(err))
				return asUpstream("videos.list", err)
			}

			mu.Lock()
			for _, item := range items {
				result[item.ID] = item.Statistics
			}
			mu.Unlock()
			return nil
		})
	}

	if err := p.Wait(); err != nil {
		return nil, err
	}

	b.logger.Debug("Statistics fetched",
		zap.Int("requested", len(ids)),
		zap.Int("returned", len(result)),
		zap.Int("batches", len(chunks)))

	return result, nil
}

// Chunk splits ids into contiguous slices of at most size elements.
func Chunk(ids []string, size int) [][]string {
	chunks := make([][]string, 0, (len(ids)+size-1)/size)
	for i := 0; i < len(ids); i += size {
		end := min(i+size, len(ids))
		chunks = append(chunks, ids[i:end])
	}
	return chunks
}
