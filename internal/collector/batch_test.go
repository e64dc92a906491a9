package collector

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/kapu/youtube-data-go/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFetchStatsSplitsIntoBatchesOf50(t *testing.T) {
	client := newFakeClient()
	ids := client.seedPlaylist("UU1", 120, time.Now())

	stats, err := NewBatchFetcher(client, 1, zap.NewNop()).FetchStats(context.Background(), ids)
	require.NoError(t, err)

	assert.Equal(t, []int{50, 50, 20}, client.batchSizes())
	assert.Equal(t, ids[:50], client.batchCalls[0])
	assert.Equal(t, ids[100:], client.batchCalls[2])

	assert.LessOrEqual(t, len(stats), 120)
	requested := make(map[string]bool, len(ids))
	for _, id := range ids {
		requested[id] = true
	}
	for id := range stats {
		assert.True(t, requested[id], "unexpected key %s", id)
	}
}

func TestFetchStatsOmitsMissingIDs(t *testing.T) {
	client := newFakeClient()
	ids := client.seedPlaylist("UU1", 10, time.Now())
	delete(client.stats, "v3")
	delete(client.stats, "v7")

	stats, err := NewBatchFetcher(client, 1, nil).FetchStats(context.Background(), ids)
	require.NoError(t, err)
	assert.Len(t, stats, 8)
	_, ok := stats["v3"]
	assert.False(t, ok)
}

func TestFetchStatsConcurrentMatchesSequential(t *testing.T) {
	client := newFakeClient()
	ids := client.seedPlaylist("UU1", 275, time.Now())

	sequential, err := NewBatchFetcher(client, 1, nil).FetchStats(context.Background(), ids)
	require.NoError(t, err)

	concurrent, err := NewBatchFetcher(client, 4, nil).FetchStats(context.Background(), ids)
	require.NoError(t, err)

	assert.Equal(t, sequential, concurrent)
	assert.Len(t, client.batchCalls, 12)
}

func TestFetchStatsAbortsOnChunkFailure(t *testing.T) {
	client := newFakeClient()
	ids := client.seedPlaylist("UU1", 120, time.Now())
	client.failBatch = 2
	client.batchErr = fmt.Errorf("backend error")

	stats, err := NewBatchFetcher(client, 1, nil).FetchStats(context.Background(), ids)
	require.Error(t, err)
	assert.Nil(t, stats)
	assert.True(t, errors.IsUpstream(err))
	assert.ErrorIs(t, err, client.batchErr)
}

func TestFetchStatsEmpty(t *testing.T) {
	client := newFakeClient()

	stats, err := NewBatchFetcher(client, 1, nil).FetchStats(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, stats)
	assert.Empty(t, client.batchCalls)
}

func TestChunk(t *testing.T) {
	ids := make([]string, 101)
	for i := range ids {
		ids[i] = fmt.Sprint(i)
	}

	chunks := Chunk(ids, 50)
	require.Len(t, chunks, 3)
	assert.Len(t, chunks[0], 50)
	assert.Len(t, chunks[1], 50)
	assert.Equal(t, []string{"100"}, chunks[2])

	assert.Empty(t, Chunk(nil, 50))
}
