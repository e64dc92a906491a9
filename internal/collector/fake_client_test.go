package collector

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/kapu/youtube-data-go/internal/domain"
	"github.com/kapu/youtube-data-go/pkg/errors"
)

type listCall struct {
	kind     ResourceKind
	id       string
	cursor   string
	pageSize int64
}

type fakeClient struct {
	mu sync.Mutex

	videos    map[string]*VideoItem
	playlists map[string][]PageItem
	handles   map[string]string
	stats     map[string]domain.Statistics
	channels  map[string]*ChannelItem

	// failBatch makes the n-th GetBatchStatistics call (1-based) fail.
	failBatch int
	batchErr  error

	listCalls  []listCall
	batchCalls [][]string
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		videos:    map[string]*VideoItem{},
		playlists: map[string][]PageItem{},
		handles:   map[string]string{},
		stats:     map[string]domain.Statistics{},
		channels:  map[string]*ChannelItem{},
	}
}

func (f *fakeClient) GetVideo(_ context.Context, videoID string) (*VideoItem, error) {
	item, ok := f.videos[videoID]
	if !ok {
		return nil, errors.NewNotFoundError("video", videoID)
	}
	return item, nil
}

func (f *fakeClient) ListPage(_ context.Context, kind ResourceKind, resourceID, cursor string, pageSize int64) (*Page, error) {
	f.mu.Lock()
	f.listCalls = append(f.listCalls, listCall{kind: kind, id: resourceID, cursor: cursor, pageSize: pageSize})
	f.mu.Unlock()

	switch kind {
	case KindChannelByHandle:
		id, ok := f.handles[resourceID]
		if !ok {
			return &Page{}, nil
		}
		return &Page{Items: []PageItem{{ID: id}}}, nil
	case KindPlaylistItems:
		items, ok := f.playlists[resourceID]
		if !ok {
			return nil, errors.NewNotFoundError("playlist", resourceID)
		}
		offset := 0
		if cursor != "" {
			offset, _ = strconv.Atoi(cursor)
		}
		end := min(offset+int(pageSize), len(items))
		page := &Page{Items: items[offset:end]}
		if end < len(items) {
			page.NextCursor = strconv.Itoa(end)
		}
		return page, nil
	}
	return nil, fmt.Errorf("unexpected kind %q", kind)
}

func (f *fakeClient) GetBatchStatistics(_ context.Context, videoIDs []string) ([]StatisticsItem, error) {
	f.mu.Lock()
	f.batchCalls = append(f.batchCalls, append([]string(nil), videoIDs...))
	call := len(f.batchCalls)
	f.mu.Unlock()

	if f.failBatch > 0 && call == f.failBatch {
		return nil, f.batchErr
	}

	items := make([]StatisticsItem, 0, len(videoIDs))
	for _, id := range videoIDs {
		if s, ok := f.stats[id]; ok {
			items = append(items, StatisticsItem{ID: id, Statistics: s})
		}
	}
	return items, nil
}

func (f *fakeClient) GetChannel(_ context.Context, channelID string) (*ChannelItem, error) {
	item, ok := f.channels[channelID]
	if !ok {
		return nil, errors.NewNotFoundError("channel", channelID)
	}
	return item, nil
}

func (f *fakeClient) batchSizes() []int {
	sizes := make([]int, 0, len(f.batchCalls))
	for _, c := range f.batchCalls {
		sizes = append(sizes, len(c))
	}
	return sizes
}

// seedPlaylist registers n videos v0..v{n-1}. Publish dates run backwards so
// the API order is newest first, the way uploads playlists are returned.
func (f *fakeClient) seedPlaylist(playlistID string, n int, base time.Time) []string {
	ids := make([]string, 0, n)
	items := make([]PageItem, 0, n)
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("v%d", i)
		ids = append(ids, id)
		items = append(items, PageItem{
			ID:      "item-" + id,
			VideoID: id,
			Snippet: Snippet{
				Title:       "Video " + id,
				PublishedAt: base.Add(-time.Duration(i) * time.Hour),
				Thumbnails:  domain.Thumbnails{High: &domain.Thumbnail{URL: "https://i.ytimg.com/" + id + "/hq.jpg"}},
			},
		})
		f.stats[id] = domain.Statistics{Views: uint64(100 * (i + 1)), Likes: uint64(i), Comments: 1}
	}
	f.playlists[playlistID] = items
	return ids
}

func (f *fakeClient) playlistCalls() int {
	n := 0
	for _, c := range f.listCalls {
		if c.kind == KindPlaylistItems {
			n++
		}
	}
	return n
}
