package collector

import (
	"context"
	"time"

	"github.com/kapu/youtube-data-go/internal/domain"
)

// ResourceKind selects the list endpoint behind Client.ListPage.
type ResourceKind string

const (
	KindPlaylistItems   ResourceKind = "playlistItems"
	KindChannelByHandle ResourceKind = "channelByHandle"
)

// Snippet is the descriptive metadata block of a resource.
type Snippet struct {
	Title       string
	Description string
	PublishedAt time.Time
	Thumbnails  domain.Thumbnails
}

type VideoItem struct {
	ID         string
	Snippet    Snippet
	Statistics domain.Statistics
}

type StatisticsItem struct {
	ID         string
	Statistics domain.Statistics
}

// PageItem is one entry of a list page. For playlist items VideoID names the
// referenced video; for handle lookups ID is the channel id.
type PageItem struct {
	ID      string
	VideoID string
	Snippet Snippet
}

// Page is one page of a list call. An empty NextCursor ends pagination.
type Page struct {
	Items      []PageItem
	NextCursor string
}

type ChannelStatistics struct {
	Subscribers uint64
	Views       uint64
	Videos      uint64
}

type ChannelItem struct {
	ID                string
	Snippet           Snippet
	Statistics        ChannelStatistics
	BannerURL         *string
	UploadsPlaylistID string
}

// Client is the API capability the collector depends on. Implementations
// must be safe for concurrent use.
type Client interface {
	// GetVideo returns snippet and statistics, or a NotFoundError.
	GetVideo(ctx context.Context, videoID string) (*VideoItem, error)
	ListPage(ctx context.Context, kind ResourceKind, resourceID, cursor string, pageSize int64) (*Page, error)
	// GetBatchStatistics accepts at most 50 ids. Unknown ids are omitted.
	GetBatchStatistics(ctx context.Context, videoIDs []string) ([]StatisticsItem, error)
	// GetChannel returns snippet, statistics, branding and content details, or a NotFoundError.
	GetChannel(ctx context.Context, channelID string) (*ChannelItem, error)
}
