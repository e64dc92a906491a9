package domain

import "time"

// ChannelSummary is the channel-level snippet and statistics at extraction time.
type ChannelSummary struct {
	ChannelID       string    `json:"channel_id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	PublishedAt     time.Time `json:"published_at"`
	ThumbnailURL    string    `json:"thumbnail_url"`
	BannerURL       *string   `json:"banner_url,omitempty"`
	SubscriberCount uint64    `json:"subscriber_count"`
	TotalViewCount  uint64    `json:"total_view_count"`
	TotalVideoCount uint64    `json:"total_video_count"`
	ExtractionAt    time.Time `json:"extraction_at"`
}

// GetBannerURL returns the banner URL or empty string
func (c *ChannelSummary) GetBannerURL() string {
	if c == nil || c.BannerURL == nil {
		return ""
	}
	return *c.BannerURL
}

// ChannelVideoRecord is one uploaded video in a channel report.
type ChannelVideoRecord struct {
	ID           string    `json:"video_id"`
	Title        string    `json:"title"`
	PublishedAt  time.Time `json:"published_at"`
	Views        uint64    `json:"views"`
	Likes        uint64    `json:"likes"`
	Comments     uint64    `json:"comments"`
	Engagement   float64   `json:"engagement"`
	CanonicalURL string    `json:"url"`
}

func (r *ChannelVideoRecord) Statistics() Statistics {
	return Statistics{Views: r.Views, Likes: r.Likes, Comments: r.Comments}
}

type ChannelReport struct {
	Summary ChannelSummary       `json:"summary"`
	Videos  []ChannelVideoRecord `json:"videos"`
	Totals  Totals               `json:"totals"`
}
