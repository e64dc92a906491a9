package domain

import "time"

const watchURLPrefix = "https://www.youtube.com/watch?v="

// Statistics is the engagement block of a video. Absent counters are zero.
type Statistics struct {
	Views    uint64 `json:"views"`
	Likes    uint64 `json:"likes"`
	Comments uint64 `json:"comments"`
}

type Thumbnail struct {
	URL    string `json:"url"`
	Width  int64  `json:"width,omitempty"`
	Height int64  `json:"height,omitempty"`
}

// Thumbnails holds every rendition the API returned for a resource.
type Thumbnails struct {
	Default  *Thumbnail `json:"default,omitempty"`
	Medium   *Thumbnail `json:"medium,omitempty"`
	High     *Thumbnail `json:"high,omitempty"`
	Standard *Thumbnail `json:"standard,omitempty"`
	Maxres   *Thumbnail `json:"maxres,omitempty"`
}

// PreferredURL returns the "high" rendition, falling back to the largest
// rendition available.
func (t Thumbnails) PreferredURL() string {
	for _, th := range []*Thumbnail{t.High, t.Maxres, t.Standard, t.Medium, t.Default} {
		if th != nil && th.URL != "" {
			return th.URL
		}
	}
	return ""
}

// VideoRecord is a point-in-time snapshot of one video.
type VideoRecord struct {
	ID           string    `json:"video_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	PublishedAt  time.Time `json:"published_at"`
	ExtractionAt time.Time `json:"extraction_at"`
	ThumbnailURL string    `json:"thumbnail_url"`
	Views        uint64    `json:"views"`
	Likes        uint64    `json:"likes"`
	Comments     uint64    `json:"comments"`
}

func (v *VideoRecord) Statistics() Statistics {
	return Statistics{Views: v.Views, Likes: v.Likes, Comments: v.Comments}
}

func (v *VideoRecord) Engagement() float64 {
	return Engagement(v.Likes, v.Views)
}

// Engagement returns likes as a percentage of views, 0 when there are no views.
func Engagement(likes, views uint64) float64 {
	if views == 0 {
		return 0
	}
	return float64(likes) / float64(views) * 100
}

// CanonicalURL returns the watch page URL for a video id.
func CanonicalURL(videoID string) string {
	return watchURLPrefix + videoID
}
