package domain

import "time"

// PlaylistEntry is the metadata of one playlist item before statistics are joined.
type PlaylistEntry struct {
	VideoID     string
	Title       string
	Description string
	PublishedAt time.Time
	Thumbnails  Thumbnails
}

// PlaylistRow is a playlist entry joined with its statistics.
type PlaylistRow struct {
	VideoRecord
	Thumbnails Thumbnails `json:"thumbnails"`
}

type PlaylistReport struct {
	PlaylistID   string        `json:"playlist_id"`
	ExtractionAt time.Time     `json:"extraction_at"`
	Rows         []PlaylistRow `json:"rows"`
	Totals       Totals        `json:"totals"`
}

// Totals are channel- or playlist-wide sums over report rows.
type Totals struct {
	Videos   int    `json:"videos"`
	Views    uint64 `json:"views"`
	Likes    uint64 `json:"likes"`
	Comments uint64 `json:"comments"`
}

func (t *Totals) Add(s Statistics) {
	t.Videos++
	t.Views += s.Views
	t.Likes += s.Likes
	t.Comments += s.Comments
}

func (t Totals) Engagement() float64 {
	return Engagement(t.Likes, t.Views)
}
