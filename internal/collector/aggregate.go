package collector

import (
	"sort"
	"time"

	"github.com/kapu/youtube-data-go/internal/domain"
)

// EntriesFromPage converts playlist page items into playlist entries, keeping order.
func EntriesFromPage(items []PageItem) []domain.PlaylistEntry {
	entries := make([]domain.PlaylistEntry, 0, len(items))
	for _, item := range items {
		entries = append(entries, domain.PlaylistEntry{
			VideoID:     item.VideoID,
			Title:       item.Snippet.Title,
			Description: item.Snippet.Description,
			PublishedAt: item.Snippet.PublishedAt,
			Thumbnails:  item.Snippet.Thumbnails,
		})
	}
	return entries
}

func VideoIDs(entries []domain.PlaylistEntry) []string {
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.VideoID)
	}
	return ids
}

// JoinPlaylist left-joins entries with stats. Every entry yields exactly one
// row; entries without statistics get zero counters.
func JoinPlaylist(entries []domain.PlaylistEntry, stats map[string]domain.Statistics, extractionAt time.Time) []domain.PlaylistRow {
	rows := make([]domain.PlaylistRow, 0, len(entries))
	for _, e := range entries {
		s := stats[e.VideoID]
		rows = append(rows, domain.PlaylistRow{
			VideoRecord: domain.VideoRecord{
				ID:           e.VideoID,
				Title:        e.Title,
				Description:  e.Description,
				PublishedAt:  e.PublishedAt,
				ExtractionAt: extractionAt,
				ThumbnailURL: e.Thumbnails.PreferredURL(),
				Views:        s.Views,
				Likes:        s.Likes,
				Comments:     s.Comments,
			},
			Thumbnails: e.Thumbnails,
		})
	}
	return rows
}

// JoinChannelVideos left-joins entries with stats and derives engagement and URL.
func JoinChannelVideos(entries []domain.PlaylistEntry, stats map[string]domain.Statistics) []domain.ChannelVideoRecord {
	rows := make([]domain.ChannelVideoRecord, 0, len(entries))
	for _, e := range entries {
		s := stats[e.VideoID]
		rows = append(rows, domain.ChannelVideoRecord{
			ID:           e.VideoID,
			Title:        e.Title,
			PublishedAt:  e.PublishedAt,
			Views:        s.Views,
			Likes:        s.Likes,
			Comments:     s.Comments,
			Engagement:   domain.Engagement(s.Likes, s.Views),
			CanonicalURL: domain.CanonicalURL(e.VideoID),
		})
	}
	return rows
}

func SumPlaylist(rows []domain.PlaylistRow) domain.Totals {
	var totals domain.Totals
	for i := range rows {
		totals.Add(rows[i].Statistics())
	}
	return totals
}

func SumChannel(rows []domain.ChannelVideoRecord) domain.Totals {
	var totals domain.Totals
	for i := range rows {
		totals.Add(rows[i].Statistics())
	}
	return totals
}

// SortByPublishedAt orders rows oldest first; rows with equal dates keep API order.
func SortByPublishedAt(rows []domain.ChannelVideoRecord) {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].PublishedAt.Before(rows[j].PublishedAt)
	})
}
