package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/kapu/youtube-data-go/internal/domain"
)

var (
	videoHeader = []string{
		"video_id", "title", "description", "published_date", "extraction_date",
		"thumbnail_url", "likes", "views", "comments",
	}
	channelSummaryHeader = []string{
		"channel_id", "title", "description", "published_at", "thumbnail", "banner_url",
		"subscribers", "total_views", "total_videos", "extraction_date",
	}
	channelVideosHeader = []string{
		"video_id", "title", "published_date", "views", "likes", "comments", "engagement", "url",
	}
)

func WriteVideoCSV(w io.Writer, record *domain.VideoRecord) error {
	return writeCSV(w, videoHeader, [][]string{videoRow(record)})
}

// WritePlaylistCSV writes one line per playlist row, in playlist order.
func WritePlaylistCSV(w io.Writer, rows []domain.PlaylistRow) error {
	lines := make([][]string, 0, len(rows))
	for i := range rows {
		lines = append(lines, videoRow(&rows[i].VideoRecord))
	}
	return writeCSV(w, videoHeader, lines)
}

func WriteChannelSummaryCSV(w io.Writer, s *domain.ChannelSummary) error {
	return writeCSV(w, channelSummaryHeader, [][]string{{
		s.ChannelID,
		s.Title,
		s.Description,
		formatTime(s.PublishedAt),
		s.ThumbnailURL,
		s.GetBannerURL(),
		formatUint(s.SubscriberCount),
		formatUint(s.TotalViewCount),
		formatUint(s.TotalVideoCount),
		formatTime(s.ExtractionAt),
	}})
}

func WriteChannelVideosCSV(w io.Writer, videos []domain.ChannelVideoRecord) error {
	lines := make([][]string, 0, len(videos))
	for _, v := range videos {
		lines = append(lines, []string{
			v.ID,
			v.Title,
			formatTime(v.PublishedAt),
			formatUint(v.Views),
			formatUint(v.Likes),
			formatUint(v.Comments),
			strconv.FormatFloat(v.Engagement, 'f', -1, 64),
			v.CanonicalURL,
		})
	}
	return writeCSV(w, channelVideosHeader, lines)
}

func videoRow(r *domain.VideoRecord) []string {
	return []string{
		r.ID,
		r.Title,
		r.Description,
		formatTime(r.PublishedAt),
		formatTime(r.ExtractionAt),
		r.ThumbnailURL,
		formatUint(r.Likes),
		formatUint(r.Views),
		formatUint(r.Comments),
	}
}

func writeCSV(w io.Writer, header []string, lines [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	if err := cw.WriteAll(lines); err != nil {
		return err
	}
	return cw.Error()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func formatUint(n uint64) string {
	return strconv.FormatUint(n, 10)
}
