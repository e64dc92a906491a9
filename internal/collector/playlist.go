package collector

import (
	"context"

	"github.com/kapu/youtube-data-go/internal/domain"
	"go.uber.org/zap"
)

// PlaylistReport builds one row per playlist item, in playlist order.
func (c *Collector) PlaylistReport(ctx context.Context, playlistURL string) (*domain.PlaylistReport, error) {
	playlistID, err := ExtractPlaylistID(playlistURL)
	if err != nil {
		return nil, err
	}

	entries, stats, err := c.fetchPlaylist(ctx, playlistID)
	if err != nil {
		return nil, err
	}

	extractionAt := c.now()
	rows := JoinPlaylist(entries, stats, extractionAt)
	report := &domain.PlaylistReport{
		PlaylistID:   playlistID,
		ExtractionAt: extractionAt,
		Rows:         rows,
		Totals:       SumPlaylist(rows),
	}

	c.logger.Info("Playlist report built",
		zap.String("playlist_id", playlistID),
		zap.Int("videos", len(rows)),
		zap.Int("with_statistics", len(stats)))

	return report, nil
}
