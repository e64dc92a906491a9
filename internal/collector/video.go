package collector

import (
	"context"

	"github.com/kapu/youtube-data-go/internal/domain"
	"github.com/kapu/youtube-data-go/pkg/errors"
	"go.uber.org/zap"
)

// VideoReport fetches snippet and statistics of the video a watch URL points at.
func (c *Collector) VideoReport(ctx context.Context, videoURL string) (*domain.VideoRecord, error) {
	videoID, err := ExtractVideoID(videoURL)
	if err != nil {
		return nil, err
	}

	item, err := c.client.GetVideo(ctx, videoID)
	if err != nil {
		return nil, asUpstream("videos.list", err)
	}
	if item == nil {
		return nil, errors.NewNotFoundError("video", videoID)
	}

	record := &domain.VideoRecord{
		ID:           videoID,
		Title:        item.Snippet.Title,
		Description:  item.Snippet.Description,
		PublishedAt:  item.Snippet.PublishedAt,
		ExtractionAt: c.now(),
		ThumbnailURL: item.Snippet.Thumbnails.PreferredURL(),
		Views:        item.Statistics.Views,
		Likes:        item.Statistics.Likes,
		Comments:     item.Statistics.Comments,
	}

	c.logger.Info("Video report built",
		zap.String("video_id", videoID),
		zap.Uint64("views", record.Views),
		zap.Uint64("likes", record.Likes))

	return record, nil
}
