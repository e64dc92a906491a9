package collector

import (
	"context"

	"github.com/kapu/youtube-data-go/internal/domain"
	"github.com/kapu/youtube-data-go/pkg/errors"
	"go.uber.org/zap"
)

// ChannelReport resolves the channel behind channelURL and collects every
// video of its uploads playlist, sorted by publish date ascending. Any failing
// step aborts the report.
func (c *Collector) ChannelReport(ctx context.Context, channelURL string) (*domain.ChannelReport, error) {
	channelID, err := ExtractChannelID(ctx, channelURL, c)
	if err != nil {
		return nil, err
	}

	channel, err := c.client.GetChannel(ctx, channelID)
	if err != nil {
		return nil, asUpstream("channels.list", err)
	}
	if channel == nil {
		return nil, errors.NewNotFoundError("channel", channelID)
	}
	if channel.UploadsPlaylistID == "" {
		upErr := errors.NewUpstreamError("channel has no uploads playlist", "channels.list", nil)
		upErr.Context["channel_id"] = channelID
		return nil, upErr
	}

	summary := domain.ChannelSummary{
		ChannelID:       channelID,
		Title:           channel.Snippet.Title,
		Description:     channel.Snippet.Description,
		PublishedAt:     channel.Snippet.PublishedAt,
		ThumbnailURL:    channel.Snippet.Thumbnails.PreferredURL(),
		BannerURL:       channel.BannerURL,
		SubscriberCount: channel.Statistics.Subscribers,
		TotalViewCount:  channel.Statistics.Views,
		TotalVideoCount: channel.Statistics.Videos,
		ExtractionAt:    c.now(),
	}

	c.logger.Info("Collecting channel uploads",
		zap.String("channel_id", channelID),
		zap.String("title", summary.Title),
		zap.String("uploads_playlist", channel.UploadsPlaylistID))

	entries, stats, err := c.fetchPlaylist(ctx, channel.UploadsPlaylistID)
	if err != nil {
		return nil, err
	}

	videos := JoinChannelVideos(entries, stats)
	totals := SumChannel(videos)
	SortByPublishedAt(videos)

	c.logger.Info("Channel report built",
		zap.String("channel_id", channelID),
		zap.Int("videos", totals.Videos),
		zap.Uint64("views", totals.Views),
		zap.Uint64("likes", totals.Likes),
		zap.Uint64("comments", totals.Comments))

	return &domain.ChannelReport{
		Summary: summary,
		Videos:  videos,
		Totals:  totals,
	}, nil
}
