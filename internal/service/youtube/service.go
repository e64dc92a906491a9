package youtube

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/kapu/youtube-data-go/internal/collector"
	"github.com/kapu/youtube-data-go/internal/constants"
	"github.com/kapu/youtube-data-go/internal/domain"
	"github.com/kapu/youtube-data-go/pkg/errors"
	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// API operation names, used for quota, metrics and error context.
const (
	opVideosList        = "videos.list"
	opPlaylistItemsList = "playlistItems.list"
	opChannelsList      = "channels.list"
)

var (
	videoParts        = []string{"snippet", "statistics"}
	statisticsParts   = []string{"statistics"}
	playlistItemParts = []string{"snippet"}
	channelParts      = []string{"snippet", "statistics", "brandingSettings", "contentDetails"}
	handleParts       = []string{"id"}
)

type Options struct {
	// DailyQuota is the local unit budget; 0 disables the check.
	DailyQuota int
	Metrics    *Metrics
	Now        func() time.Time
}

// YouTubeService implements collector.Client on the YouTube Data API v3.
type YouTubeService struct {
	service *youtube.Service
	quota   *quotaMeter
	metrics *Metrics
	logger  *zap.Logger
}

var _ collector.Client = (*YouTubeService)(nil)

// NewYouTubeService builds the API client from any set of client options
// (API key, OAuth HTTP client, test endpoint).
func NewYouTubeService(ctx context.Context, logger *zap.Logger, opts Options, clientOpts ...option.ClientOption) (*YouTubeService, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	service, err := youtube.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service: %w", err)
	}

	ys := &YouTubeService{
		service: service,
		quota:   newQuotaMeter(opts.DailyQuota, opts.Now, logger),
		metrics: opts.Metrics,
		logger:  logger,
	}
	ys.quota.onUse = ys.metrics.setQuotaUsed

	logger.Info("YouTube service initialized",
		zap.Int("daily_quota", opts.DailyQuota),
		zap.Time("quota_reset", ys.quota.reset))

	return ys, nil
}

// NewAPIKeyService authenticates every call with an API key.
func NewAPIKeyService(ctx context.Context, apiKey string, logger *zap.Logger, opts Options) (*YouTubeService, error) {
	if apiKey == "" {
		return nil, errors.NewInvalidInputError("YouTube API key is required", "YOUTUBE_API_KEY", "")
	}
	return NewYouTubeService(ctx, logger, opts, option.WithAPIKey(apiKey))
}

// QuotaStatus reports local usage. remaining is -1 when the budget is disabled.
func (ys *YouTubeService) QuotaStatus() (used, remaining int, resetTime time.Time) {
	return ys.quota.status()
}

// do runs one billable list call with quota accounting and metrics.
func (ys *YouTubeService) do(operation, resourceID string, call func() error) error {
	cost := constants.QuotaConfig.ListCallCost
	if err := ys.quota.check(operation, cost); err != nil {
		ys.metrics.observe(operation, time.Time{}, err)
		ys.logger.Warn("YouTube API call skipped, quota exhausted",
			zap.String("operation", operation),
			zap.String("resource_id", resourceID))
		return err
	}

	start := time.Now()
	err := call()
	ys.quota.consume(cost)
	if err != nil {
		err = ys.classify(operation, resourceID, err)
	}
	ys.metrics.observe(operation, start, err)
	return err
}

// classify maps transport and API errors onto the error kinds of pkg/errors.
func (ys *YouTubeService) classify(operation, resourceID string, err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		if apiErr.Code == http.StatusNotFound {
			return errors.NewNotFoundError(resourceOf(operation), resourceID)
		}

		reason := ""
		if len(apiErr.Errors) > 0 {
			reason = apiErr.Errors[0].Reason
		}
		ys.logger.Error("YouTube API error",
			zap.String("operation", operation),
			zap.String("resource_id", resourceID),
			zap.Int("status", apiErr.Code),
			zap.String("reason", reason))

		upErr := errors.NewUpstreamError(fmt.Sprintf("%s returned %d", operation, apiErr.Code), operation, err).
			WithStatus(apiErr.Code, reason)
		upErr.Context["resource_id"] = resourceID
		return upErr
	}

	upErr := errors.NewUpstreamError(operation+" failed", operation, err)
	upErr.Context["resource_id"] = resourceID
	return upErr
}

func resourceOf(operation string) string {
	switch operation {
	case opVideosList:
		return "video"
	case opPlaylistItemsList:
		return "playlist"
	case opChannelsList:
		return "channel"
	}
	return operation
}

func (ys *YouTubeService) GetVideo(ctx context.Context, videoID string) (*collector.VideoItem, error) {
	var resp *youtube.VideoListResponse
	err := ys.do(opVideosList, videoID, func() (err error) {
		resp, err = ys.service.Videos.List(videoParts).Id(videoID).Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Items) == 0 {
		return nil, errors.NewNotFoundError("video", videoID)
	}

	item := resp.Items[0]
	video := &collector.VideoItem{ID: item.Id}
	if item.Snippet != nil {
		video.Snippet = collector.Snippet{
			Title:       item.Snippet.Title,
			Description: item.Snippet.Description,
			PublishedAt: parsePublishedAt(item.Snippet.PublishedAt),
			Thumbnails:  convertThumbnails(item.Snippet.Thumbnails),
		}
	}
	video.Statistics = convertVideoStatistics(item.Statistics)
	return video, nil
}

func (ys *YouTubeService) ListPage(ctx context.Context, kind collector.ResourceKind, resourceID, cursor string, pageSize int64) (*collector.Page, error) {
	switch kind {
	case collector.KindPlaylistItems:
		return ys.listPlaylistItems(ctx, resourceID, cursor, pageSize)
	case collector.KindChannelByHandle:
		return ys.lookupHandle(ctx, resourceID)
	}
	return nil, errors.NewInvalidInputError("unsupported resource kind", "kind", string(kind))
}

func (ys *YouTubeService) listPlaylistItems(ctx context.Context, playlistID, cursor string, pageSize int64) (*collector.Page, error) {
	var resp *youtube.PlaylistItemListResponse
	err := ys.do(opPlaylistItemsList, playlistID, func() (err error) {
		call := ys.service.PlaylistItems.List(playlistItemParts).
			PlaylistId(playlistID).
			MaxResults(pageSize)
		if cursor != "" {
			call = call.PageToken(cursor)
		}
		resp, err = call.Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, err
	}

	page := &collector.Page{
		Items:      make([]collector.PageItem, 0, len(resp.Items)),
		NextCursor: resp.NextPageToken,
	}
	for _, item := range resp.Items {
		if item.Snippet == nil {
			continue
		}
		pageItem := collector.PageItem{
			ID: item.Id,
			Snippet: collector.Snippet{
				Title:       item.Snippet.Title,
				Description: item.Snippet.Description,
				PublishedAt: parsePublishedAt(item.Snippet.PublishedAt),
				Thumbnails:  convertThumbnails(item.Snippet.Thumbnails),
			},
		}
		if item.Snippet.ResourceId != nil {
			pageItem.VideoID = item.Snippet.ResourceId.VideoId
		}
		page.Items = append(page.Items, pageItem)
	}
	return page, nil
}

// lookupHandle returns a page with at most one item, the channel owning handle.
func (ys *YouTubeService) lookupHandle(ctx context.Context, handle string) (*collector.Page, error) {
	var resp *youtube.ChannelListResponse
	err := ys.do(opChannelsList, "@"+handle, func() (err error) {
		resp, err = ys.service.Channels.List(handleParts).ForHandle(handle).MaxResults(1).Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, err
	}

	page := &collector.Page{}
	if len(resp.Items) > 0 {
		page.Items = []collector.PageItem{{ID: resp.Items[0].Id}}
	}
	return page, nil
}

func (ys *YouTubeService) GetBatchStatistics(ctx context.Context, videoIDs []string) ([]collector.StatisticsItem, error) {
	if len(videoIDs) > constants.BatchConfig.MaxIDsPerCall {
		return nil, errors.NewInvalidInputError(
			fmt.Sprintf("at most %d ids per statistics call", constants.BatchConfig.MaxIDsPerCall),
			"ids", strconv.Itoa(len(videoIDs)))
	}
	if len(videoIDs) == 0 {
		return nil, nil
	}

	var resp *youtube.VideoListResponse
	err := ys.do(opVideosList, videoIDs[0], func() (err error) {
		resp, err = ys.service.Videos.List(statisticsParts).Id(videoIDs...).Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, err
	}

	items := make([]collector.StatisticsItem, 0, len(resp.Items))
	for _, item := range resp.Items {
		items = append(items, collector.StatisticsItem{
			ID:         item.Id,
			Statistics: convertVideoStatistics(item.Statistics),
		})
	}
	return items, nil
}

func (ys *YouTubeService) GetChannel(ctx context.Context, channelID string) (*collector.ChannelItem, error) {
	var resp *youtube.ChannelListResponse
	err := ys.do(opChannelsList, channelID, func() (err error) {
		resp, err = ys.service.Channels.List(channelParts).Id(channelID).Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Items) == 0 {
		return nil, errors.NewNotFoundError("channel", channelID)
	}

	ch := resp.Items[0]
	item := &collector.ChannelItem{ID: ch.Id}
	if ch.Snippet != nil {
		item.Snippet = collector.Snippet{
			Title:       ch.Snippet.Title,
			Description: ch.Snippet.Description,
			PublishedAt: parsePublishedAt(ch.Snippet.PublishedAt),
			Thumbnails:  convertThumbnails(ch.Snippet.Thumbnails),
		}
	}
	if ch.Statistics != nil {
		item.Statistics = collector.ChannelStatistics{
			Subscribers: ch.Statistics.SubscriberCount,
			Views:       ch.Statistics.ViewCount,
			Videos:      ch.Statistics.VideoCount,
		}
	}
	if ch.BrandingSettings != nil && ch.BrandingSettings.Image != nil && ch.BrandingSettings.Image.BannerExternalUrl != "" {
		banner := ch.BrandingSettings.Image.BannerExternalUrl
		item.BannerURL = &banner
	}
	if ch.ContentDetails != nil && ch.ContentDetails.RelatedPlaylists != nil {
		item.UploadsPlaylistID = ch.ContentDetails.RelatedPlaylists.Uploads
	}
	return item, nil
}

func convertVideoStatistics(stats *youtube.VideoStatistics) domain.Statistics {
	if stats == nil {
		return domain.Statistics{}
	}
	return domain.Statistics{
		Views:    stats.ViewCount,
		Likes:    stats.LikeCount,
		Comments: stats.CommentCount,
	}
}

func convertThumbnails(details *youtube.ThumbnailDetails) domain.Thumbnails {
	if details == nil {
		return domain.Thumbnails{}
	}
	return domain.Thumbnails{
		Default:  convertThumbnail(details.Default),
		Medium:   convertThumbnail(details.Medium),
		High:     convertThumbnail(details.High),
		Standard: convertThumbnail(details.Standard),
		Maxres:   convertThumbnail(details.Maxres),
	}
}

func convertThumbnail(t *youtube.Thumbnail) *domain.Thumbnail {
	if t == nil || t.Url == "" {
		return nil
	}
	return &domain.Thumbnail{URL: t.Url, Width: t.Width, Height: t.Height}
}

// parsePublishedAt returns the zero time for empty or malformed timestamps.
func parsePublishedAt(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}
