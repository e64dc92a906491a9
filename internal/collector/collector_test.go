package collector

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/kapu/youtube-data-go/internal/domain"
	"github.com/kapu/youtube-data-go/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestCollector(client Client) *Collector {
	return New(client, zap.NewNop(), Options{Now: func() time.Time { return fixedNow }})
}

func TestVideoReportSparseStatistics(t *testing.T) {
	client := newFakeClient()
	published := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	client.videos["abc123"] = &VideoItem{
		ID: "abc123",
		Snippet: Snippet{
			Title:       "t",
			Description: "d",
			PublishedAt: published,
			Thumbnails: domain.Thumbnails{
				Default: &domain.Thumbnail{URL: "default.jpg"},
				High:    &domain.Thumbnail{URL: "high.jpg"},
			},
		},
		Statistics: domain.Statistics{Likes: 10},
	}

	record, err := newTestCollector(client).VideoReport(context.Background(), "https://www.youtube.com/watch?v=abc123&t=5")
	require.NoError(t, err)

	assert.Equal(t, "abc123", record.ID)
	assert.Equal(t, "t", record.Title)
	assert.Equal(t, "d", record.Description)
	assert.Equal(t, published, record.PublishedAt)
	assert.Equal(t, fixedNow, record.ExtractionAt)
	assert.Equal(t, "high.jpg", record.ThumbnailURL)
	assert.Equal(t, uint64(10), record.Likes)
	assert.Equal(t, uint64(0), record.Views)
	assert.Equal(t, uint64(0), record.Comments)
}

func TestVideoReportNotFound(t *testing.T) {
	_, err := newTestCollector(newFakeClient()).VideoReport(context.Background(), "https://www.youtube.com/watch?v=gone")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestVideoReportInvalidURL(t *testing.T) {
	client := newFakeClient()
	_, err := newTestCollector(client).VideoReport(context.Background(), "https://youtu.be/abc123")
	require.Error(t, err)
	assert.True(t, errors.IsInvalidInput(err))
}

func TestPlaylistReport(t *testing.T) {
	client := newFakeClient()
	ids := client.seedPlaylist("PL42", 75, fixedNow)
	delete(client.stats, "v10")

	report, err := newTestCollector(client).PlaylistReport(context.Background(), "https://www.youtube.com/playlist?list=PL42")
	require.NoError(t, err)

	assert.Equal(t, "PL42", report.PlaylistID)
	require.Len(t, report.Rows, 75)
	for i, row := range report.Rows {
		assert.Equal(t, ids[i], row.ID, "playlist order is kept")
		assert.Equal(t, fixedNow, row.ExtractionAt)
	}
	assert.Equal(t, domain.Statistics{}, report.Rows[10].Statistics())
	assert.Equal(t, 75, report.Totals.Videos)

	assert.Equal(t, 2, client.playlistCalls())
	assert.Equal(t, []int{50, 25}, client.batchSizes())
}

func TestPlaylistReportPropagatesBatchFailure(t *testing.T) {
	client := newFakeClient()
	client.seedPlaylist("PL42", 60, fixedNow)
	client.failBatch = 1
	client.batchErr = fmt.Errorf("quota")

	report, err := newTestCollector(client).PlaylistReport(context.Background(), "https://www.youtube.com/playlist?list=PL42")
	require.Error(t, err)
	assert.Nil(t, report)
	assert.True(t, errors.IsUpstream(err))
}

func seedChannel(client *fakeClient, videos int) {
	banner := "https://yt3.ggpht.com/banner"
	client.channels["UCpeko"] = &ChannelItem{
		ID: "UCpeko",
		Snippet: Snippet{
			Title:       "Pekora Ch.",
			Description: "peko",
			PublishedAt: time.Date(2019, 7, 1, 0, 0, 0, 0, time.UTC),
			Thumbnails:  domain.Thumbnails{High: &domain.Thumbnail{URL: "avatar.jpg"}},
		},
		Statistics:        ChannelStatistics{Subscribers: 2_500_000, Views: 900_000_000, Videos: uint64(videos)},
		BannerURL:         &banner,
		UploadsPlaylistID: "UUpeko",
	}
	client.seedPlaylist("UUpeko", videos, fixedNow)
}

func TestChannelReport130Videos(t *testing.T) {
	client := newFakeClient()
	seedChannel(client, 130)

	report, err := newTestCollector(client).ChannelReport(context.Background(), "https://www.youtube.com/channel/UCpeko")
	require.NoError(t, err)

	assert.Equal(t, "UCpeko", report.Summary.ChannelID)
	assert.Equal(t, "Pekora Ch.", report.Summary.Title)
	assert.Equal(t, "avatar.jpg", report.Summary.ThumbnailURL)
	assert.Equal(t, "https://yt3.ggpht.com/banner", report.Summary.GetBannerURL())
	assert.Equal(t, uint64(2_500_000), report.Summary.SubscriberCount)
	assert.Equal(t, fixedNow, report.Summary.ExtractionAt)

	assert.Equal(t, 3, client.playlistCalls())
	assert.Equal(t, []int{50, 50, 30}, client.batchSizes())

	require.Len(t, report.Videos, 130)
	for i := 1; i < len(report.Videos); i++ {
		assert.False(t, report.Videos[i].PublishedAt.Before(report.Videos[i-1].PublishedAt))
	}
	oldest := report.Videos[0]
	assert.Equal(t, "v129", oldest.ID)
	assert.Equal(t, "https://www.youtube.com/watch?v=v129", oldest.CanonicalURL)
	assert.InDelta(t, 129.0/13000.0*100, oldest.Engagement, 1e-9)

	var views uint64
	for _, v := range report.Videos {
		views += v.Views
	}
	assert.Equal(t, views, report.Totals.Views)
	assert.Equal(t, 130, report.Totals.Videos)
}

func TestChannelReportResolvesHandle(t *testing.T) {
	client := newFakeClient()
	seedChannel(client, 3)
	client.handles["usadapekora"] = "UCpeko"

	report, err := newTestCollector(client).ChannelReport(context.Background(), "https://www.youtube.com/@usadapekora")
	require.NoError(t, err)
	assert.Equal(t, "UCpeko", report.Summary.ChannelID)

	require.NotEmpty(t, client.listCalls)
	first := client.listCalls[0]
	assert.Equal(t, KindChannelByHandle, first.kind)
	assert.Equal(t, "usadapekora", first.id)
}

func TestChannelReportUnknownHandle(t *testing.T) {
	_, err := newTestCollector(newFakeClient()).ChannelReport(context.Background(), "https://www.youtube.com/@ghost")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestChannelReportChannelNotFound(t *testing.T) {
	client := newFakeClient()

	_, err := newTestCollector(client).ChannelReport(context.Background(), "https://www.youtube.com/channel/UCnone")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
	assert.Zero(t, client.playlistCalls())
}

func TestChannelReportWithoutUploadsPlaylist(t *testing.T) {
	client := newFakeClient()
	seedChannel(client, 1)
	client.channels["UCpeko"].UploadsPlaylistID = ""

	_, err := newTestCollector(client).ChannelReport(context.Background(), "https://www.youtube.com/channel/UCpeko")
	require.Error(t, err)

	var upstream *errors.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, "UCpeko", upstream.Context["channel_id"])
	assert.Zero(t, client.playlistCalls())
}

func TestChannelReportBatchFailureYieldsNoReport(t *testing.T) {
	client := newFakeClient()
	seedChannel(client, 130)
	client.failBatch = 3
	client.batchErr = fmt.Errorf("backend error")

	report, err := newTestCollector(client).ChannelReport(context.Background(), "https://www.youtube.com/channel/UCpeko")
	require.Error(t, err)
	assert.Nil(t, report)
	assert.True(t, errors.IsUpstream(err))
}

func TestChannelReportEmptyUploads(t *testing.T) {
	client := newFakeClient()
	seedChannel(client, 0)

	report, err := newTestCollector(client).ChannelReport(context.Background(), "https://www.youtube.com/channel/UCpeko")
	require.NoError(t, err)
	assert.Empty(t, report.Videos)
	assert.Equal(t, domain.Totals{}, report.Totals)
	assert.Empty(t, client.batchCalls)
}
