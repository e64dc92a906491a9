package report

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/kapu/youtube-data-go/internal/domain"
	"github.com/kapu/youtube-data-go/internal/service/cache"
	"go.uber.org/zap"
)

// Collector builds reports from the API.
type Collector interface {
	VideoReport(ctx context.Context, videoURL string) (*domain.VideoRecord, error)
	PlaylistReport(ctx context.Context, playlistURL string) (*domain.PlaylistReport, error)
	ChannelReport(ctx context.Context, channelURL string) (*domain.ChannelReport, error)
}

// ReportCache stores finished reports keyed by kind and URL.
type ReportCache interface {
	Load(ctx context.Context, kind, url string, dest any) bool
	Store(ctx context.Context, kind, url string, report any)
	Forget(ctx context.Context, kind, url string)
}

// SnapshotStore persists channel reports per run.
type SnapshotStore interface {
	SaveChannelReport(ctx context.Context, runID uuid.UUID, report *domain.ChannelReport) error
	LatestChannelSummary(ctx context.Context, channelID string) (*domain.ChannelSummary, error)
}

// Exporter writes report files and returns their locations.
type Exporter interface {
	ExportVideo(ctx context.Context, runID uuid.UUID, record *domain.VideoRecord) ([]string, error)
	ExportPlaylist(ctx context.Context, runID uuid.UUID, report *domain.PlaylistReport) ([]string, error)
	ExportChannel(ctx context.Context, runID uuid.UUID, report *domain.ChannelReport) ([]string, error)
}

// Deps wires the service. Only Collector is required; nil Cache, Snapshots
// or Exporter disable that stage.
type Deps struct {
	Collector Collector
	Cache     ReportCache
	Snapshots SnapshotStore
	Exporter  Exporter
	Logger    *zap.Logger
	NewRunID  func() uuid.UUID
}

// Request options of a single report call.
type Request struct {
	URL string
	// Refresh ignores a cached report and overwrites it.
	Refresh bool
	Export  bool
}

type VideoResult struct {
	RunID    uuid.UUID
	Record   *domain.VideoRecord
	Cached   bool
	Exported []string
}

type PlaylistResult struct {
	RunID    uuid.UUID
	Report   *domain.PlaylistReport
	Cached   bool
	Exported []string
}

type ChannelResult struct {
	RunID  uuid.UUID
	Report *domain.ChannelReport
	Cached bool
	// Change is nil when no earlier snapshot exists or snapshots are disabled.
	Change   *domain.SummaryChange
	Exported []string
}

type Service struct {
	collector Collector
	cache     ReportCache
	snapshots SnapshotStore
	exporter  Exporter
	logger    *zap.Logger
	newRunID  func() uuid.UUID
}

func NewService(deps Deps) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	newRunID := deps.NewRunID
	if newRunID == nil {
		newRunID = uuid.New
	}
	return &Service{
		collector: deps.Collector,
		cache:     deps.Cache,
		snapshots: deps.Snapshots,
		exporter:  deps.Exporter,
		logger:    logger,
		newRunID:  newRunID,
	}
}

func (s *Service) Video(ctx context.Context, req Request) (*VideoResult, error) {
	result := &VideoResult{RunID: s.newRunID()}

	var cached domain.VideoRecord
	if s.lookup(ctx, cache.KindVideo, req, &cached) {
		result.Record, result.Cached = &cached, true
	} else {
		record, err := s.collector.VideoReport(ctx, req.URL)
		if err != nil {
			return nil, err
		}
		s.store(ctx, cache.KindVideo, req.URL, record)
		result.Record = record
	}

	if req.Export {
		exported, err := s.export(func(e Exporter) ([]string, error) {
			return e.ExportVideo(ctx, result.RunID, result.Record)
		})
		if err != nil {
			return nil, err
		}
		result.Exported = exported
	}
	return result, nil
}

func (s *Service) Playlist(ctx context.Context, req Request) (*PlaylistResult, error) {
	result := &PlaylistResult{RunID: s.newRunID()}

	var cached domain.PlaylistReport
	if s.lookup(ctx, cache.KindPlaylist, req, &cached) {
		result.Report, result.Cached = &cached, true
	} else {
		report, err := s.collector.PlaylistReport(ctx, req.URL)
		if err != nil {
			return nil, err
		}
		s.store(ctx, cache.KindPlaylist, req.URL, report)
		result.Report = report
	}

	if req.Export {
		exported, err := s.export(func(e Exporter) ([]string, error) {
			return e.ExportPlaylist(ctx, result.RunID, result.Report)
		})
		if err != nil {
			return nil, err
		}
		result.Exported = exported
	}
	return result, nil
}

// Channel collects a channel report. Fresh reports are snapshotted and
// compared with the previous snapshot of the same channel.
func (s *Service) Channel(ctx context.Context, req Request) (*ChannelResult, error) {
	result := &ChannelResult{RunID: s.newRunID()}

	var cached domain.ChannelReport
	if s.lookup(ctx, cache.KindChannel, req, &cached) {
		result.Report, result.Cached = &cached, true
	} else {
		report, err := s.collector.ChannelReport(ctx, req.URL)
		if err != nil {
			return nil, err
		}
		// Cache only after the snapshot is stored so a failed run is
		// collected again next time.
		change, err := s.snapshot(ctx, result.RunID, report)
		if err != nil {
			return nil, err
		}
		s.store(ctx, cache.KindChannel, req.URL, report)
		result.Report = report
		result.Change = change
	}

	if req.Export {
		exported, err := s.export(func(e Exporter) ([]string, error) {
			return e.ExportChannel(ctx, result.RunID, result.Report)
		})
		if err != nil {
			return nil, err
		}
		result.Exported = exported
	}
	return result, nil
}

func (s *Service) snapshot(ctx context.Context, runID uuid.UUID, report *domain.ChannelReport) (*domain.SummaryChange, error) {
	if s.snapshots == nil {
		return nil, nil
	}

	previous, err := s.snapshots.LatestChannelSummary(ctx, report.Summary.ChannelID)
	if err != nil {
		return nil, fmt.Errorf("failed to load previous snapshot: %w", err)
	}
	if err := s.snapshots.SaveChannelReport(ctx, runID, report); err != nil {
		return nil, fmt.Errorf("failed to save snapshot: %w", err)
	}

	change := domain.CompareSummaries(previous, &report.Summary)
	if change != nil {
		s.logger.Info("Channel changed since last snapshot",
			zap.String("channel_id", change.ChannelID),
			zap.Int64("subscriber_change", change.SubscriberChange),
			zap.Int64("view_change", change.ViewChange),
			zap.Int64("video_change", change.VideoChange),
			zap.Duration("elapsed", change.Elapsed))
	}
	return change, nil
}

func (s *Service) lookup(ctx context.Context, kind string, req Request, dest any) bool {
	if s.cache == nil {
		return false
	}
	if req.Refresh {
		s.cache.Forget(ctx, kind, req.URL)
		return false
	}
	return s.cache.Load(ctx, kind, req.URL, dest)
}

func (s *Service) store(ctx context.Context, kind, url string, report any) {
	if s.cache != nil {
		s.cache.Store(ctx, kind, url, report)
	}
}

func (s *Service) export(run func(Exporter) ([]string, error)) ([]string, error) {
	if s.exporter == nil {
		return nil, fmt.Errorf("export requested but no export sink is configured")
	}
	exported, err := run(s.exporter)
	if err != nil {
		return exported, fmt.Errorf("export failed: %w", err)
	}
	return exported, nil
}
