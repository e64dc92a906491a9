package app

import (
	"context"
	"fmt"

	"github.com/kapu/youtube-data-go/internal/collector"
	"github.com/kapu/youtube-data-go/internal/config"
	"github.com/kapu/youtube-data-go/internal/export"
	"github.com/kapu/youtube-data-go/internal/service/cache"
	"github.com/kapu/youtube-data-go/internal/service/database"
	"github.com/kapu/youtube-data-go/internal/service/report"
	"github.com/kapu/youtube-data-go/internal/service/youtube"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Container bundles the assembled services used by the CLI.
type Container struct {
	Config *config.Config
	Logger *zap.Logger

	YouTube   *youtube.YouTubeService
	Collector *collector.Collector
	Reports   *report.Service
	// ReportCache is nil when Redis is disabled.
	ReportCache *cache.ReportCache

	closers []func()
}

// Close releases connections in reverse order of creation.
func (c *Container) Close() {
	if c == nil {
		return
	}
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}

// Build assembles the API client, collector and optional cache, snapshot
// and export stages. Metrics are registered on reg; a nil reg skips metrics.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger, reg prometheus.Registerer) (container *Container, err error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var closers []func()
	defer func() {
		if err != nil {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
		}
	}()

	// YouTube client
	ytOpts := youtube.Options{DailyQuota: cfg.YouTube.DailyQuota}
	if reg != nil {
		ytOpts.Metrics = youtube.NewMetrics(reg)
	}
	ytSvc, err := newYouTubeService(ctx, cfg.YouTube, logger, ytOpts)
	if err != nil {
		return nil, err
	}

	coll := collector.New(ytSvc, logger, collector.Options{
		MaxPages:         cfg.Collector.MaxPages,
		BatchConcurrency: cfg.Collector.BatchConcurrency,
	})

	deps := report.Deps{
		Collector: coll,
		Logger:    logger,
	}

	// Report cache
	reportCache, closeCache, err := BuildReportCache(cfg, logger)
	if err != nil {
		return nil, err
	}
	if reportCache != nil {
		closers = append(closers, closeCache)
		deps.Cache = reportCache
	}

	// Channel snapshots
	if cfg.Postgres.Enabled {
		postgresSvc, pgErr := database.NewPostgresService(database.PostgresConfig{
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			Database: cfg.Postgres.Database,
		}, logger)
		if pgErr != nil {
			return nil, fmt.Errorf("failed to create postgres service: %w", pgErr)
		}
		closers = append(closers, func() {
			_ = postgresSvc.Close()
		})

		snapshots := database.NewSnapshotRepository(postgresSvc, logger)
		if err = snapshots.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("failed to prepare snapshot schema: %w", err)
		}
		deps.Snapshots = snapshots
	}

	// Export sink
	switch cfg.Export.Sink {
	case config.ExportSinkDir:
		deps.Exporter = export.NewExporter(export.NewDirSink(cfg.Export.Dir), logger)
	case config.ExportSinkGCS:
		gcsSink, gcsErr := export.NewGCSSink(ctx, cfg.Export.GCSBucket)
		if gcsErr != nil {
			return nil, fmt.Errorf("failed to create GCS sink: %w", gcsErr)
		}
		closers = append(closers, func() {
			_ = gcsSink.Close()
		})
		deps.Exporter = export.NewExporter(gcsSink, logger)
	}

	logger.Info("Application services ready",
		zap.String("auth_mode", cfg.YouTube.AuthMode),
		zap.Bool("cache", deps.Cache != nil),
		zap.Bool("snapshots", deps.Snapshots != nil),
		zap.String("export_sink", cfg.Export.Sink))

	return &Container{
		Config:      cfg,
		Logger:      logger,
		YouTube:     ytSvc,
		Collector:   coll,
		Reports:     report.NewService(deps),
		ReportCache: reportCache,
		closers:     closers,
	}, nil
}

func newYouTubeService(ctx context.Context, cfg config.YouTubeConfig, logger *zap.Logger, opts youtube.Options) (*youtube.YouTubeService, error) {
	if cfg.AuthMode != config.AuthModeOAuth {
		return youtube.NewAPIKeyService(ctx, cfg.APIKey, logger, opts)
	}

	creds, err := youtube.LoadOAuthCredentials(cfg.CredentialsFile, cfg.TokenFile, logger)
	if err != nil {
		return nil, err
	}
	if !creds.IsAuthorized() {
		return nil, fmt.Errorf("no OAuth token at %s, run the auth command first", cfg.TokenFile)
	}
	return youtube.NewOAuthService(ctx, creds, logger, opts)
}

// BuildReportCache connects only the Redis report cache, for commands that
// do not need the API client. It returns a nil cache when Redis is disabled.
func BuildReportCache(cfg *config.Config, logger *zap.Logger) (*cache.ReportCache, func(), error) {
	if !cfg.Redis.Enabled {
		return nil, func() {}, nil
	}
	cacheSvc, err := cache.NewCacheService(cache.CacheConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create cache service: %w", err)
	}
	closeCache := func() {
		_ = cacheSvc.Close()
	}
	return cache.NewReportCache(cacheSvc, cfg.Redis.TTL, logger), closeCache, nil
}
