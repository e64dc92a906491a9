package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kapu/youtube-data-go/internal/domain"
	"go.uber.org/zap"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS channel_snapshots (
	run_id           UUID PRIMARY KEY,
	channel_id       TEXT NOT NULL,
	title            TEXT NOT NULL,
	description      TEXT NOT NULL DEFAULT '',
	published_at     TIMESTAMPTZ,
	thumbnail_url    TEXT NOT NULL DEFAULT '',
	banner_url       TEXT,
	subscriber_count BIGINT NOT NULL DEFAULT 0,
	view_count       BIGINT NOT NULL DEFAULT 0,
	video_count      BIGINT NOT NULL DEFAULT 0,
	extracted_at     TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_channel_snapshots_channel
	ON channel_snapshots (channel_id, extracted_at DESC);

CREATE TABLE IF NOT EXISTS video_snapshots (
	run_id       UUID NOT NULL REFERENCES channel_snapshots (run_id) ON DELETE CASCADE,
	video_id     TEXT NOT NULL,
	title        TEXT NOT NULL,
	published_at TIMESTAMPTZ,
	views        BIGINT NOT NULL DEFAULT 0,
	likes        BIGINT NOT NULL DEFAULT 0,
	comments     BIGINT NOT NULL DEFAULT 0,
	engagement   DOUBLE PRECISION NOT NULL DEFAULT 0,
	PRIMARY KEY (run_id, video_id)
);
`

// SnapshotRepository persists channel reports, one row set per run id.
type SnapshotRepository struct {
	postgres *PostgresService
	db       *sql.DB
	logger   *zap.Logger
}

func NewSnapshotRepository(postgres *PostgresService, logger *zap.Logger) *SnapshotRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SnapshotRepository{
		postgres: postgres,
		db:       postgres.GetDB(),
		logger:   logger,
	}
}

func (r *SnapshotRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to create snapshot schema: %w", err)
	}
	return nil
}

// SaveChannelReport writes the summary and every video row in one transaction.
func (r *SnapshotRepository) SaveChannelReport(ctx context.Context, runID uuid.UUID, report *domain.ChannelReport) error {
	s := report.Summary
	err := r.postgres.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO channel_snapshots (
				run_id, channel_id, title, description, published_at, thumbnail_url,
				banner_url, subscriber_count, view_count, video_count, extracted_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		`,
			runID, s.ChannelID, s.Title, s.Description, nullTime(s.PublishedAt), s.ThumbnailURL,
			s.BannerURL, s.SubscriberCount, s.TotalViewCount, s.TotalVideoCount, s.ExtractionAt,
		); err != nil {
			return fmt.Errorf("failed to insert channel snapshot %s: %w", s.ChannelID, err)
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO video_snapshots (
				run_id, video_id, title, published_at, views, likes, comments, engagement
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (run_id, video_id) DO NOTHING
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare video snapshot insert: %w", err)
		}
		defer stmt.Close()

		for _, v := range report.Videos {
			if _, err := stmt.ExecContext(ctx,
				runID, v.ID, v.Title, nullTime(v.PublishedAt), v.Views, v.Likes, v.Comments, v.Engagement,
			); err != nil {
				return fmt.Errorf("failed to insert video snapshot %s: %w", v.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.logger.Info("Channel snapshot saved",
		zap.String("run_id", runID.String()),
		zap.String("channel_id", s.ChannelID),
		zap.Int("videos", len(report.Videos)))
	return nil
}

// LatestChannelSummary returns the most recent stored summary, or nil when
// the channel was never snapshotted.
func (r *SnapshotRepository) LatestChannelSummary(ctx context.Context, channelID string) (*domain.ChannelSummary, error) {
	query := `
		SELECT channel_id, title, description, published_at, thumbnail_url, banner_url,
		       subscriber_count, view_count, video_count, extracted_at
		FROM channel_snapshots
		WHERE channel_id = $1
		ORDER BY extracted_at DESC
		LIMIT 1
	`

	var (
		summary     domain.ChannelSummary
		publishedAt sql.NullTime
		bannerURL   sql.NullString
	)

	err := r.db.QueryRowContext(ctx, query, channelID).Scan(
		&summary.ChannelID, &summary.Title, &summary.Description, &publishedAt,
		&summary.ThumbnailURL, &bannerURL, &summary.SubscriberCount,
		&summary.TotalViewCount, &summary.TotalVideoCount, &summary.ExtractionAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest snapshot of %s: %w", channelID, err)
	}

	if publishedAt.Valid {
		summary.PublishedAt = publishedAt.Time.UTC()
	}
	if bannerURL.Valid {
		summary.BannerURL = &bannerURL.String
	}
	summary.ExtractionAt = summary.ExtractionAt.UTC()
	return &summary, nil
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
