package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/kapu/youtube-data-go/internal/constants"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// PostgresService owns the connection pool shared by repositories.
type PostgresService struct {
	db     *sql.DB
	logger *zap.Logger
}

type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	// SSLMode defaults to disable.
	SSLMode string
}

// DSN renders the lib/pq key/value connection string. Values containing
// spaces or quotes are single-quoted.
func (c PostgresConfig) DSN() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	pairs := []string{
		"host=" + dsnValue(c.Host),
		fmt.Sprintf("port=%d", c.Port),
		"user=" + dsnValue(c.User),
		"password=" + dsnValue(c.Password),
		"dbname=" + dsnValue(c.Database),
		"sslmode=" + sslMode,
	}
	return strings.Join(pairs, " ")
}

func dsnValue(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

func NewPostgresService(cfg PostgresConfig, logger *zap.Logger) (*PostgresService, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	db.SetMaxOpenConns(constants.PostgresPool.MaxOpenConns)
	db.SetMaxIdleConns(constants.PostgresPool.MaxIdleConns)
	db.SetConnMaxLifetime(constants.PostgresPool.ConnMaxLifetime)

	svc := NewPostgresServiceFromDB(db, logger)

	ctx, cancel := context.WithTimeout(context.Background(), constants.PostgresPool.PingTimeout)
	defer cancel()
	if err := svc.Ping(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to reach postgres at %s:%d: %w", cfg.Host, cfg.Port, err)
	}

	svc.logger.Info("PostgreSQL connected",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.Database))
	return svc, nil
}

// NewPostgresServiceFromDB wraps an already opened handle.
func NewPostgresServiceFromDB(db *sql.DB, logger *zap.Logger) *PostgresService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PostgresService{db: db, logger: logger}
}

func (ps *PostgresService) GetDB() *sql.DB {
	return ps.db
}

// WithTx runs fn inside a transaction, committing when fn returns nil and
// rolling back otherwise.
func (ps *PostgresService) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := ps.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			ps.logger.Warn("Rollback failed", zap.Error(rbErr))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (ps *PostgresService) Ping(ctx context.Context) error {
	return ps.db.PingContext(ctx)
}

func (ps *PostgresService) Close() error {
	if ps.db == nil {
		return nil
	}
	return ps.db.Close()
}
