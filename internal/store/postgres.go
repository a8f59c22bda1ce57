package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kiranshivaraju/reelinsight/internal/config"
	"github.com/kiranshivaraju/reelinsight/pkg/models"
)

const applicationName = "reelinsight"

// Connect builds a pgx pool from cfg. Connections open lazily, so callers
// ping before relying on it.
func Connect(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		poolCfg.MaxConns = int32(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 && cfg.MaxIdleConns <= int(poolCfg.MaxConns) {
		poolCfg.MinConns = int32(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime
	}
	poolCfg.HealthCheckPeriod = 30 * time.Second
	poolCfg.ConnConfig.RuntimeParams["application_name"] = applicationName

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	return pool, nil
}

// PostgresStore implements ResultStore using pgx/v5.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) Put(ctx context.Context, result *models.ReelResult) error {
	analysis, err := json.Marshal(result.Analysis)
	if err != nil {
		return fmt.Errorf("marshal analysis: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO reel_results (id, url, title, transcript, analysis, analysis_source, video_base64, processed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		result.ID, result.URL, result.Title, result.Transcript, analysis,
		result.AnalysisSource, result.VideoBase64, result.ProcessedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("insert reel result: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*models.ReelResult, error) {
	var r models.ReelResult
	var analysis []byte
	err := s.pool.QueryRow(ctx,
		`SELECT id, url, title, transcript, analysis, analysis_source, video_base64, processed_at
		 FROM reel_results WHERE id = $1`, id,
	).Scan(&r.ID, &r.URL, &r.Title, &r.Transcript, &analysis, &r.AnalysisSource, &r.VideoBase64, &r.ProcessedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get reel result: %w", err)
	}
	if err := json.Unmarshal(analysis, &r.Analysis); err != nil {
		return nil, fmt.Errorf("decode analysis for %s: %w", id, err)
	}
	return &r, nil
}

// isDuplicateKeyError checks if a pgx error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return false
}
