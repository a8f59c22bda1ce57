package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kiranshivaraju/reelinsight/pkg/models"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS reel_results (
    id              TEXT PRIMARY KEY,
    url             TEXT NOT NULL,
    title           TEXT NOT NULL,
    transcript      TEXT NOT NULL,
    analysis        TEXT NOT NULL,
    analysis_source TEXT NOT NULL,
    video_base64    TEXT NOT NULL DEFAULT '',
    processed_at    TEXT NOT NULL
);`

// SQLiteStore keeps results in a single-file SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path and ensures the schema exists.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// One connection: sqlite serialises writers anyway.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create sqlite schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Put(ctx context.Context, result *models.ReelResult) error {
	analysis, err := json.Marshal(result.Analysis)
	if err != nil {
		return fmt.Errorf("marshal analysis: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO reel_results (id, url, title, transcript, analysis, analysis_source, video_base64, processed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		result.ID, result.URL, result.Title, result.Transcript, string(analysis),
		result.AnalysisSource, result.VideoBase64, result.ProcessedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrDuplicateKey
		}
		return fmt.Errorf("insert reel result: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*models.ReelResult, error) {
	var r models.ReelResult
	var analysis, processedAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, url, title, transcript, analysis, analysis_source, video_base64, processed_at
		 FROM reel_results WHERE id = ?`, id,
	).Scan(&r.ID, &r.URL, &r.Title, &r.Transcript, &analysis, &r.AnalysisSource, &r.VideoBase64, &processedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get reel result: %w", err)
	}
	if err := json.Unmarshal([]byte(analysis), &r.Analysis); err != nil {
		return nil, fmt.Errorf("decode analysis for %s: %w", id, err)
	}
	if r.ProcessedAt, err = time.Parse(time.RFC3339Nano, processedAt); err != nil {
		return nil, fmt.Errorf("parse processed_at for %s: %w", id, err)
	}
	return &r, nil
}
