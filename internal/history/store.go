package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"castfetch/internal/config"
)

// Store persists per-episode outcomes backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the history database and applies migrations.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.StateDir, "history.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// RecordOutcome inserts one episode outcome and returns its row id.
func (s *Store) RecordOutcome(ctx context.Context, rec Record) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)

	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO episode_history (
            run_id, episode_id, show, episode, status,
            failure_kind, detail, path, size_bytes, duration_ms, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID,
		rec.EpisodeID,
		rec.Show,
		rec.Episode,
		string(rec.Status),
		nullableString(rec.FailureKind),
		nullableString(rec.Detail),
		nullableString(rec.Path),
		rec.SizeBytes,
		rec.DurationMS,
		timestamp,
	)
	if err != nil {
		return 0, fmt.Errorf("insert outcome: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// LastKnownSize returns the byte count recorded by the most recent
// successful download of the episode, or zero when none exists.
func (s *Store) LastKnownSize(ctx context.Context, episodeID string) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	var size int64
	err := s.db.QueryRowContext(
		ctx,
		`SELECT size_bytes FROM episode_history
         WHERE episode_id = ? AND status = ? AND size_bytes > 0
         ORDER BY id DESC LIMIT 1`,
		episodeID,
		string(StatusDownloaded),
	).Scan(&size)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("query last known size: %w", err)
	}
	return size, nil
}

// ListRecent returns the newest outcomes first, capped at limit.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]Record, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, run_id, episode_id, show, episode, status,
                failure_kind, detail, path, size_bytes, duration_ms, created_at
         FROM episode_history ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query recent outcomes: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outcomes: %w", err)
	}
	return records, nil
}

// SummarizeRun counts the run's outcomes by status.
func (s *Store) SummarizeRun(ctx context.Context, runID string) (RunSummary, error) {
	summary := RunSummary{RunID: runID}
	if s == nil || s.db == nil {
		return summary, nil
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT status, COUNT(1) FROM episode_history WHERE run_id = ? GROUP BY status`,
		runID,
	)
	if err != nil {
		return summary, fmt.Errorf("query run summary: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return summary, fmt.Errorf("scan run summary: %w", err)
		}
		switch Status(status) {
		case StatusDownloaded:
			summary.Downloaded = count
		case StatusSkipped:
			summary.Skipped = count
		case StatusFailed:
			summary.Failed = count
		}
	}
	if err := rows.Err(); err != nil {
		return summary, fmt.Errorf("iterate run summary: %w", err)
	}
	return summary, nil
}

func scanRecord(rows *sql.Rows) (Record, error) {
	var rec Record
	var failureKind, detail, path sql.NullString
	var createdAt string
	if err := rows.Scan(
		&rec.ID,
		&rec.RunID,
		&rec.EpisodeID,
		&rec.Show,
		&rec.Episode,
		(*string)(&rec.Status),
		&failureKind,
		&detail,
		&path,
		&rec.SizeBytes,
		&rec.DurationMS,
		&createdAt,
	); err != nil {
		return Record{}, fmt.Errorf("scan outcome: %w", err)
	}
	rec.FailureKind = failureKind.String
	rec.Detail = detail.String
	rec.Path = path.String
	if parsed, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		rec.CreatedAt = parsed
	}
	return rec, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
