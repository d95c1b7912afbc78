// Package store handles SQLite persistence of report runs.
package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/sitereport/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

var (
	// ErrRunNotFound is returned when a run id is unknown.
	ErrRunNotFound = errors.New("run not found")
	// ErrAmbiguousRun is returned when a run id prefix matches several runs.
	ErrAmbiguousRun = errors.New("run id prefix is ambiguous")
)

// Store wraps SQLite access for run history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			generated_at TEXT NOT NULL,
			input_dir TEXT NOT NULL,
			output_path TEXT NOT NULL,
			latest_file TEXT NOT NULL,
			files INTEGER NOT NULL,
			records INTEGER NOT NULL,
			usage_rows INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS run_content (
			run_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			content TEXT NOT NULL,
			type TEXT NOT NULL,
			unique_viewers INTEGER NOT NULL,
			viewers INTEGER NOT NULL,
			PRIMARY KEY (run_id, position)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_generated_at ON runs(generated_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertRun records a finished report run and its content totals. It returns
// the new run id.
func (s *Store) InsertRun(ctx context.Context, report model.Report, outputPath string) (string, error) {
	id := uuid.NewString()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, generated_at, input_dir, output_path, latest_file, files, records, usage_rows)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		report.GeneratedAt.UTC().Format(time.RFC3339Nano),
		report.InputDir,
		outputPath,
		report.LatestFile,
		len(report.Files),
		len(report.Content.Records),
		len(report.Usage),
	)
	if err != nil {
		return "", err
	}

	if len(report.Content.Records) > 0 {
		var stmt *sql.Stmt
		stmt, err = tx.PrepareContext(ctx,
			`INSERT INTO run_content (run_id, position, content, type, unique_viewers, viewers)
			 VALUES (?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return "", err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for i, rec := range report.Content.Records {
			if _, err = stmt.ExecContext(ctx, id, i, rec.Key.Content, rec.Key.Type, rec.UniqueViewers, rec.Viewers); err != nil {
				return "", err
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

// ListRuns returns the most recent runs, newest first. A limit of zero or
// less returns every run.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]model.RunSummary, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, generated_at, input_dir, output_path, latest_file, files, records, usage_rows
		FROM runs
		ORDER BY generated_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var runs []model.RunSummary
	for rows.Next() {
		var run model.RunSummary
		var generatedAt string
		if err := rows.Scan(&run.ID, &generatedAt, &run.InputDir, &run.OutputPath, &run.LatestFile, &run.Files, &run.Records, &run.UsageRows); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, generatedAt)
		if err != nil {
			return nil, err
		}
		run.GeneratedAt = parsed
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return runs, nil
}

// ResolveRunID expands a run id prefix to the full id of the single matching
// run.
func (s *Store) ResolveRunID(ctx context.Context, prefix string) (string, error) {
	if prefix == "" {
		return "", ErrRunNotFound
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM runs WHERE substr(id, 1, ?) = ? ORDER BY id LIMIT 2`,
		len(prefix), prefix)
	if err != nil {
		return "", err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	switch len(ids) {
	case 0:
		return "", ErrRunNotFound
	case 1:
		return ids[0], nil
	default:
		return "", ErrAmbiguousRun
	}
}

// RunContent returns the content totals recorded for a run in their original
// order.
func (s *Store) RunContent(ctx context.Context, id string) ([]model.ContentRecord, error) {
	var exists int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs WHERE id = ?`, id).Scan(&exists); err != nil {
		return nil, err
	}
	if exists == 0 {
		return nil, ErrRunNotFound
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT content, type, unique_viewers, viewers
		FROM run_content
		WHERE run_id = ?
		ORDER BY position ASC`, id)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var records []model.ContentRecord
	for rows.Next() {
		var rec model.ContentRecord
		if err := rows.Scan(&rec.Key.Content, &rec.Key.Type, &rec.UniqueViewers, &rec.Viewers); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}
