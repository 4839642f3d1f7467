//go:build sqlite

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"ennead/internal/model"

	_ "modernc.org/sqlite"
)

type SQLiteStore struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("sqlite path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return err
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}

	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	return nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			created_unix INTEGER NOT NULL,
			schema_version INTEGER NOT NULL,
			codec_version INTEGER NOT NULL,
			payload BLOB NOT NULL
		);
		CREATE TABLE IF NOT EXISTS round_diagnostics (
			run_id TEXT PRIMARY KEY,
			payload BLOB NOT NULL
		);
	`)
	return err
}

func (s *SQLiteStore) SaveRun(ctx context.Context, run model.RunSummary) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	payload, err := EncodeRun(run)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO runs (id, created_unix, schema_version, codec_version, payload)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			created_unix = excluded.created_unix,
			schema_version = excluded.schema_version,
			codec_version = excluded.codec_version,
			payload = excluded.payload
	`, run.ID, run.CreatedUnix, run.SchemaVersion, run.CodecVersion, payload)
	return err
}

func (s *SQLiteStore) GetRun(ctx context.Context, id string) (model.RunSummary, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return model.RunSummary{}, false, err
	}

	var payload []byte
	err = db.QueryRowContext(ctx, `SELECT payload FROM runs WHERE id = ?`, id).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.RunSummary{}, false, nil
		}
		return model.RunSummary{}, false, err
	}

	run, err := DecodeRun(payload)
	if err != nil {
		return model.RunSummary{}, false, fmt.Errorf("decode run %s: %w", id, err)
	}
	return run, true, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context) ([]model.RunSummary, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `SELECT payload FROM runs ORDER BY created_unix, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []model.RunSummary
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		run, err := DecodeRun(payload)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (s *SQLiteStore) SaveRoundDiagnostics(ctx context.Context, runID string, diagnostics []model.RoundDiagnostics) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	payload, err := EncodeRoundDiagnostics(diagnostics)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO round_diagnostics (run_id, payload)
		VALUES (?, ?)
		ON CONFLICT(run_id) DO UPDATE SET
			payload = excluded.payload
	`, runID, payload)
	return err
}

func (s *SQLiteStore) GetRoundDiagnostics(ctx context.Context, runID string) ([]model.RoundDiagnostics, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, false, err
	}

	var payload []byte
	err = db.QueryRowContext(ctx, `SELECT payload FROM round_diagnostics WHERE run_id = ?`, runID).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}

	diagnostics, err := DecodeRoundDiagnostics(payload)
	if err != nil {
		return nil, false, fmt.Errorf("decode diagnostics %s: %w", runID, err)
	}
	return diagnostics, true, nil
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, errors.New("store is not initialized")
	}
	return s.db, nil
}

func newSQLiteStore(path string) (Store, error) {
	return NewSQLiteStore(path), nil
}
