package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// AutosaveStore is a local SQLite journal of serialized document states. The
// session mirrors snapshot pushes into it so an interrupted run can recover
// its last state.
type AutosaveStore struct {
	db *sql.DB
}

// NewAutosaveStore creates or opens the journal database.
func NewAutosaveStore(path string) (*AutosaveStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	s := &AutosaveStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init autosave schema: %w", err)
	}
	return s, nil
}

func (s *AutosaveStore) Close() error {
	return s.db.Close()
}

func (s *AutosaveStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS states (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			saved_at TEXT NOT NULL,
			doc BLOB NOT NULL
		);`,
	}
	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

// SaveState appends a serialized document state and returns its sequence
// number.
func (s *AutosaveStore) SaveState(ctx context.Context, doc []byte) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO states (saved_at, doc) VALUES (?, ?)`,
		time.Now().UTC().Format(time.RFC3339), doc)
	if err != nil {
		return 0, fmt.Errorf("failed to save state: %w", err)
	}
	return res.LastInsertId()
}

// LatestState returns the most recent saved document, or nil when the
// journal is empty.
func (s *AutosaveStore) LatestState(ctx context.Context) ([]byte, error) {
	var doc []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT doc FROM states ORDER BY seq DESC LIMIT 1`).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load latest state: %w", err)
	}
	return doc, nil
}

// Prune keeps only the newest `keep` states.
func (s *AutosaveStore) Prune(ctx context.Context, keep int) error {
	if keep <= 0 {
		keep = 1
	}
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM states WHERE seq NOT IN (
			SELECT seq FROM states ORDER BY seq DESC LIMIT ?
		)`, keep)
	if err != nil {
		return fmt.Errorf("failed to prune autosave journal: %w", err)
	}
	return nil
}
