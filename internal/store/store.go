// Package store persists named LOB snapshots in SQLite: one JSON document
// per (lob, fiscal year), upserted on save, with a latest-by-update fallback
// when no fiscal year is asked for.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS lob_snapshots (
    id          TEXT PRIMARY KEY,
    lob         TEXT NOT NULL,
    fiscal_year TEXT NOT NULL DEFAULT '',
    data        TEXT NOT NULL,
    updated_at  TEXT NOT NULL,
    UNIQUE(lob, fiscal_year)
);
`

// Snapshot is one saved LOB planning state.
type Snapshot struct {
	ID         string          `json:"id"`
	LOB        string          `json:"lob"`
	FiscalYear string          `json:"fiscal_year,omitempty"`
	Data       json.RawMessage `json:"data"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// Store is the SQLite-backed snapshot store.
type Store struct {
	db *sql.DB
}

// New opens (creating if needed) the snapshot database at dbPath.
func New(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	// SQLite works best over a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Save upserts a snapshot keyed by (lob, fiscalYear). An empty fiscalYear is
// a valid key of its own.
func (s *Store) Save(lob, fiscalYear string, data json.RawMessage) error {
	if lob == "" {
		return fmt.Errorf("lob is required")
	}
	if !json.Valid(data) {
		return fmt.Errorf("snapshot data is not valid JSON")
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.Exec(`
		INSERT INTO lob_snapshots (id, lob, fiscal_year, data, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(lob, fiscal_year)
		DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		uuid.NewString(), lob, fiscalYear, string(data), now)
	if err != nil {
		return fmt.Errorf("failed to save snapshot for %s/%s: %w", lob, fiscalYear, err)
	}
	return nil
}

// Load returns the snapshot for (lob, fiscalYear). With an empty fiscalYear
// it returns the most recently updated snapshot for the LOB. A nil snapshot
// with nil error means not found.
func (s *Store) Load(lob, fiscalYear string) (*Snapshot, error) {
	var row *sql.Row
	if fiscalYear != "" {
		row = s.db.QueryRow(`
			SELECT id, lob, fiscal_year, data, updated_at
			FROM lob_snapshots WHERE lob = ? AND fiscal_year = ?`, lob, fiscalYear)
	} else {
		row = s.db.QueryRow(`
			SELECT id, lob, fiscal_year, data, updated_at
			FROM lob_snapshots WHERE lob = ? ORDER BY updated_at DESC LIMIT 1`, lob)
	}

	var snap Snapshot
	var data, updatedAt string
	err := row.Scan(&snap.ID, &snap.LOB, &snap.FiscalYear, &data, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot for %s/%s: %w", lob, fiscalYear, err)
	}
	snap.Data = json.RawMessage(data)
	if ts, perr := time.Parse(time.RFC3339Nano, updatedAt); perr == nil {
		snap.UpdatedAt = ts
	}
	return &snap, nil
}

// List returns the (lob, fiscal_year, updated_at) index of all snapshots,
// newest first. Data payloads are not loaded.
func (s *Store) List() ([]Snapshot, error) {
	rows, err := s.db.Query(`
		SELECT id, lob, fiscal_year, updated_at
		FROM lob_snapshots ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		var snap Snapshot
		var updatedAt string
		if err := rows.Scan(&snap.ID, &snap.LOB, &snap.FiscalYear, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot row: %w", err)
		}
		if ts, perr := time.Parse(time.RFC3339Nano, updatedAt); perr == nil {
			snap.UpdatedAt = ts
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}
