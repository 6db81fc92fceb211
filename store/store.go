// Package store persists computed P&L snapshots in SQLite, keyed by
// (as-of date, symbol). The accounting engine never touches it; callers save
// what ComputePnL returned and can replay any stored as-of date later.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/pnlbook/pnlbook"
)

const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
	as_of  TEXT NOT NULL,
	symbol TEXT NOT NULL,
	result TEXT NOT NULL,
	PRIMARY KEY (as_of, symbol)
);`

// Store is a SQLite-backed snapshot archive.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

// Open opens (creating if needed) the snapshot database at path. A nil logger
// disables logging.
func Open(path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	dsn := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot database at %s: %w", path, err)
	}
	// Limit open connections to 1 for SQLite to avoid locking issues
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping snapshot database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create snapshot schema: %w", err)
	}
	return &Store{db: db, logger: logger}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// Save stores one result set under its as-of date, replacing any previous
// snapshot for the same date.
func (s *Store) Save(asOf pnlbook.Date, results []pnlbook.InstrumentRollup) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin snapshot transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM snapshots WHERE as_of = ?`, asOf.String()); err != nil {
		return fmt.Errorf("failed to clear snapshot for %s: %w", asOf, err)
	}
	for _, r := range results {
		payload, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("failed to encode result for %q: %w", r.Symbol, err)
		}
		if _, err := tx.Exec(`INSERT INTO snapshots (as_of, symbol, result) VALUES (?, ?, ?)`,
			asOf.String(), r.Symbol, string(payload)); err != nil {
			return fmt.Errorf("failed to insert result for %q: %w", r.Symbol, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}
	s.logger.Info("snapshot saved", zap.String("asOf", asOf.String()), zap.Int("instruments", len(results)))
	return nil
}

// Load returns the result set stored under the given as-of date, sorted by
// symbol. An absent date yields an empty set, not an error.
func (s *Store) Load(asOf pnlbook.Date) ([]pnlbook.InstrumentRollup, error) {
	rows, err := s.db.Query(`SELECT result FROM snapshots WHERE as_of = ? ORDER BY symbol`, asOf.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot for %s: %w", asOf, err)
	}
	defer rows.Close()

	var results []pnlbook.InstrumentRollup
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot row: %w", err)
		}
		var r pnlbook.InstrumentRollup
		if err := json.Unmarshal([]byte(payload), &r); err != nil {
			return nil, fmt.Errorf("failed to decode stored result: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// Dates lists every as-of date with a stored snapshot, ascending.
func (s *Store) Dates() ([]pnlbook.Date, error) {
	rows, err := s.db.Query(`SELECT DISTINCT as_of FROM snapshots ORDER BY as_of`)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot dates: %w", err)
	}
	defer rows.Close()

	var dates []pnlbook.Date
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot date: %w", err)
		}
		d, err := pnlbook.ParseDate(raw)
		if err != nil {
			return nil, fmt.Errorf("stored snapshot has invalid date %q: %w", raw, err)
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}
