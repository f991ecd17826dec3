// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history persists a summary of each successful conversion, keyed
// by source URL. Converting the same URL again updates its record in place,
// and only the most recently touched records are kept.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/design-compiler/pkg/types"
)

const (
	dbFile = "history.db"

	// DefaultCapacity is the number of records kept when none is configured.
	DefaultCapacity = 10
)

// ErrNoRecord is returned when an id matches no record.
var ErrNoRecord = errors.New("history record not found")

// Store manages the history SQLite database.
type Store struct {
	db       *sql.DB
	capacity int
	now      func() time.Time
}

// NewStore opens or creates the history database at cfg.Dir/history.db.
func NewStore(cfg types.HistoryConfig) (*Store, error) {
	dir := cfg.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", filepath.Join(dir, dbFile)+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// Upserts read MAX(touch_seq) and write in one statement; a single
	// connection keeps them serialized.
	db.SetMaxOpenConns(1)

	capacity := cfg.Capacity
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	s := &Store{db: db, capacity: capacity, now: func() time.Time { return time.Now().UTC() }}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS history (
			id TEXT PRIMARY KEY,
			source_url TEXT NOT NULL UNIQUE,
			display_name TEXT NOT NULL,
			preview_url TEXT,
			format TEXT NOT NULL,
			created_at TEXT NOT NULL,
			last_touched TEXT NOT NULL,
			touch_seq INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_history_touch_seq ON history(touch_seq)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

const columns = `id, source_url, display_name, preview_url, format, created_at, last_touched`

// Record upserts rec by source URL, marks it most recently touched, and
// evicts the least recently touched records beyond capacity. A new record
// gets a fresh id; an existing one keeps its id. The stored record is
// returned.
func (s *Store) Record(ctx context.Context, rec types.HistoryRecord) (types.HistoryRecord, error) {
	if rec.SourceURL == "" {
		return types.HistoryRecord{}, fmt.Errorf("recording history: empty source url")
	}
	id, err := uuid.NewV7()
	if err != nil {
		return types.HistoryRecord{}, fmt.Errorf("generating record id: %w", err)
	}
	now := s.now()
	if rec.Timestamp.IsZero() {
		rec.Timestamp = now
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return types.HistoryRecord{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO history (`+columns+`, touch_seq)
		 VALUES (?, ?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(touch_seq), 0) + 1 FROM history))
		 ON CONFLICT(source_url) DO UPDATE SET
			display_name=excluded.display_name, preview_url=excluded.preview_url,
			format=excluded.format, created_at=excluded.created_at,
			last_touched=excluded.last_touched, touch_seq=excluded.touch_seq`,
		id.String(), rec.SourceURL, rec.DisplayName, rec.PreviewURL, rec.Format,
		formatTime(rec.Timestamp), formatTime(now),
	)
	if err != nil {
		return types.HistoryRecord{}, fmt.Errorf("upserting record: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`DELETE FROM history WHERE id NOT IN (
			SELECT id FROM history ORDER BY touch_seq DESC LIMIT ?
		)`, s.capacity)
	if err != nil {
		return types.HistoryRecord{}, fmt.Errorf("evicting records: %w", err)
	}

	stored, err := scanRecord(tx.QueryRowContext(ctx,
		`SELECT `+columns+` FROM history WHERE source_url = ?`, rec.SourceURL))
	if err != nil {
		return types.HistoryRecord{}, err
	}
	if err := tx.Commit(); err != nil {
		return types.HistoryRecord{}, fmt.Errorf("committing record: %w", err)
	}
	return stored, nil
}

// List returns all records, most recently touched first.
func (s *Store) List(ctx context.Context) ([]types.HistoryRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+columns+` FROM history ORDER BY touch_seq DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing history: %w", err)
	}
	defer rows.Close()

	records := []types.HistoryRecord{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Get returns the record with the given id.
func (s *Store) Get(ctx context.Context, id string) (types.HistoryRecord, error) {
	return scanRecord(s.db.QueryRowContext(ctx, `SELECT `+columns+` FROM history WHERE id = ?`, id))
}

// Rename sets a record's display name and marks it most recently touched.
func (s *Store) Rename(ctx context.Context, id, name string) (types.HistoryRecord, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE history SET display_name = ?, last_touched = ?,
			touch_seq = (SELECT COALESCE(MAX(touch_seq), 0) + 1 FROM history)
		 WHERE id = ?`,
		name, formatTime(s.now()), id)
	if err != nil {
		return types.HistoryRecord{}, fmt.Errorf("renaming record: %w", err)
	}
	if err := affected(res, id); err != nil {
		return types.HistoryRecord{}, err
	}
	return s.Get(ctx, id)
}

// Delete removes the record with the given id.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM history WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting record: %w", err)
	}
	return affected(res, id)
}

// Clear removes every record and returns how many there were.
func (s *Store) Clear(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM history`)
	if err != nil {
		return 0, fmt.Errorf("clearing history: %w", err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func affected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNoRecord, id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (types.HistoryRecord, error) {
	var (
		rec                types.HistoryRecord
		preview            sql.NullString
		created, lastTouch string
	)
	err := row.Scan(&rec.ID, &rec.SourceURL, &rec.DisplayName, &preview, &rec.Format, &created, &lastTouch)
	if errors.Is(err, sql.ErrNoRows) {
		return types.HistoryRecord{}, ErrNoRecord
	}
	if err != nil {
		return types.HistoryRecord{}, fmt.Errorf("scanning record: %w", err)
	}
	rec.PreviewURL = preview.String
	rec.Timestamp = parseTime(created)
	rec.LastTouched = parseTime(lastTouch)
	return rec, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
