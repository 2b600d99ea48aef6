package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"github.com/i474232898/weatherpi/internal/weather"
)

// SQLStore keeps the record in a one-row table of an embedded SQLite database.
type SQLStore struct {
	db *sql.DB
}

const sqlSchema = `CREATE TABLE IF NOT EXISTS forecast_cache (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    payload TEXT NOT NULL,
    fetched_at TEXT NOT NULL
);`

// OpenSQLite opens (or creates) the database at path and applies the schema.
func OpenSQLite(path string) (*SQLStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		slog.Warn("could not set sqlite WAL mode", "error", err)
	}

	s, err := NewSQLStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLStore wraps an open database handle and applies the schema.
func NewSQLStore(db *sql.DB) (*SQLStore, error) {
	if _, err := db.Exec(sqlSchema); err != nil {
		return nil, fmt.Errorf("apply cache schema: %w", err)
	}
	return &SQLStore{db: db}, nil
}

func (s *SQLStore) Load(ctx context.Context) (weather.Record, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM forecast_cache WHERE id = 1`).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return weather.Record{}, weather.ErrCacheMiss
	}
	if err != nil {
		return weather.Record{}, fmt.Errorf("query cache row: %w", err)
	}
	return decodeRecord([]byte(payload))
}

func (s *SQLStore) Save(ctx context.Context, rec weather.Record) error {
	data, err := encodeRecord(rec)
	if err != nil {
		return fmt.Errorf("encode cache record: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO forecast_cache(id, payload, fetched_at) VALUES(1, ?, ?)`,
		string(data), rec.FetchedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("write cache row: %w", err)
	}
	return nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}
