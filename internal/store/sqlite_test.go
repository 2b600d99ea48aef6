package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/i474232898/weatherpi/internal/weather"
)

func TestSQLStore_SaveAndLoad(t *testing.T) {
	ctx := context.Background()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("OpenSQLite failed: %v", err)
	}
	defer s.Close()

	if _, err := s.Load(ctx); !errors.Is(err, weather.ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss on empty table, got %v", err)
	}

	if err := s.Save(ctx, sampleRecord()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	// A second save replaces the single row.
	if err := s.Save(ctx, sampleRecord()); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}

	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	assertSameRecord(t, got, sampleRecord())

	var rows int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM forecast_cache`).Scan(&rows); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if rows != 1 {
		t.Fatalf("expected a single cache row, got %d", rows)
	}
}

func newMockSQLStore(t *testing.T) (*SQLStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS forecast_cache").WillReturnResult(sqlmock.NewResult(0, 0))
	s, err := NewSQLStore(db)
	if err != nil {
		t.Fatalf("NewSQLStore() error = %v", err)
	}
	return s, mock
}

func TestSQLStore_CorruptPayload(t *testing.T) {
	s, mock := newMockSQLStore(t)
	mock.ExpectQuery("SELECT payload FROM forecast_cache").
		WillReturnRows(sqlmock.NewRows([]string{"payload"}).AddRow("not json"))

	_, err := s.Load(context.Background())
	if !errors.Is(err, weather.ErrCacheCorrupt) {
		t.Fatalf("expected ErrCacheCorrupt, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSQLStore_QueryError(t *testing.T) {
	s, mock := newMockSQLStore(t)
	mock.ExpectQuery("SELECT payload FROM forecast_cache").WillReturnError(errors.New("disk I/O error"))

	_, err := s.Load(context.Background())
	if err == nil || errors.Is(err, weather.ErrCacheMiss) || errors.Is(err, weather.ErrCacheCorrupt) {
		t.Fatalf("expected a plain query error, got %v", err)
	}
}

func TestSQLStore_SaveError(t *testing.T) {
	s, mock := newMockSQLStore(t)
	mock.ExpectExec("INSERT OR REPLACE INTO forecast_cache").WillReturnError(errors.New("database is locked"))

	if err := s.Save(context.Background(), sampleRecord()); err == nil {
		t.Fatal("expected error from Save")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestNewSQLStore_SchemaError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS forecast_cache").WillReturnError(errors.New("read-only database"))
	if _, err := NewSQLStore(db); err == nil {
		t.Fatal("expected schema error")
	}
}
