package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/meikuraledutech/wbs"
	_ "modernc.org/sqlite"
)

var _ wbs.Store = (*SQLiteStore)(nil)

// SQLiteStore implements wbs.Store on an embedded SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Open opens a SQLite database at the given path. ":memory:" opens a private
// in-memory database.
func Open(path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("wbs: create database directory: %w", err)
		}
	}

	// Pragmas in the DSN apply to every connection the pool opens.
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("wbs: open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("wbs: connect database: %w", err)
	}

	// SQLite works best with a single writer. It also keeps ":memory:" on one connection.
	db.SetMaxOpenConns(1)

	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// exists runs a SELECT EXISTS query.
func exists(ctx context.Context, exec executor, query string, args ...any) (bool, error) {
	var ok bool
	if err := exec.QueryRowContext(ctx, query, args...).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

// Dates are stored as YYYY-MM-DD text.
func dateArg(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(time.DateOnly)
}

// nullDate scans a nullable YYYY-MM-DD column into a *time.Time.
type nullDate struct {
	dest **time.Time
}

func dateDest(dest **time.Time) nullDate {
	return nullDate{dest: dest}
}

func (d nullDate) Scan(src any) error {
	var raw string
	switch v := src.(type) {
	case nil:
		*d.dest = nil
		return nil
	case string:
		raw = v
	case []byte:
		raw = string(v)
	case time.Time:
		t := time.Date(v.Year(), v.Month(), v.Day(), 0, 0, 0, 0, time.UTC)
		*d.dest = &t
		return nil
	default:
		return fmt.Errorf("wbs: unsupported date value %T", src)
	}

	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return fmt.Errorf("wbs: parse date %q: %w", raw, err)
	}
	*d.dest = &t
	return nil
}

// expectAffected returns notFound when res touched no rows.
func expectAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("wbs: rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
