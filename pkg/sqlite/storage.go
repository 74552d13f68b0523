package sqlite

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	"github.com/samueltorres/r8counter/pkg/counter"

	_ "modernc.org/sqlite"
)

const DefaultDSN = ":memory:"

var _ counter.Storage = (*Storage)(nil)

type Storage struct {
	db *sql.DB
}

// NewStorage opens (or creates) the SQLite database at dsn and creates the
// counters table. Use ":memory:" for a database that lives with the process.
func NewStorage(dsn string) (*Storage, error) {
	if dsn == "" {
		dsn = DefaultDSN
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "sqlite storage open failure")
	}

	// a ":memory:" database exists per connection, and SQLite serializes
	// writers anyway
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS counters (
			name  TEXT PRIMARY KEY,
			value INTEGER NOT NULL DEFAULT 0
		)
	`); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "sqlite storage create table failure")
	}

	return &Storage{db: db}, nil
}

func (s *Storage) Create(ctx context.Context, name string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO counters (name, value) VALUES (?, 0) ON CONFLICT (name) DO NOTHING`, name)
	if err != nil {
		return 0, errors.Wrap(err, "sqlite storage create failure")
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "sqlite storage create failure")
	}

	if n == 0 {
		return 0, counter.ErrConflict
	}

	return 0, nil
}

func (s *Storage) Get(ctx context.Context, name string) (int64, error) {
	var value int64

	err := s.db.QueryRowContext(ctx, `SELECT value FROM counters WHERE name = ?`, name).Scan(&value)
	if err == sql.ErrNoRows {
		return 0, counter.ErrNotFound
	}
	if err != nil {
		return 0, errors.Wrap(err, "sqlite storage get failure")
	}

	return value, nil
}

func (s *Storage) Increment(ctx context.Context, name string) (int64, error) {
	var value int64

	err := s.db.QueryRowContext(ctx,
		`UPDATE counters SET value = value + 1 WHERE name = ? RETURNING value`, name,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return 0, counter.ErrNotFound
	}
	if err != nil {
		return 0, errors.Wrap(err, "sqlite storage increment failure")
	}

	return value, nil
}

func (s *Storage) Delete(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM counters WHERE name = ?`, name)
	if err != nil {
		return errors.Wrap(err, "sqlite storage delete failure")
	}

	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "sqlite storage delete failure")
	}

	if n == 0 {
		return counter.ErrNotFound
	}

	return nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}
