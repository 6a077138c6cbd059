package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
	"github.com/serroba/shortn/internal/shortener"
)

// SQLiteStore is a SQLite implementation of shortener.Store.
type SQLiteStore struct {
	db   *sql.DB
	opts Options
}

// NewSQLiteStore opens the SQLite database at dsn.
func NewSQLiteStore(dsn string, opts Options) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, shortener.E("store.NewSQLiteStore", shortener.KindStoreUnavailable,
			fmt.Errorf("open sqlite database: %w", err))
	}

	// SQLite allows a single writer; one connection serializes writes instead of
	// surfacing SQLITE_BUSY to callers.
	db.SetMaxOpenConns(1)

	return &SQLiteStore{db: db, opts: opts}, nil
}

func (s *SQLiteStore) EnsureSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS links (
			id  CHAR(%d) PRIMARY KEY NOT NULL,
			url TEXT NOT NULL UNIQUE
		)
	`, s.opts.idLength())

	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return shortener.E("store.SQLiteStore.EnsureSchema", shortener.KindStoreUnavailable, err)
	}

	return nil
}

func (s *SQLiteStore) Put(ctx context.Context, url string) (shortener.ID, error) {
	return shortener.Assign(ctx, "store.SQLiteStore.Put", s.opts.NewID, s.opts.IDRetries, url, s.upsert)
}

func (s *SQLiteStore) upsert(ctx context.Context, id shortener.ID, url string) (shortener.ID, error) {
	query := `
		INSERT INTO links (id, url)
		VALUES (?, ?)
		ON CONFLICT (url) DO UPDATE SET id = excluded.id
		RETURNING id
	`

	var assigned string

	err := s.db.QueryRowContext(ctx, query, string(id), url).Scan(&assigned)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey {
			return "", fmt.Errorf("id %q: %w", id, shortener.ErrIDCollision)
		}

		return "", err
	}

	return shortener.ID(assigned), nil
}

func (s *SQLiteStore) Get(ctx context.Context, id shortener.ID) (string, error) {
	const op = "store.SQLiteStore.Get"

	var url string

	err := s.db.QueryRowContext(ctx, "SELECT url FROM links WHERE id = ?", string(id)).Scan(&url)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", shortener.E(op, shortener.KindNotFound, err)
		}

		return "", shortener.E(op, shortener.KindStoreUnavailable, err)
	}

	return url, nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Shutdown closes the database.
func (s *SQLiteStore) Shutdown() error {
	return s.db.Close()
}

// Compile-time check.
var _ shortener.Store = (*SQLiteStore)(nil)
