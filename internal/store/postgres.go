package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/serroba/shortn/internal/shortener"
)

const (
	pgUniqueViolation = "23505"
	linksPrimaryKey   = "links_pkey"
)

// PostgresStore is a PostgreSQL implementation of shortener.Store.
type PostgresStore struct {
	pool *pgxpool.Pool
	opts Options
}

// NewPostgresStore creates a new PostgreSQL-backed link store. The store owns pool
// and closes it on Shutdown.
func NewPostgresStore(pool *pgxpool.Pool, opts Options) *PostgresStore {
	return &PostgresStore{pool: pool, opts: opts}
}

func (p *PostgresStore) EnsureSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS links (
			id  CHAR(%d) PRIMARY KEY,
			url TEXT NOT NULL UNIQUE
		)
	`, p.opts.idLength())

	if _, err := p.pool.Exec(ctx, query); err != nil {
		return shortener.E("store.PostgresStore.EnsureSchema", shortener.KindStoreUnavailable, err)
	}

	return nil
}

func (p *PostgresStore) Put(ctx context.Context, url string) (shortener.ID, error) {
	return shortener.Assign(ctx, "store.PostgresStore.Put", p.opts.NewID, p.opts.IDRetries, url, p.upsert)
}

func (p *PostgresStore) upsert(ctx context.Context, id shortener.ID, url string) (shortener.ID, error) {
	query := `
		INSERT INTO links (id, url)
		VALUES ($1, $2)
		ON CONFLICT (url) DO UPDATE SET id = excluded.id
		RETURNING id
	`

	var assigned string

	err := p.pool.QueryRow(ctx, query, string(id), url).Scan(&assigned)
	if err != nil {
		if isPrimaryKeyViolation(err) {
			return "", fmt.Errorf("id %q: %w", id, shortener.ErrIDCollision)
		}

		return "", err
	}

	return shortener.ID(assigned), nil
}

func (p *PostgresStore) Get(ctx context.Context, id shortener.ID) (string, error) {
	const op = "store.PostgresStore.Get"

	query := `
		SELECT url
		FROM links
		WHERE id = $1
	`

	var url string

	err := p.pool.QueryRow(ctx, query, string(id)).Scan(&url)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", shortener.E(op, shortener.KindNotFound, err)
		}

		return "", shortener.E(op, shortener.KindStoreUnavailable, err)
	}

	return url, nil
}

func (p *PostgresStore) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Shutdown closes the connection pool.
func (p *PostgresStore) Shutdown() error {
	p.pool.Close()

	return nil
}

func isPrimaryKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}

	return pgErr.Code == pgUniqueViolation && pgErr.ConstraintName == linksPrimaryKey
}

// Compile-time check.
var _ shortener.Store = (*PostgresStore)(nil)
