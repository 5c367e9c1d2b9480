// Package repository provides database access layer.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dandi/dandi/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrUnsupportedDatabaseURL is returned by Open for an unknown URL scheme.
var ErrUnsupportedDatabaseURL = errors.New("unsupported database URL scheme")

// Store is the credential store shared by the PostgreSQL and SQLite backends.
type Store interface {
	CreateAPIKey(ctx context.Context, key *model.APIKey) error
	ListAPIKeys(ctx context.Context) ([]*model.APIKey, error)
	GetAPIKeyByID(ctx context.Context, id string) (*model.APIKey, error)
	RenameAPIKey(ctx context.Context, id, name string) (*model.APIKey, error)
	DeleteAPIKey(ctx context.Context, id string) error
	CountAPIKeysByKey(ctx context.Context, key string) (int, error)

	UpsertUser(ctx context.Context, user *model.User) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)

	Ping(ctx context.Context) error
	Close()
}

var (
	_ Store = (*Repository)(nil)
	_ Store = (*SQLiteRepository)(nil)
)

// Open migrates and connects to the store named by databaseURL.
// postgres:// and postgresql:// select PostgreSQL, sqlite:// selects SQLite.
func Open(ctx context.Context, databaseURL string) (Store, error) {
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		if err := MigratePostgres(databaseURL); err != nil {
			return nil, err
		}
		return New(ctx, databaseURL)
	case strings.HasPrefix(databaseURL, "sqlite://"):
		return NewSQLite(ctx, strings.TrimPrefix(databaseURL, "sqlite://"))
	default:
		return nil, ErrUnsupportedDatabaseURL
	}
}

// Repository provides PostgreSQL access methods.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new Repository with a connection pool.
func New(ctx context.Context, databaseURL string) (*Repository, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	// Connection pool settings
	config.MaxConns = 10
	config.MinConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Repository{pool: pool}, nil
}

// Ping checks database connectivity.
func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close closes the database connection pool.
func (r *Repository) Close() {
	r.pool.Close()
}

// Pool returns the underlying connection pool.
// Use sparingly - prefer adding methods to Repository.
func (r *Repository) Pool() *pgxpool.Pool {
	return r.pool
}
