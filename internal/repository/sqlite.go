package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dandi/dandi/internal/model"
	_ "modernc.org/sqlite"
)

// sqliteTimeFormat is fixed-width so lexical order matches chronological order.
const sqliteTimeFormat = "2006-01-02T15:04:05.000000000Z"

// SQLiteRepository is the SQLite credential store.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLite opens the SQLite database at path and applies migrations.
// ":memory:" opens a private in-memory database.
func NewSQLite(ctx context.Context, path string) (*SQLiteRepository, error) {
	if path == "" {
		return nil, errors.New("sqlite path is empty")
	}

	dsn := path
	if path != ":memory:" {
		dsn = "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// One connection: an in-memory database is per connection, and SQLite
	// serializes writers anyway.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	if err := migrateSQLite(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLiteRepository{db: db}, nil
}

// Ping checks database connectivity.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close closes the database.
func (r *SQLiteRepository) Close() {
	_ = r.db.Close()
}

// CreateAPIKey inserts a new API key.
func (r *SQLiteRepository) CreateAPIKey(ctx context.Context, key *model.APIKey) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO api_keys (id, name, key, created_at) VALUES (?, ?, ?, ?)`,
		key.ID, key.Name, key.Key, formatSQLiteTime(key.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create API key: %w", err)
	}
	return nil
}

// GetAPIKeyByID retrieves an API key by its ID.
func (r *SQLiteRepository) GetAPIKeyByID(ctx context.Context, id string) (*model.APIKey, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+apiKeyColumns+` FROM api_keys WHERE id = ?`, id)
	return scanSQLiteAPIKey(row)
}

// ListAPIKeys retrieves all API keys, newest first.
func (r *SQLiteRepository) ListAPIKeys(ctx context.Context) ([]*model.APIKey, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+apiKeyColumns+` FROM api_keys ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list API keys: %w", err)
	}
	defer rows.Close()

	keys := make([]*model.APIKey, 0)
	for rows.Next() {
		key, err := scanSQLiteAPIKey(rows)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating API keys: %w", err)
	}
	return keys, nil
}

// RenameAPIKey changes the name of an API key and returns the updated row.
func (r *SQLiteRepository) RenameAPIKey(ctx context.Context, id, name string) (*model.APIKey, error) {
	row := r.db.QueryRowContext(ctx,
		`UPDATE api_keys SET name = ? WHERE id = ? RETURNING `+apiKeyColumns, name, id)
	return scanSQLiteAPIKey(row)
}

// DeleteAPIKey removes an API key. Deleting an unknown id is not an error.
func (r *SQLiteRepository) DeleteAPIKey(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM api_keys WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete API key: %w", err)
	}
	return nil
}

// CountAPIKeysByKey returns how many rows hold exactly this key value.
func (r *SQLiteRepository) CountAPIKeysByKey(ctx context.Context, key string) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM api_keys WHERE key = ?`, key).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count API keys: %w", err)
	}
	return n, nil
}

// UpsertUser inserts the user unless one with the same email exists,
// then returns the stored row.
func (r *SQLiteRepository) UpsertUser(ctx context.Context, user *model.User) (*model.User, error) {
	prepareUser(user)

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, email, name, image, provider, provider_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (email) DO NOTHING`,
		user.ID, user.Email, user.Name, user.Image, user.Provider, user.ProviderID,
		formatSQLiteTime(user.CreatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}

	return r.GetUserByEmail(ctx, user.Email)
}

// GetUserByEmail retrieves a user by their email address.
func (r *SQLiteRepository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var (
		user      model.User
		createdAt string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, email, name, image, provider, provider_id, created_at
		FROM users
		WHERE email = ?`, email).Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.Image,
		&user.Provider,
		&user.ProviderID,
		&createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	if user.CreatedAt, err = parseSQLiteTime(createdAt); err != nil {
		return nil, err
	}
	return &user, nil
}

type sqlScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteAPIKey(row sqlScanner) (*model.APIKey, error) {
	var (
		key       model.APIKey
		createdAt string
	)

	if err := row.Scan(&key.ID, &key.Name, &key.Key, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAPIKeyNotFound
		}
		return nil, fmt.Errorf("failed to scan API key: %w", err)
	}

	var err error
	if key.CreatedAt, err = parseSQLiteTime(createdAt); err != nil {
		return nil, err
	}
	return &key, nil
}

func formatSQLiteTime(t time.Time) string {
	return t.UTC().Format(sqliteTimeFormat)
}

func parseSQLiteTime(s string) (time.Time, error) {
	t, err := time.Parse(sqliteTimeFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse timestamp %q: %w", s, err)
	}
	return t, nil
}
