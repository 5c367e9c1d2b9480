package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/dandi/dandi/internal/model"
	"github.com/jackc/pgx/v5"
)

// Common errors for API key repository operations.
var (
	ErrAPIKeyNotFound = errors.New("API key not found")
)

const apiKeyColumns = `id, name, key, created_at`

// CreateAPIKey inserts a new API key into the database.
func (r *Repository) CreateAPIKey(ctx context.Context, key *model.APIKey) error {
	query := `
		INSERT INTO api_keys (id, name, key, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.pool.Exec(ctx, query,
		key.ID,
		key.Name,
		key.Key,
		key.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create API key: %w", err)
	}

	return nil
}

// GetAPIKeyByID retrieves an API key by its ID.
func (r *Repository) GetAPIKeyByID(ctx context.Context, id string) (*model.APIKey, error) {
	query := `SELECT ` + apiKeyColumns + ` FROM api_keys WHERE id = $1`

	return r.scanAPIKey(r.pool.QueryRow(ctx, query, id))
}

// ListAPIKeys retrieves all API keys, newest first.
func (r *Repository) ListAPIKeys(ctx context.Context) ([]*model.APIKey, error) {
	query := `
		SELECT ` + apiKeyColumns + `
		FROM api_keys
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list API keys: %w", err)
	}
	defer rows.Close()

	keys := make([]*model.APIKey, 0)
	for rows.Next() {
		key, err := r.scanAPIKey(rows)
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
func (r *Repository) RenameAPIKey(ctx context.Context, id, name string) (*model.APIKey, error) {
	query := `
		UPDATE api_keys
		SET name = $2
		WHERE id = $1
		RETURNING ` + apiKeyColumns

	return r.scanAPIKey(r.pool.QueryRow(ctx, query, id, name))
}

// DeleteAPIKey removes an API key. Deleting an unknown id is not an error.
func (r *Repository) DeleteAPIKey(ctx context.Context, id string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM api_keys WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete API key: %w", err)
	}
	return nil
}

// CountAPIKeysByKey returns how many rows hold exactly this key value.
func (r *Repository) CountAPIKeysByKey(ctx context.Context, key string) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM api_keys WHERE key = $1`, key).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count API keys: %w", err)
	}
	return n, nil
}

// scanAPIKey scans a single row into an APIKey model.
func (r *Repository) scanAPIKey(row pgx.Row) (*model.APIKey, error) {
	var key model.APIKey

	err := row.Scan(
		&key.ID,
		&key.Name,
		&key.Key,
		&key.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAPIKeyNotFound
		}
		return nil, fmt.Errorf("failed to scan API key: %w", err)
	}

	return &key, nil
}
