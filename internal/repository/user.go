package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dandi/dandi/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
)

// Common errors for user repository operations.
var (
	ErrUserNotFound = errors.New("user not found")
)

// prepareUser fills the generated fields of a user about to be inserted.
func prepareUser(user *model.User) {
	if user.ID == "" {
		user.ID = ulid.Make().String()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
}

// UpsertUser inserts the user unless one with the same email exists,
// then returns the stored row. Concurrent calls for one email yield one row.
func (r *Repository) UpsertUser(ctx context.Context, user *model.User) (*model.User, error) {
	prepareUser(user)

	query := `
		INSERT INTO users (id, email, name, image, provider, provider_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (email) DO NOTHING
	`

	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Email,
		user.Name,
		user.Image,
		user.Provider,
		user.ProviderID,
		user.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}

	return r.GetUserByEmail(ctx, user.Email)
}

// GetUserByEmail retrieves a user by their email address.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `
		SELECT id, email, name, image, provider, provider_id, created_at
		FROM users
		WHERE email = $1
	`

	var user model.User
	err := r.pool.QueryRow(ctx, query, email).Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.Image,
		&user.Provider,
		&user.ProviderID,
		&user.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return &user, nil
}
