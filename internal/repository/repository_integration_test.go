//go:build integration

package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/dandi/dandi/internal/model"
	"github.com/dandi/dandi/internal/repository"
	"github.com/dandi/dandi/internal/testutil"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// PostgreSQL Repository Integration Tests
// ============================================================================

func newPostgresTestEnv(t *testing.T) (context.Context, *repository.Repository) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	ctx := context.Background()
	dbURL := testutil.RequireEnv(t, "DATABASE_URL")

	require.NoError(t, repository.MigratePostgres(dbURL))

	repo, err := repository.New(ctx, dbURL)
	require.NoError(t, err)
	t.Cleanup(repo.Close)

	unlock, err := testutil.AcquireDBLock(ctx, repo.Pool())
	require.NoError(t, err)
	t.Cleanup(func() { _ = unlock() })

	_, err = repo.Pool().Exec(ctx, `TRUNCATE api_keys, users`)
	require.NoError(t, err)

	return ctx, repo
}

func TestIntegrationPostgres_APIKeyLifecycle(t *testing.T) {
	ctx, repo := newPostgresTestEnv(t)

	key := &model.APIKey{
		ID:        ulid.Make().String(),
		Name:      "integration",
		Key:       testutil.UniqueID("sk"),
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, repo.CreateAPIKey(ctx, key))

	got, err := repo.GetAPIKeyByID(ctx, key.ID)
	require.NoError(t, err)
	assert.Equal(t, key.Key, got.Key)

	renamed, err := repo.RenameAPIKey(ctx, key.ID, "renamed")
	require.NoError(t, err)
	assert.Equal(t, "renamed", renamed.Name)
	assert.Equal(t, key.Key, renamed.Key)

	n, err := repo.CountAPIKeysByKey(ctx, key.Key)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, repo.DeleteAPIKey(ctx, key.ID))
	_, err = repo.GetAPIKeyByID(ctx, key.ID)
	assert.ErrorIs(t, err, repository.ErrAPIKeyNotFound)
}

func TestIntegrationPostgres_ListNewestFirst(t *testing.T) {
	ctx, repo := newPostgresTestEnv(t)

	base := time.Now().UTC().Add(-time.Hour)
	for i, name := range []string{"a", "b", "c"} {
		require.NoError(t, repo.CreateAPIKey(ctx, &model.APIKey{
			ID:        ulid.Make().String(),
			Name:      name,
			Key:       testutil.UniqueID("sk"),
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}

	keys, err := repo.ListAPIKeys(ctx)
	require.NoError(t, err)
	require.Len(t, keys, 3)
	assert.Equal(t, []string{"c", "b", "a"}, []string{keys[0].Name, keys[1].Name, keys[2].Name})
}

func TestIntegrationPostgres_UpsertUser(t *testing.T) {
	ctx, repo := newPostgresTestEnv(t)

	first, err := repo.UpsertUser(ctx, &model.User{Email: "pg@example.com", Provider: "google"})
	require.NoError(t, err)

	second, err := repo.UpsertUser(ctx, &model.User{Email: "pg@example.com", Provider: "google"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}
