// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dandi/dandi/internal/apperror"
	"github.com/dandi/dandi/internal/auth"
	"github.com/dandi/dandi/internal/cache"
	"github.com/dandi/dandi/internal/metrics"
	"github.com/dandi/dandi/internal/model"
	"github.com/dandi/dandi/internal/repository"
	"github.com/oklog/ulid/v2"
)

// Caller-facing messages.
const (
	MsgMissingDatabase = "Missing database configuration"
	MsgIDAndNameNeeded = "ID and name are required"
	MsgIDRequired      = "ID is required"
	MsgKeyNotFound     = "API key not found"
	MsgFetchKeysFailed = "Failed to fetch API keys"
	MsgCreateKeyFailed = "Failed to create API key"
	MsgUpdateKeyFailed = "Failed to update API key"
	MsgDeleteKeyFailed = "Failed to delete API key"
	MsgServerError     = "Server error"
)

// KeyService handles API key business logic.
type KeyService struct {
	store   repository.Store
	cache   cache.Validations
	timeout time.Duration
	logger  *slog.Logger
	metrics metrics.Recorder
}

// NewKeyService creates a new KeyService.
// store and validations may be nil: without a store every operation fails
// with a configuration error, without a cache every validation hits the store.
func NewKeyService(store repository.Store, validations cache.Validations, timeout time.Duration, logger *slog.Logger, recorder metrics.Recorder) *KeyService {
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &KeyService{
		store:   store,
		cache:   validations,
		timeout: timeout,
		logger:  logger,
		metrics: recorder,
	}
}

// Generate issues and persists a new key. An empty name falls back to the default label.
func (s *KeyService) Generate(ctx context.Context, name string) (*model.APIKey, error) {
	if s.store == nil {
		return nil, apperror.Configuration(MsgMissingDatabase)
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = model.DefaultKeyName
	}

	token, err := auth.GenerateAPIKey()
	if err != nil {
		return nil, fmt.Errorf("generate API key: %w", err)
	}

	key := &model.APIKey{
		ID:        ulid.Make().String(),
		Name:      name,
		Key:       token,
		CreatedAt: time.Now().UTC(),
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.store.CreateAPIKey(ctx, key); err != nil {
		return nil, apperror.Store(MsgCreateKeyFailed, err)
	}

	s.metrics.IncKeyGenerated()
	s.logger.Info("API key created",
		slog.String("key_id", key.ID),
		slog.String("key", auth.MaskKey(key.Key)),
		slog.String("name", key.Name),
	)

	return key, nil
}

// List returns all keys, newest first.
func (s *KeyService) List(ctx context.Context) ([]*model.APIKey, error) {
	if s.store == nil {
		return nil, apperror.Configuration(MsgMissingDatabase)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	keys, err := s.store.ListAPIKeys(ctx)
	if err != nil {
		return nil, apperror.Store(MsgFetchKeysFailed, err)
	}
	return keys, nil
}

// Rename changes only the name of an existing key.
func (s *KeyService) Rename(ctx context.Context, id, name string) (*model.APIKey, error) {
	id = strings.TrimSpace(id)
	name = strings.TrimSpace(name)
	if id == "" || name == "" {
		return nil, apperror.Validation(MsgIDAndNameNeeded)
	}
	if s.store == nil {
		return nil, apperror.Configuration(MsgMissingDatabase)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	key, err := s.store.RenameAPIKey(ctx, id, name)
	if err != nil {
		if errors.Is(err, repository.ErrAPIKeyNotFound) {
			return nil, apperror.NotFound(MsgKeyNotFound)
		}
		return nil, apperror.Store(MsgUpdateKeyFailed, err)
	}

	s.metrics.IncKeyRenamed()
	s.logger.Info("API key renamed", slog.String("key_id", key.ID), slog.String("name", key.Name))

	return key, nil
}

// Revoke deletes a key and evicts it from the validation cache.
// Revoking an unknown id succeeds.
func (s *KeyService) Revoke(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.Validation(MsgIDRequired)
	}
	if s.store == nil {
		return apperror.Configuration(MsgMissingDatabase)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	existing, err := s.store.GetAPIKeyByID(ctx, id)
	switch {
	case errors.Is(err, repository.ErrAPIKeyNotFound):
		existing = nil
	case err != nil:
		return apperror.Store(MsgDeleteKeyFailed, err)
	}

	if err := s.store.DeleteAPIKey(ctx, id); err != nil {
		return apperror.Store(MsgDeleteKeyFailed, err)
	}

	if existing != nil {
		s.forget(ctx, existing.Key)
		s.metrics.IncKeyRevoked()
		s.logger.Info("API key revoked", slog.String("key_id", id), slog.String("key", auth.MaskKey(existing.Key)))
	}

	return nil
}

// Validate reports whether exactly one stored key equals token.
// Only positive results are cached.
func (s *KeyService) Validate(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}
	if s.store == nil {
		return false, apperror.Configuration(MsgMissingDatabase)
	}

	cacheKey := auth.QuickHash(token)
	if s.cache != nil {
		hit, err := s.cache.IsValid(ctx, cacheKey)
		if err != nil {
			s.logger.Warn("validation cache lookup failed", slog.String("error", err.Error()))
		}
		if hit {
			s.metrics.IncValidationCacheHit()
			s.metrics.IncKeyValidation(true)
			return true, nil
		}
		s.metrics.IncValidationCacheMiss()
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	n, err := s.store.CountAPIKeysByKey(ctx, token)
	if err != nil {
		return false, apperror.Store(MsgServerError, err)
	}

	valid := n == 1
	if valid && s.cache != nil {
		valid = s.remember(ctx, token, cacheKey)
	}
	s.metrics.IncKeyValidation(valid)

	return valid, nil
}

// remember caches a positive validation. A Revoke that lands between the
// count and the cache write has already evicted, so the row is counted again
// and the entry dropped if the key is gone. A failed recheck keeps the
// first answer but leaves nothing cached.
func (s *KeyService) remember(ctx context.Context, token, cacheKey string) bool {
	if err := s.cache.MarkValid(ctx, cacheKey); err != nil {
		s.logger.Warn("validation cache write failed", slog.String("error", err.Error()))
		return true
	}

	n, err := s.store.CountAPIKeysByKey(ctx, token)
	if err == nil && n == 1 {
		return true
	}
	if err != nil {
		s.logger.Warn("validation recheck failed", slog.String("error", err.Error()))
	}
	s.forget(ctx, token)
	return err != nil
}

func (s *KeyService) forget(ctx context.Context, token string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Forget(ctx, auth.QuickHash(token)); err != nil {
		s.logger.Warn("validation cache eviction failed", slog.String("error", err.Error()))
	}
}

func (s *KeyService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}
