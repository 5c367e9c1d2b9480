// Package identity links identity-provider sign-ins to stored users.
package identity

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/dandi/dandi/internal/apperror"
	"github.com/dandi/dandi/internal/model"
	"github.com/dandi/dandi/internal/repository"
	"github.com/go-playground/validator/v10"
)

// Bridge upserts users on sign-in and enriches sessions with the stored user id.
type Bridge struct {
	store    repository.Store
	validate *validator.Validate
	timeout  time.Duration
	logger   *slog.Logger
}

// NewBridge creates a Bridge. A nil store rejects every sign-in.
func NewBridge(store repository.Store, timeout time.Duration, logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridge{
		store:    store,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		timeout:  timeout,
		logger:   logger,
	}
}

// SignIn records the user for profile unless one with the same email exists.
// It returns the stored user; any failure rejects the sign-in.
func (b *Bridge) SignIn(ctx context.Context, profile model.Profile) (*model.User, error) {
	profile.Email = strings.TrimSpace(profile.Email)
	if err := b.validate.Struct(profile); err != nil {
		return nil, apperror.Wrap(apperror.KindValidation, "Invalid sign-in profile", err)
	}
	if b.store == nil {
		return nil, apperror.Configuration("Missing database configuration")
	}

	ctx, cancel := b.withTimeout(ctx)
	defer cancel()

	user, err := b.store.UpsertUser(ctx, profile.ToUser())
	if err != nil {
		b.logger.Error("sign-in rejected", slog.String("provider", profile.Provider), slog.String("error", err.Error()))
		return nil, apperror.Auth("Sign-in failed", err)
	}

	b.logger.Info("user signed in", slog.String("user_id", user.ID), slog.String("provider", profile.Provider))
	return user, nil
}

// Session builds the session for email. Lookup failures are not fatal:
// the session is returned without a user id.
func (b *Bridge) Session(ctx context.Context, email string) *model.Session {
	session := &model.Session{Email: email}
	if email == "" || b.store == nil {
		return session
	}

	ctx, cancel := b.withTimeout(ctx)
	defer cancel()

	user, err := b.store.GetUserByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			b.logger.Error("session lookup failed", slog.String("error", err.Error()))
		}
		return session
	}

	session.UserID = user.ID
	session.Name = user.Name
	session.Image = user.Image
	return session
}

func (b *Bridge) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if b.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, b.timeout)
}
