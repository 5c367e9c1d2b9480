package handler

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/dandi/dandi/internal/apperror"
	"github.com/dandi/dandi/internal/handler/dto"
	"github.com/dandi/dandi/internal/identity"
	"github.com/dandi/dandi/internal/model"
	"github.com/gorilla/sessions"
)

// Sign-in paths.
const (
	SignInPath       = "/auth/signin"
	SignedInRedirect = "/dashboards"
)

// Sign-in error codes carried in the ?error= parameter.
const (
	SignInErrorState    = "OAuthState"
	SignInErrorCallback = "OAuthCallback"
	SignInErrorDenied   = "AccessDenied"
)

// MsgSignInFailed is reported for sign-in error codes this server never issues.
const MsgSignInFailed = "Sign-in failed"

var signInErrors = map[string]bool{
	SignInErrorState:    true,
	SignInErrorCallback: true,
	SignInErrorDenied:   true,
}

// MsgOAuthNotConfigured is returned when Google sign-in is disabled.
const MsgOAuthNotConfigured = "Google sign-in is not configured"

// AuthHandler runs the Google sign-in flow and exposes the current session.
type AuthHandler struct {
	oauth    *identity.OAuth
	bridge   *identity.Bridge
	sessions sessions.Store
	logger   *slog.Logger
}

// NewAuthHandler creates a new AuthHandler. oauth may be nil when sign-in
// is not configured.
func NewAuthHandler(oauth *identity.OAuth, bridge *identity.Bridge, store sessions.Store, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		oauth:    oauth,
		bridge:   bridge,
		sessions: store,
		logger:   logger,
	}
}

// SignIn handles GET /auth/signin.
// A request carrying ?error= reports the failed attempt instead of
// starting a new one.
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	if code := r.URL.Query().Get("error"); code != "" {
		msg := MsgSignInFailed
		if signInErrors[code] {
			msg += ": " + code
		}
		writeError(w, http.StatusUnauthorized, dto.CodeUnauthorized, msg)
		return
	}
	if h.oauth == nil {
		writeServiceError(w, h.logger, apperror.Configuration(MsgOAuthNotConfigured), http.StatusInternalServerError)
		return
	}

	state, err := identity.GenerateState()
	if err != nil {
		writeServiceError(w, h.logger, err, http.StatusInternalServerError)
		return
	}
	if err := identity.SaveState(h.sessions, w, r, state); err != nil {
		writeServiceError(w, h.logger, err, http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, h.oauth.AuthURL(state), http.StatusFound)
}

// Callback handles GET /auth/callback/google.
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	if h.oauth == nil {
		writeServiceError(w, h.logger, apperror.Configuration(MsgOAuthNotConfigured), http.StatusInternalServerError)
		return
	}

	query := r.URL.Query()
	if query.Get("error") != "" {
		h.failSignIn(w, r, SignInErrorDenied)
		return
	}
	if !identity.ConsumeState(h.sessions, w, r, query.Get("state")) {
		h.failSignIn(w, r, SignInErrorState)
		return
	}

	profile, err := h.oauth.Exchange(r.Context(), query.Get("code"))
	if err != nil {
		h.logger.Warn("oauth exchange failed", slog.String("error", err.Error()))
		h.failSignIn(w, r, SignInErrorCallback)
		return
	}

	user, err := h.bridge.SignIn(r.Context(), *profile)
	if err != nil {
		h.logger.Warn("sign-in rejected", slog.String("error", err.Error()))
		h.failSignIn(w, r, SignInErrorDenied)
		return
	}

	if err := identity.SaveSessionEmail(h.sessions, w, r, user.Email); err != nil {
		h.logger.Error("failed to save session", slog.String("error", err.Error()))
		h.failSignIn(w, r, SignInErrorCallback)
		return
	}

	h.logger.Info("user signed in", slog.String("user_id", user.ID))
	http.Redirect(w, r, SignedInRedirect, http.StatusFound)
}

// Session handles GET /api/auth/session.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	email := identity.SessionEmail(h.sessions, r)
	if email == "" {
		writeJSON(w, http.StatusOK, struct{}{})
		return
	}

	session := h.bridge.Session(r.Context(), email)
	writeJSON(w, http.StatusOK, map[string]*model.Session{"user": session})
}

// SignOut handles POST /auth/signout.
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	if err := identity.ClearSession(h.sessions, w, r); err != nil {
		writeServiceError(w, h.logger, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, dto.SuccessResponse{Success: true})
}

func (h *AuthHandler) failSignIn(w http.ResponseWriter, r *http.Request, code string) {
	target := SignInPath + "?" + url.Values{"error": {code}}.Encode()
	http.Redirect(w, r, target, http.StatusFound)
}
