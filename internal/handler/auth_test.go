package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/dandi/dandi/internal/identity"
	"github.com/dandi/dandi/internal/model"
	"github.com/dandi/dandi/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

var testSessionSecret = []byte("0123456789abcdef0123456789abcdef")

func newFakeGoogle(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := r.ParseForm(); err != nil || r.PostForm.Get("code") != "good-code" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		_, _ = w.Write([]byte(`{"access_token":"access-123","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"sub":"sub-42","email":"ada@example.com","name":"Ada","picture":"https://example.com/ada.png"}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newAuthHandler(t *testing.T, withOAuth bool) *AuthHandler {
	t.Helper()
	var oauth *identity.OAuth
	if withOAuth {
		srv := newFakeGoogle(t)
		oauth = identity.NewGoogleOAuth("client-id", "client-secret", "http://localhost/auth/callback/google",
			identity.WithEndpoint(oauth2.Endpoint{
				AuthURL:   srv.URL + "/auth",
				TokenURL:  srv.URL + "/token",
				AuthStyle: oauth2.AuthStyleInParams,
			}),
			identity.WithUserInfoURL(srv.URL+"/userinfo"),
		)
	}
	bridge := identity.NewBridge(testutil.NewSQLiteStore(t), time.Second, discardLogger)
	return NewAuthHandler(oauth, bridge, identity.NewCookieStore(testSessionSecret, false), discardLogger)
}

// withCookies returns a request to target carrying the cookies set on rec.
func withCookies(rec *httptest.ResponseRecorder, method, target string) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge < 0 {
			continue
		}
		req.AddCookie(c)
	}
	return req
}

func signInRedirect(t *testing.T, h *AuthHandler) (*httptest.ResponseRecorder, string) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.SignIn(rec, httptest.NewRequest(http.MethodGet, SignInPath, nil))
	require.Equal(t, http.StatusFound, rec.Code)

	location, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	state := location.Query().Get("state")
	require.NotEmpty(t, state)
	return rec, state
}

func TestAuthHandler_SignIn_Redirects(t *testing.T) {
	t.Parallel()
	h := newAuthHandler(t, true)

	rec, _ := signInRedirect(t, h)

	location, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/auth", location.Path)
	assert.Equal(t, "client-id", location.Query().Get("client_id"))
	assert.Equal(t, "openid email profile", location.Query().Get("scope"))

	var names []string
	for _, c := range rec.Result().Cookies() {
		names = append(names, c.Name)
	}
	assert.Contains(t, names, identity.StateCookieName)
}

func TestAuthHandler_SignIn_ReportsError(t *testing.T) {
	t.Parallel()
	h := newAuthHandler(t, true)

	rec := httptest.NewRecorder()
	h.SignIn(rec, httptest.NewRequest(http.MethodGet, SignInPath+"?error="+SignInErrorDenied, nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, decodeError(t, rec).Error, SignInErrorDenied)
}

func TestAuthHandler_SignIn_UnknownErrorCode(t *testing.T) {
	t.Parallel()
	h := newAuthHandler(t, true)

	rec := httptest.NewRecorder()
	h.SignIn(rec, httptest.NewRequest(http.MethodGet, SignInPath+"?error="+url.QueryEscape("<script>alert(1)</script>"), nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, MsgSignInFailed, decodeError(t, rec).Error)
}

func TestAuthHandler_NotConfigured(t *testing.T) {
	t.Parallel()
	h := newAuthHandler(t, false)

	for _, call := range []http.HandlerFunc{h.SignIn, h.Callback} {
		rec := httptest.NewRecorder()
		call(rec, httptest.NewRequest(http.MethodGet, "/auth/callback/google?code=x&state=y", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		resp := decodeError(t, rec)
		assert.Equal(t, MsgOAuthNotConfigured, resp.Error)
		assert.Equal(t, "MISSING_CONFIGURATION", resp.Code)
	}
}

func TestAuthHandler_Callback_SignsIn(t *testing.T) {
	t.Parallel()
	h := newAuthHandler(t, true)

	signIn, state := signInRedirect(t, h)

	rec := httptest.NewRecorder()
	h.Callback(rec, withCookies(signIn, http.MethodGet, "/auth/callback/google?code=good-code&state="+url.QueryEscape(state)))
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, SignedInRedirect, rec.Header().Get("Location"))

	sessionRec := httptest.NewRecorder()
	h.Session(sessionRec, withCookies(rec, http.MethodGet, "/api/auth/session"))
	require.Equal(t, http.StatusOK, sessionRec.Code)

	var body map[string]model.Session
	require.NoError(t, json.NewDecoder(sessionRec.Body).Decode(&body))
	user := body["user"]
	assert.Equal(t, "ada@example.com", user.Email)
	assert.Equal(t, "Ada", user.Name)
	assert.NotEmpty(t, user.UserID)

	stored, err := h.bridge.SignIn(context.Background(), model.Profile{Email: "ada@example.com", Provider: identity.ProviderGoogle})
	require.NoError(t, err)
	assert.Equal(t, user.UserID, stored.ID)
}

func TestAuthHandler_Callback_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		query     func(state string) string
		wantError string
	}{
		{"state_mismatch", func(string) string { return "code=good-code&state=forged" }, SignInErrorState},
		{"bad_code", func(s string) string { return "code=bad-code&state=" + url.QueryEscape(s) }, SignInErrorCallback},
		{"consent_denied", func(s string) string { return "error=access_denied&state=" + url.QueryEscape(s) }, SignInErrorDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h := newAuthHandler(t, true)
			signIn, state := signInRedirect(t, h)

			rec := httptest.NewRecorder()
			h.Callback(rec, withCookies(signIn, http.MethodGet, "/auth/callback/google?"+tt.query(state)))

			require.Equal(t, http.StatusFound, rec.Code)
			assert.Equal(t, SignInPath+"?error="+tt.wantError, rec.Header().Get("Location"))
		})
	}
}

func TestAuthHandler_Session_SignedOut(t *testing.T) {
	t.Parallel()
	h := newAuthHandler(t, false)

	rec := httptest.NewRecorder()
	h.Session(rec, httptest.NewRequest(http.MethodGet, "/api/auth/session", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{}`, rec.Body.String())
}

func TestAuthHandler_SignOut(t *testing.T) {
	t.Parallel()
	h := newAuthHandler(t, false)

	login := httptest.NewRecorder()
	require.NoError(t, identity.SaveSessionEmail(h.sessions, login, httptest.NewRequest(http.MethodGet, "/", nil), "ada@example.com"))

	rec := httptest.NewRecorder()
	h.SignOut(rec, withCookies(login, http.MethodPost, "/auth/signout"))
	require.Equal(t, http.StatusOK, rec.Code)

	var cleared bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == identity.SessionCookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared, "expected session cookie to be expired")
}
