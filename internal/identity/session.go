package identity

import (
	"net/http"

	"github.com/gorilla/sessions"
)

// Cookie names.
const (
	SessionCookieName = "dandi_session"
	StateCookieName   = "dandi_oauth_state"
)

// Session cookie value keys.
const (
	sessionEmailKey = "email"
	stateKey        = "state"
)

const (
	sessionMaxAge = 30 * 24 * 60 * 60 // 30 days
	stateMaxAge   = 300               // 5 minutes
)

// NewCookieStore creates a signed cookie store for sessions and OAuth state.
func NewCookieStore(secret []byte, secure bool) *sessions.CookieStore {
	store := sessions.NewCookieStore(secret)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   sessionMaxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// SessionEmail returns the signed-in email carried by r, or "".
func SessionEmail(store sessions.Store, r *http.Request) string {
	session, err := store.Get(r, SessionCookieName)
	if err != nil {
		return ""
	}
	email, _ := session.Values[sessionEmailKey].(string)
	return email
}

// SaveSessionEmail marks the browser as signed in as email.
func SaveSessionEmail(store sessions.Store, w http.ResponseWriter, r *http.Request, email string) error {
	session, _ := store.Get(r, SessionCookieName)
	session.Values[sessionEmailKey] = email
	session.Options.MaxAge = sessionMaxAge
	return session.Save(r, w)
}

// ClearSession signs the browser out.
func ClearSession(store sessions.Store, w http.ResponseWriter, r *http.Request) error {
	session, _ := store.Get(r, SessionCookieName)
	session.Values = map[any]any{}
	session.Options.MaxAge = -1
	return session.Save(r, w)
}

// SaveState stores the OAuth state for the callback to verify.
func SaveState(store sessions.Store, w http.ResponseWriter, r *http.Request, state string) error {
	session, _ := store.Get(r, StateCookieName)
	session.Values[stateKey] = state
	session.Options.MaxAge = stateMaxAge
	return session.Save(r, w)
}

// ConsumeState reports whether state matches the stored one and clears it.
func ConsumeState(store sessions.Store, w http.ResponseWriter, r *http.Request, state string) bool {
	session, err := store.Get(r, StateCookieName)
	if err != nil {
		return false
	}
	saved, ok := session.Values[stateKey].(string)

	session.Options.MaxAge = -1
	_ = session.Save(r, w)

	return ok && state != "" && saved == state
}
