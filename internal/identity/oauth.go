package identity

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dandi/dandi/internal/model"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// ProviderGoogle is the provider name stored on users created via Google.
const ProviderGoogle = "google"

// DefaultUserInfoURL is Google's OpenID Connect userinfo endpoint.
const DefaultUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

// OAuth runs the Google authorization code flow.
type OAuth struct {
	config      *oauth2.Config
	userInfoURL string
}

// Option customizes an OAuth client.
type Option func(*OAuth)

// WithEndpoint overrides the authorization and token endpoints.
func WithEndpoint(endpoint oauth2.Endpoint) Option {
	return func(o *OAuth) { o.config.Endpoint = endpoint }
}

// WithUserInfoURL overrides the userinfo endpoint.
func WithUserInfoURL(url string) Option {
	return func(o *OAuth) { o.userInfoURL = url }
}

// NewGoogleOAuth configures the flow for a registered Google client.
func NewGoogleOAuth(clientID, clientSecret, redirectURL string, opts ...Option) *OAuth {
	o := &OAuth{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     google.Endpoint,
			RedirectURL:  redirectURL,
			Scopes:       []string{"openid", "email", "profile"},
		},
		userInfoURL: DefaultUserInfoURL,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// AuthURL returns the consent page URL carrying state.
func (o *OAuth) AuthURL(state string) string {
	return o.config.AuthCodeURL(state)
}

// Exchange trades an authorization code for the signed-in user's profile.
func (o *OAuth) Exchange(ctx context.Context, code string) (*model.Profile, error) {
	token, err := o.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("token exchange failed: %w", err)
	}

	client := o.config.Client(ctx, token)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build userinfo request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo returned status %d", resp.StatusCode)
	}

	var info struct {
		Sub     string `json:"sub"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode user info: %w", err)
	}

	return &model.Profile{
		Email:      info.Email,
		Name:       info.Name,
		Image:      info.Picture,
		Provider:   ProviderGoogle,
		ProviderID: info.Sub,
	}, nil
}

// GenerateState returns a random value binding a consent redirect to its callback.
func GenerateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
