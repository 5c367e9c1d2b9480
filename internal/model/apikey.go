// Package model defines domain entities for the application.
package model

import "time"

// DefaultKeyName is the label used when a key is generated without a name.
const DefaultKeyName = "default"

// APIKey represents an issued API key.
// The key value is an opaque bearer token and is stored and returned in plaintext.
type APIKey struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Key       string    `json:"key"`
	CreatedAt time.Time `json:"created_at"`
}

// APIKeyCreateRequest represents a request to create a new API key.
type APIKeyCreateRequest struct {
	Name string `json:"name"`
}

// APIKeyUpdateRequest represents a request to rename an API key.
type APIKeyUpdateRequest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// APIKeyDeleteRequest represents a request to delete an API key.
type APIKeyDeleteRequest struct {
	ID string `json:"id"`
}
