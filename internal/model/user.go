// Package model defines domain entities for the application.
package model

import "time"

// User is an identity created on first successful sign-in.
// Email uniquely identifies a user.
type User struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	Image      string    `json:"image"`
	Provider   string    `json:"provider"`
	ProviderID string    `json:"provider_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// Profile holds the claims returned by the identity provider after sign-in.
type Profile struct {
	Email      string `json:"email" validate:"required,email"`
	Name       string `json:"name"`
	Image      string `json:"image"`
	Provider   string `json:"provider" validate:"required"`
	ProviderID string `json:"provider_id"`
}

// ToUser converts a profile into a new user record.
func (p Profile) ToUser() *User {
	return &User{
		Email:      p.Email,
		Name:       p.Name,
		Image:      p.Image,
		Provider:   p.Provider,
		ProviderID: p.ProviderID,
	}
}

// Session is the identity attached to a signed-in browser session.
// UserID is empty when no stored user matches the session email.
type Session struct {
	UserID string `json:"id,omitempty"`
	Email  string `json:"email"`
	Name   string `json:"name,omitempty"`
	Image  string `json:"image,omitempty"`
}
