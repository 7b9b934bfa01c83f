package model

import "time"

// Session is a signed-in user's API token.
type Session struct {
	SavedAt   time.Time
	ExpiresAt time.Time // zero when the token carries no expiry
	Token     string
	Email     string
}

// Expired reports whether the token's expiry has passed at now.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// User is the profile returned by the API for the current token.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
}
