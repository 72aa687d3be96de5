package model

import "time"

// Credential holds the Google OAuth token set stored for a single user.
// Exactly one row exists per user; it is created on the first successful
// authorization-code exchange and updated on every silent refresh.
type Credential struct {
	UserID       string
	AccessToken  string
	RefreshToken string
	Scope        string
	TokenType    string
	Expiry       time.Time
	UpdatedAt    time.Time
}

// TokenUpdate is a partial token response to be merged into a stored
// Credential. Zero-valued fields are treated as absent and preserve the
// previously stored value; Google refresh responses commonly omit
// refresh_token.
type TokenUpdate struct {
	AccessToken  string
	RefreshToken string
	Scope        string
	TokenType    string
	Expiry       time.Time
}
