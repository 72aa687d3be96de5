package model

import "time"

// User is a local application identity, resolved or created during the
// OAuth callback from the Google account's email address.
type User struct {
	ID        string
	Email     string
	Name      string
	CreatedAt time.Time
}
