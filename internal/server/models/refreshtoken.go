package models

import "time"

// RefreshToken is the single opaque refresh credential of an account.
type RefreshToken struct {
	ID        string
	AccountID string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time

	// Account is filled by lookups that join the owner.
	Account *Account
}

// Expired reports whether the token is no longer usable at now.
func (t *RefreshToken) Expired(now time.Time) bool {
	return !t.ExpiresAt.After(now)
}
