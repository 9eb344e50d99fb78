package models

import "time"

// PasswordOtp is the one-time password-reset code of an account. Requesting
// a new code overwrites the row in place.
type PasswordOtp struct {
	ID        string
	AccountID string
	Otp       int
	ExpiresAt time.Time
}

// Expired reports whether the expiry has passed at now.
func (o *PasswordOtp) Expired(now time.Time) bool {
	return o.ExpiresAt.Before(now)
}
