// Package otps stores password-reset codes, one row per account.
package otps

import (
	"context"

	"github.com/dmitrijs2005/movieapi/internal/server/models"
)

type Repository interface {
	// Upsert creates the account's code or overwrites code and expiry in place.
	Upsert(ctx context.Context, otp *models.PasswordOtp) (*models.PasswordOtp, error)

	// FindByAccountAndOtp matches the exact (account, code) pair and returns
	// common.ErrOtpMismatch when there is none.
	FindByAccountAndOtp(ctx context.Context, accountID string, otp int) (*models.PasswordOtp, error)

	Delete(ctx context.Context, id string) error
}
