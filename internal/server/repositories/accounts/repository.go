// Package accounts declares and implements the credential store: persisted
// user accounts keyed by email.
package accounts

import (
	"context"

	"github.com/dmitrijs2005/movieapi/internal/server/models"
)

// Repository defines account persistence.
type Repository interface {
	// Create inserts acc and fills its ID and CreatedAt. A taken email or
	// username yields common.ErrAccountExists.
	Create(ctx context.Context, acc *models.Account) (*models.Account, error)

	// FindByEmail returns common.ErrAccountNotFound when no account matches.
	FindByEmail(ctx context.Context, email string) (*models.Account, error)

	// UpdatePasswordByEmail replaces the password hash without loading the row.
	UpdatePasswordByEmail(ctx context.Context, email, passwordHash string) error
}
