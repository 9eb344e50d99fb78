// Package refreshtokens stores the opaque refresh token of each account.
// The schema allows at most one row per account.
package refreshtokens

import (
	"context"

	"github.com/dmitrijs2005/movieapi/internal/server/models"
)

// Repository defines refresh token persistence.
type Repository interface {
	// Create inserts t and fills its ID. A second row for the same account
	// (or a colliding token value) yields common.ErrConflict.
	Create(ctx context.Context, t *models.RefreshToken) (*models.RefreshToken, error)

	// FindByAccountID returns common.ErrTokenNotFound when the account has no token.
	FindByAccountID(ctx context.Context, accountID string) (*models.RefreshToken, error)

	// FindByToken looks a token up by value and loads its owning account.
	// Returns common.ErrTokenNotFound when absent.
	FindByToken(ctx context.Context, token string) (*models.RefreshToken, error)

	// Delete removes a token by ID. Deleting a missing row is not an error.
	Delete(ctx context.Context, id string) error
}
