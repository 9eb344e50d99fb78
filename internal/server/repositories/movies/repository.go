// Package movies persists the movie catalog.
package movies

import (
	"context"

	"github.com/dmitrijs2005/movieapi/internal/server/models"
)

// PageRequest selects a 0-based page. An empty SortBy orders by ID.
type PageRequest struct {
	Page   int
	Size   int
	SortBy string
	Desc   bool
}

// Repository defines movie persistence.
type Repository interface {
	// Create inserts m and fills its ID.
	Create(ctx context.Context, m *models.Movie) (*models.Movie, error)

	// FindByID returns common.ErrMovieNotFound when absent.
	FindByID(ctx context.Context, id int64) (*models.Movie, error)

	// List returns every movie ordered by ID.
	List(ctx context.Context) ([]models.Movie, error)

	// Page returns one page and the total row count. Unknown sort fields
	// yield common.ErrInvalidSortField.
	Page(ctx context.Context, req PageRequest) ([]models.Movie, int64, error)

	// Update overwrites all fields of the movie with m.ID.
	Update(ctx context.Context, m *models.Movie) error

	Delete(ctx context.Context, id int64) error
}
