package movies

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/movieapi/internal/common"
	"github.com/dmitrijs2005/movieapi/internal/dbx"
	"github.com/dmitrijs2005/movieapi/internal/server/models"
)

// sortColumns maps API sort fields onto columns. Only these may be
// interpolated into ORDER BY.
var sortColumns = map[string]string{
	"title":       "title",
	"director":    "director",
	"studio":      "studio",
	"releaseYear": "release_year",
}

// IsSortField reports whether field can be used in PageRequest.SortBy.
func IsSortField(field string) bool {
	_, ok := sortColumns[field]
	return ok
}

const movieColumns = `id, title, director, studio, movie_cast, release_year, poster`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, m *models.Movie) (*models.Movie, error) {
	cast, err := encodeCast(m.Cast)
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO movies (title, director, studio, movie_cast, release_year, poster)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	if err := r.db.QueryRowContext(ctx, query, m.Title, m.Director, m.Studio, cast, m.ReleaseYear, m.Poster).Scan(&m.ID); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return m, nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, id int64) (*models.Movie, error) {
	query := `SELECT ` + movieColumns + ` FROM movies WHERE id = $1`

	m, err := scanMovie(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrMovieNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return m, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]models.Movie, error) {
	query := `SELECT ` + movieColumns + ` FROM movies ORDER BY id`
	return r.query(ctx, query)
}

func (r *PostgresRepository) Page(ctx context.Context, req PageRequest) ([]models.Movie, int64, error) {
	order := "id"
	if req.SortBy != "" {
		col, ok := sortColumns[req.SortBy]
		if !ok {
			return nil, 0, fmt.Errorf("%w: %s", common.ErrInvalidSortField, req.SortBy)
		}
		order = col
	}
	dir := "ASC"
	if req.Desc {
		dir = "DESC"
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM movies`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM movies ORDER BY %s %s, id LIMIT $1 OFFSET $2`, movieColumns, order, dir)
	items, err := r.query(ctx, query, req.Size, req.Page*req.Size)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *PostgresRepository) Update(ctx context.Context, m *models.Movie) error {
	cast, err := encodeCast(m.Cast)
	if err != nil {
		return err
	}

	query := `
		UPDATE movies
		SET title = $1, director = $2, studio = $3, movie_cast = $4, release_year = $5, poster = $6
		WHERE id = $7
	`
	res, err := r.db.ExecContext(ctx, query, m.Title, m.Director, m.Studio, cast, m.ReleaseYear, m.Poster, m.ID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireRow(res)
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM movies WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireRow(res)
}

// --- helpers below ---

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMovie(row rowScanner) (*models.Movie, error) {
	m := &models.Movie{}
	var cast []byte
	if err := row.Scan(&m.ID, &m.Title, &m.Director, &m.Studio, &cast, &m.ReleaseYear, &m.Poster); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(cast, &m.Cast); err != nil {
		return nil, fmt.Errorf("decode movie_cast: %w", err)
	}
	return m, nil
}

func (r *PostgresRepository) query(ctx context.Context, query string, args ...any) ([]models.Movie, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	items := make([]models.Movie, 0)
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		items = append(items, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return items, nil
}

func encodeCast(cast []string) (string, error) {
	if cast == nil {
		cast = []string{}
	}
	b, err := json.Marshal(cast)
	if err != nil {
		return "", fmt.Errorf("encode movie_cast: %w", err)
	}
	return string(b), nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrMovieNotFound
	}
	return nil
}
