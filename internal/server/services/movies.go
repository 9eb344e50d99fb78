package services

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strings"

	"github.com/dmitrijs2005/movieapi/internal/common"
	"github.com/dmitrijs2005/movieapi/internal/server/models"
	"github.com/dmitrijs2005/movieapi/internal/server/repositories/movies"
	"github.com/dmitrijs2005/movieapi/internal/server/repositories/repomanager"
)

const (
	DefaultPageNumber = 0
	DefaultPageSize   = 10
	DefaultSortBy     = "title"
	DefaultSortDir    = "asc"

	MaxPageSize = 1000
	// maxOffset keeps page*size inside a PostgreSQL integer.
	maxOffset = math.MaxInt32
)

// MovieDto is the movie representation exchanged with clients.
type MovieDto struct {
	MovieID     int64    `json:"movieId"`
	Title       string   `json:"title"`
	Director    string   `json:"director"`
	Studio      string   `json:"studio"`
	MovieCast   []string `json:"movieCast"`
	ReleaseYear int      `json:"releaseYear"`
	Poster      string   `json:"poster"`
	PosterURL   string   `json:"posterUrl"`
}

// MoviePageResponse is one page of MovieDtos.
type MoviePageResponse struct {
	MovieDtos     []MovieDto `json:"movieDtos"`
	PageNumber    int        `json:"pageNumber"`
	PageSize      int        `json:"pageSize"`
	TotalElements int64      `json:"totalElements"`
	TotalPages    int        `json:"totalPages"`
	IsLast        bool       `json:"isLast"`
}

// MovieService manages the catalog and the poster attached to each movie.
type MovieService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	files       *FileService
	baseURL     string
	options
}

func NewMovieService(db *sql.DB, m repomanager.RepositoryManager, files *FileService, baseURL string, opts ...Option) *MovieService {
	return &MovieService{
		db:          db,
		repomanager: m,
		files:       files,
		baseURL:     strings.TrimRight(baseURL, "/"),
		options:     buildOptions(opts),
	}
}

// AddMovie uploads the poster and stores the movie. A poster is required.
func (s *MovieService) AddMovie(ctx context.Context, in MovieDto, poster *Upload) (*MovieDto, error) {
	if poster == nil || poster.Size == 0 {
		return nil, common.ErrEmptyFile
	}
	if err := validateMovie(in); err != nil {
		return nil, err
	}

	name, err := s.files.Upload(ctx, *poster)
	if err != nil {
		return nil, err
	}

	m := fromDto(in)
	m.Poster = name

	saved, err := s.repomanager.Movies(s.db).Create(ctx, m)
	if err != nil {
		if rmErr := s.files.Remove(ctx, name); rmErr != nil {
			s.logger.Warn(ctx, "orphaned poster", "name", name, "error", rmErr)
		}
		return nil, err
	}
	return s.toDto(saved), nil
}

func (s *MovieService) GetMovie(ctx context.Context, id int64) (*MovieDto, error) {
	m, err := s.repomanager.Movies(s.db).FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toDto(m), nil
}

func (s *MovieService) GetAllMovies(ctx context.Context) ([]MovieDto, error) {
	list, err := s.repomanager.Movies(s.db).List(ctx)
	if err != nil {
		return nil, err
	}
	return s.toDtos(list), nil
}

// UpdateMovie overwrites the movie fields. The poster is replaced only when
// a non-empty file is given; the old file is deleted first.
func (s *MovieService) UpdateMovie(ctx context.Context, id int64, in MovieDto, poster *Upload) (*MovieDto, error) {
	if err := validateMovie(in); err != nil {
		return nil, err
	}

	repo := s.repomanager.Movies(s.db)
	current, err := repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	m := fromDto(in)
	m.ID = id
	m.Poster = current.Poster

	if poster != nil && poster.Size > 0 {
		if err := s.files.Remove(ctx, current.Poster); err != nil {
			return nil, fmt.Errorf("error removing old poster: %w", err)
		}
		name, err := s.files.Upload(ctx, *poster)
		if err != nil {
			return nil, err
		}
		m.Poster = name
	}

	if err := repo.Update(ctx, m); err != nil {
		return nil, err
	}
	return s.toDto(m), nil
}

// DeleteMovie removes the poster and then the movie.
func (s *MovieService) DeleteMovie(ctx context.Context, id int64) error {
	repo := s.repomanager.Movies(s.db)
	m, err := repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.files.Remove(ctx, m.Poster); err != nil {
		return fmt.Errorf("error removing poster: %w", err)
	}
	return repo.Delete(ctx, id)
}

// GetMoviesPage returns a page ordered by id.
func (s *MovieService) GetMoviesPage(ctx context.Context, page, size int) (*MoviePageResponse, error) {
	return s.page(ctx, movies.PageRequest{Page: page, Size: size})
}

// GetMoviesPageSorted orders by sortBy; dir "asc" (any case) sorts
// ascending, anything else descending.
func (s *MovieService) GetMoviesPageSorted(ctx context.Context, page, size int, sortBy, dir string) (*MoviePageResponse, error) {
	if !movies.IsSortField(sortBy) {
		return nil, fmt.Errorf("%w: %s. Allowed fields are: title, director, studio, releaseYear", common.ErrInvalidSortField, sortBy)
	}
	return s.page(ctx, movies.PageRequest{
		Page:   page,
		Size:   size,
		SortBy: sortBy,
		Desc:   !strings.EqualFold(dir, "asc"),
	})
}

// PosterURL is the public URL a stored poster is served from.
func (s *MovieService) PosterURL(name string) string {
	return s.baseURL + "/file/" + name
}

// --- helpers below ---

func (s *MovieService) page(ctx context.Context, req movies.PageRequest) (*MoviePageResponse, error) {
	if req.Page < 0 || req.Size < 1 {
		return nil, fmt.Errorf("%w: page must be >= 0 and size >= 1", common.ErrValidation)
	}
	if req.Size > MaxPageSize {
		return nil, fmt.Errorf("%w: size must be <= %d", common.ErrValidation, MaxPageSize)
	}
	if req.Page > maxOffset/req.Size {
		return nil, fmt.Errorf("%w: page %d is out of range", common.ErrValidation, req.Page)
	}

	list, total, err := s.repomanager.Movies(s.db).Page(ctx, req)
	if err != nil {
		return nil, err
	}

	p := models.NewMoviePage(list, req.Page, req.Size, total)
	return &MoviePageResponse{
		MovieDtos:     s.toDtos(p.Movies),
		PageNumber:    p.PageNumber,
		PageSize:      p.PageSize,
		TotalElements: p.TotalElements,
		TotalPages:    p.TotalPages,
		IsLast:        p.IsLast,
	}, nil
}

func (s *MovieService) toDto(m *models.Movie) *MovieDto {
	cast := m.Cast
	if cast == nil {
		cast = []string{}
	}
	return &MovieDto{
		MovieID:     m.ID,
		Title:       m.Title,
		Director:    m.Director,
		Studio:      m.Studio,
		MovieCast:   cast,
		ReleaseYear: m.ReleaseYear,
		Poster:      m.Poster,
		PosterURL:   s.PosterURL(m.Poster),
	}
}

func (s *MovieService) toDtos(list []models.Movie) []MovieDto {
	out := make([]MovieDto, 0, len(list))
	for i := range list {
		out = append(out, *s.toDto(&list[i]))
	}
	return out
}

func fromDto(in MovieDto) *models.Movie {
	return &models.Movie{
		Title:       strings.TrimSpace(in.Title),
		Director:    strings.TrimSpace(in.Director),
		Studio:      strings.TrimSpace(in.Studio),
		Cast:        uniqueNames(in.MovieCast),
		ReleaseYear: in.ReleaseYear,
	}
}

// uniqueNames drops blanks and duplicates, keeping first occurrences.
func uniqueNames(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

func validateMovie(in MovieDto) error {
	switch {
	case strings.TrimSpace(in.Title) == "":
		return fmt.Errorf("%w: please provide movie's title", common.ErrValidation)
	case strings.TrimSpace(in.Director) == "":
		return fmt.Errorf("%w: please provide movie's director", common.ErrValidation)
	case strings.TrimSpace(in.Studio) == "":
		return fmt.Errorf("%w: please provide movie's studio", common.ErrValidation)
	}
	return nil
}
