package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/movieapi/internal/common"
	"github.com/dmitrijs2005/movieapi/internal/logging"
	"github.com/dmitrijs2005/movieapi/internal/server/services"
	"github.com/gin-gonic/gin"
)

// MovieAPI is implemented by services.MovieService.
type MovieAPI interface {
	AddMovie(ctx context.Context, in services.MovieDto, poster *services.Upload) (*services.MovieDto, error)
	GetMovie(ctx context.Context, id int64) (*services.MovieDto, error)
	GetAllMovies(ctx context.Context) ([]services.MovieDto, error)
	UpdateMovie(ctx context.Context, id int64, in services.MovieDto, poster *services.Upload) (*services.MovieDto, error)
	DeleteMovie(ctx context.Context, id int64) error
	GetMoviesPage(ctx context.Context, page, size int) (*services.MoviePageResponse, error)
	GetMoviesPageSorted(ctx context.Context, page, size int, sortBy, dir string) (*services.MoviePageResponse, error)
}

// MovieHandler serves /api/v1/movie.
type MovieHandler struct {
	movies MovieAPI
	logger logging.Logger
}

func NewMovieHandler(m MovieAPI, l logging.Logger) *MovieHandler {
	return &MovieHandler{movies: m, logger: l.With("module", "movie_handler")}
}

// AddMovie expects a multipart form with a "file" poster and a "movieDto"
// JSON part.
func (h *MovieHandler) AddMovie(c *gin.Context) {
	in, err := readMovieDto(c, "movieDto")
	if err != nil {
		abortWithError(c, h.logger, err)
		return
	}

	poster, closeFn, err := formUpload(c, "file")
	if err != nil {
		abortWithError(c, h.logger, err)
		return
	}
	defer closeFn()

	out, err := h.movies.AddMovie(c.Request.Context(), in, poster)
	if err != nil {
		abortWithError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

func (h *MovieHandler) GetMovie(c *gin.Context) {
	id, ok := h.movieID(c)
	if !ok {
		return
	}

	out, err := h.movies.GetMovie(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *MovieHandler) GetAllMovies(c *gin.Context) {
	out, err := h.movies.GetAllMovies(c.Request.Context())
	if err != nil {
		abortWithError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// UpdateMovie expects a "movieDtoObject" JSON part and an optional "file".
func (h *MovieHandler) UpdateMovie(c *gin.Context) {
	id, ok := h.movieID(c)
	if !ok {
		return
	}

	in, err := readMovieDto(c, "movieDtoObject")
	if err != nil {
		abortWithError(c, h.logger, err)
		return
	}

	poster, closeFn, err := formUpload(c, "file")
	if err != nil {
		abortWithError(c, h.logger, err)
		return
	}
	defer closeFn()

	out, err := h.movies.UpdateMovie(c.Request.Context(), id, in, poster)
	if err != nil {
		abortWithError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *MovieHandler) DeleteMovie(c *gin.Context) {
	id, ok := h.movieID(c)
	if !ok {
		return
	}

	if err := h.movies.DeleteMovie(c.Request.Context(), id); err != nil {
		abortWithError(c, h.logger, err)
		return
	}
	c.String(http.StatusOK, "Movie deleted with id = %d", id)
}

func (h *MovieHandler) GetMoviesPage(c *gin.Context) {
	page, size, ok := h.paging(c)
	if !ok {
		return
	}

	out, err := h.movies.GetMoviesPage(c.Request.Context(), page, size)
	if err != nil {
		abortWithError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *MovieHandler) GetMoviesPageSorted(c *gin.Context) {
	page, size, ok := h.paging(c)
	if !ok {
		return
	}
	sortBy := c.DefaultQuery("sortBy", services.DefaultSortBy)
	dir := c.DefaultQuery("sortDir", services.DefaultSortDir)

	out, err := h.movies.GetMoviesPageSorted(c.Request.Context(), page, size, sortBy, dir)
	if err != nil {
		abortWithError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// --- helpers below ---

func (h *MovieHandler) movieID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("movieId"), 10, 64)
	if err != nil {
		abortWithError(c, h.logger, fmt.Errorf("%w: movie id must be a number", common.ErrValidation))
		return 0, false
	}
	return id, true
}

func (h *MovieHandler) paging(c *gin.Context) (int, int, bool) {
	page, err := strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(services.DefaultPageNumber)))
	if err != nil {
		abortWithError(c, h.logger, fmt.Errorf("%w: page must be a number", common.ErrValidation))
		return 0, 0, false
	}
	size, err := strconv.Atoi(c.DefaultQuery("size", strconv.Itoa(services.DefaultPageSize)))
	if err != nil {
		abortWithError(c, h.logger, fmt.Errorf("%w: size must be a number", common.ErrValidation))
		return 0, 0, false
	}
	return page, size, true
}

// readMovieDto decodes a JSON movie sent either as a plain form field or as
// a file part.
func readMovieDto(c *gin.Context, field string) (services.MovieDto, error) {
	var dto services.MovieDto

	raw := c.PostForm(field)
	if raw == "" {
		if fh, err := c.FormFile(field); err == nil {
			f, err := fh.Open()
			if err != nil {
				return dto, err
			}
			defer f.Close()
			b, err := io.ReadAll(f)
			if err != nil {
				return dto, err
			}
			raw = string(b)
		}
	}
	if raw == "" {
		return dto, fmt.Errorf("%w: %s is required", common.ErrValidation, field)
	}

	if err := json.Unmarshal([]byte(raw), &dto); err != nil {
		return dto, fmt.Errorf("%w: %s is not valid JSON", common.ErrValidation, field)
	}
	return dto, nil
}

// formUpload opens an optional multipart file. A missing file yields a nil
// Upload; the returned close function is always safe to call.
func formUpload(c *gin.Context, field string) (*services.Upload, func(), error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, func() {}, nil
		}
		return nil, func() {}, fmt.Errorf("%w: %v", common.ErrValidation, err)
	}
	return openUpload(fh)
}

func openUpload(fh *multipart.FileHeader) (*services.Upload, func(), error) {
	f, err := fh.Open()
	if err != nil {
		return nil, func() {}, err
	}
	return &services.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        f,
	}, func() { _ = f.Close() }, nil
}
