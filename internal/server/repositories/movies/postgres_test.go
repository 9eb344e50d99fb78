package movies

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/movieapi/internal/common"
	"github.com/dmitrijs2005/movieapi/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cols = []string{"id", "title", "director", "studio", "movie_cast", "release_year", "poster"}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewPostgresRepository(db), mock, db
}

func TestCreate(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*INSERT\s+INTO\s+movies\s*\(title,\s*director,\s*studio,\s*movie_cast,\s*release_year,\s*poster\)\s*VALUES\s*\(\$1,.*\$6\)\s*RETURNING\s+id\s*$`
	mock.ExpectQuery(q).
		WithArgs("Heat", "Michael Mann", "Warner", `["Al Pacino","Robert De Niro"]`, 1995, "p_heat.png").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

	m := &models.Movie{Title: "Heat", Director: "Michael Mann", Studio: "Warner", Cast: []string{"Al Pacino", "Robert De Niro"}, ReleaseYear: 1995, Poster: "p_heat.png"}
	got, err := repo.Create(context.Background(), m)
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_NilCastStoredAsEmptyArray(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT\s+INTO\s+movies`).
		WithArgs("Ran", "Kurosawa", "Toho", `[]`, 1985, "p.png").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))

	_, err := repo.Create(context.Background(), &models.Movie{Title: "Ran", Director: "Kurosawa", Studio: "Toho", ReleaseYear: 1985, Poster: "p.png"})
	require.NoError(t, err)
}

func TestFindByID(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+id,\s*title,.*FROM\s+movies\s+WHERE\s+id\s*=\s*\$1$`
	mock.ExpectQuery(q).WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(int64(3), "Alien", "Ridley Scott", "Fox", []byte(`["Sigourney Weaver"]`), 1979, "alien.png"))

	got, err := repo.FindByID(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"Sigourney Weaver"}, got.Cast)
	assert.Equal(t, 1979, got.ReleaseYear)

	mock.ExpectQuery(q).WithArgs(int64(4)).WillReturnError(sql.ErrNoRows)
	_, err = repo.FindByID(context.Background(), 4)
	assert.ErrorIs(t, err, common.ErrMovieNotFound)
}

func TestList(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^SELECT\s+id,.*FROM\s+movies\s+ORDER\s+BY\s+id$`).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(int64(1), "A", "d", "s", []byte(`[]`), 2000, "a.png").
			AddRow(int64(2), "B", "d", "s", []byte(`["x"]`), 2001, "b.png"))

	got, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "B", got[1].Title)
}

func TestList_BadCastJSON(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM\s+movies`).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(int64(1), "A", "d", "s", []byte(`{`), 2000, "a.png"))

	_, err := repo.List(context.Background())
	require.Error(t, err)
	assert.True(t, regexp.MustCompile(`decode movie_cast`).MatchString(err.Error()))
}

func TestPage_SortedDescending(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`^SELECT COUNT\(\*\) FROM movies$`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(12)))
	mock.ExpectQuery(`(?s)^SELECT\s+id,.*FROM\s+movies\s+ORDER\s+BY\s+release_year\s+DESC,\s*id\s+LIMIT\s+\$1\s+OFFSET\s+\$2$`).
		WithArgs(5, 10).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(int64(11), "K", "d", "s", []byte(`[]`), 1970, "k.png"))

	items, total, err := repo.Page(context.Background(), PageRequest{Page: 2, Size: 5, SortBy: "releaseYear", Desc: true})
	require.NoError(t, err)
	assert.Equal(t, int64(12), total)
	assert.Len(t, items, 1)
}

func TestPage_DefaultOrderByID(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`COUNT`).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(0)))
	mock.ExpectQuery(`ORDER\s+BY\s+id\s+ASC,\s*id\s+LIMIT`).
		WithArgs(10, 0).
		WillReturnRows(sqlmock.NewRows(cols))

	items, total, err := repo.Page(context.Background(), PageRequest{Page: 0, Size: 10})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, items)
}

func TestPage_RejectsUnknownSortField(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	_, _, err := repo.Page(context.Background(), PageRequest{Page: 0, Size: 10, SortBy: "poster; DROP TABLE movies"})
	assert.ErrorIs(t, err, common.ErrInvalidSortField)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*UPDATE\s+movies\s+SET\s+title\s*=\s*\$1,.*WHERE\s+id\s*=\s*\$7\s*$`
	mock.ExpectExec(q).
		WithArgs("Heat", "Mann", "Warner", `["Val Kilmer"]`, 1995, "new.png", int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Update(context.Background(), &models.Movie{ID: 7, Title: "Heat", Director: "Mann", Studio: "Warner", Cast: []string{"Val Kilmer"}, ReleaseYear: 1995, Poster: "new.png"}))

	mock.ExpectExec(q).WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Update(context.Background(), &models.Movie{ID: 8}), common.ErrMovieNotFound)
}

func TestDelete(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `^DELETE FROM movies WHERE id = \$1$`
	mock.ExpectExec(q).WithArgs(int64(7)).WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Delete(context.Background(), 7))

	mock.ExpectExec(q).WithArgs(int64(7)).WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Delete(context.Background(), 7), common.ErrMovieNotFound)

	mock.ExpectExec(q).WithArgs(int64(7)).WillReturnError(errors.New("boom"))
	assert.Error(t, repo.Delete(context.Background(), 7))
}

func TestIsSortField(t *testing.T) {
	for _, f := range []string{"title", "director", "studio", "releaseYear"} {
		assert.True(t, IsSortField(f), f)
	}
	assert.False(t, IsSortField("movieId"))
	assert.False(t, IsSortField("release_year"))
}
