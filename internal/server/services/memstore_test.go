package services

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/dmitrijs2005/movieapi/internal/common"
	"github.com/dmitrijs2005/movieapi/internal/dbx"
	"github.com/dmitrijs2005/movieapi/internal/server/models"
	"github.com/dmitrijs2005/movieapi/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/movieapi/internal/server/repositories/movies"
	"github.com/dmitrijs2005/movieapi/internal/server/repositories/otps"
	"github.com/dmitrijs2005/movieapi/internal/server/repositories/refreshtokens"
)

// memStore is a stateful in-memory stand-in for the postgres repositories.
// The DBTX passed to the repository constructors is ignored.
type memStore struct {
	mu     sync.Mutex
	nextID int

	accounts map[string]*models.Account      // by email
	tokens   map[string]*models.RefreshToken // by account id
	otps     map[string]*models.PasswordOtp  // by account id
	movies   map[int64]*models.Movie

	deleteTokenErr error
	upsertOtpErr   error

	// beforeTokenCreate runs ahead of every refresh token insert.
	beforeTokenCreate func()
}

func newMemStore() *memStore {
	return &memStore{
		accounts: map[string]*models.Account{},
		tokens:   map[string]*models.RefreshToken{},
		otps:     map[string]*models.PasswordOtp{},
		movies:   map[int64]*models.Movie{},
	}
}

func (s *memStore) id() string {
	s.nextID++
	return fmt.Sprintf("id-%d", s.nextID)
}

func (s *memStore) RunMigrations(context.Context, *sql.DB) error    { return nil }
func (s *memStore) Accounts(dbx.DBTX) accounts.Repository           { return memAccounts{s} }
func (s *memStore) RefreshTokens(dbx.DBTX) refreshtokens.Repository { return memTokens{s} }
func (s *memStore) Otps(dbx.DBTX) otps.Repository                   { return memOtps{s} }
func (s *memStore) Movies(dbx.DBTX) movies.Repository               { return memMovies{s} }

func (s *memStore) accountByID(id string) *models.Account {
	for _, a := range s.accounts {
		if a.ID == id {
			return a
		}
	}
	return nil
}

type memAccounts struct{ s *memStore }

func (r memAccounts) Create(_ context.Context, acc *models.Account) (*models.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.accounts {
		if a.Email == acc.Email || a.Username == acc.Username {
			return nil, common.ErrAccountExists
		}
	}
	c := *acc
	c.ID = r.s.id()
	r.s.accounts[c.Email] = &c
	out := c
	return &out, nil
}

func (r memAccounts) FindByEmail(_ context.Context, email string) (*models.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.accounts[email]
	if !ok {
		return nil, common.ErrAccountNotFound
	}
	c := *a
	return &c, nil
}

func (r memAccounts) UpdatePasswordByEmail(_ context.Context, email, hash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.accounts[email]
	if !ok {
		return common.ErrAccountNotFound
	}
	a.PasswordHash = hash
	return nil
}

type memTokens struct{ s *memStore }

func (r memTokens) Create(_ context.Context, t *models.RefreshToken) (*models.RefreshToken, error) {
	if r.s.beforeTokenCreate != nil {
		r.s.beforeTokenCreate()
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tokens[t.AccountID]; ok {
		return nil, common.ErrConflict
	}
	c := *t
	c.ID = r.s.id()
	r.s.tokens[c.AccountID] = &c
	out := c
	return &out, nil
}

func (r memTokens) FindByAccountID(_ context.Context, accountID string) (*models.RefreshToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tokens[accountID]
	if !ok {
		return nil, common.ErrTokenNotFound
	}
	c := *t
	return &c, nil
}

func (r memTokens) FindByToken(_ context.Context, token string) (*models.RefreshToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range r.s.tokens {
		if t.Token == token {
			c := *t
			acc := *r.s.accountByID(t.AccountID)
			c.Account = &acc
			return &c, nil
		}
	}
	return nil, common.ErrTokenNotFound
}

func (r memTokens) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.deleteTokenErr != nil {
		return r.s.deleteTokenErr
	}
	for k, t := range r.s.tokens {
		if t.ID == id {
			delete(r.s.tokens, k)
		}
	}
	return nil
}

type memOtps struct{ s *memStore }

func (r memOtps) Upsert(_ context.Context, o *models.PasswordOtp) (*models.PasswordOtp, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.upsertOtpErr != nil {
		return nil, r.s.upsertOtpErr
	}
	c := *o
	if prev, ok := r.s.otps[o.AccountID]; ok {
		c.ID = prev.ID
	} else {
		c.ID = r.s.id()
	}
	r.s.otps[c.AccountID] = &c
	out := c
	return &out, nil
}

func (r memOtps) FindByAccountAndOtp(_ context.Context, accountID string, otp int) (*models.PasswordOtp, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.otps[accountID]
	if !ok || o.Otp != otp {
		return nil, common.ErrOtpMismatch
	}
	c := *o
	return &c, nil
}

func (r memOtps) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for k, o := range r.s.otps {
		if o.ID == id {
			delete(r.s.otps, k)
		}
	}
	return nil
}

type memMovies struct{ s *memStore }

func (r memMovies) Create(_ context.Context, m *models.Movie) (*models.Movie, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextID++
	c := *m
	c.ID = int64(r.s.nextID)
	r.s.movies[c.ID] = &c
	out := c
	return &out, nil
}

func (r memMovies) FindByID(_ context.Context, id int64) (*models.Movie, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.movies[id]
	if !ok {
		return nil, common.ErrMovieNotFound
	}
	c := *m
	return &c, nil
}

func (r memMovies) sorted(less func(a, b models.Movie) bool) []models.Movie {
	out := make([]models.Movie, 0, len(r.s.movies))
	for _, m := range r.s.movies {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func (r memMovies) List(_ context.Context) ([]models.Movie, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.sorted(func(a, b models.Movie) bool { return a.ID < b.ID }), nil
}

func (r memMovies) Page(_ context.Context, req movies.PageRequest) ([]models.Movie, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := func(m models.Movie) string { return fmt.Sprintf("%020d", m.ID) }
	switch req.SortBy {
	case "":
	case "title":
		key = func(m models.Movie) string { return strings.ToLower(m.Title) }
	case "director":
		key = func(m models.Movie) string { return strings.ToLower(m.Director) }
	case "releaseYear":
		key = func(m models.Movie) string { return fmt.Sprintf("%08d", m.ReleaseYear) }
	default:
		return nil, 0, common.ErrInvalidSortField
	}

	all := r.sorted(func(a, b models.Movie) bool {
		ka, kb := key(a), key(b)
		if ka == kb {
			return a.ID < b.ID
		}
		if req.Desc {
			return ka > kb
		}
		return ka < kb
	})

	from := req.Page * req.Size
	if from > len(all) {
		from = len(all)
	}
	to := from + req.Size
	if to > len(all) {
		to = len(all)
	}
	return all[from:to], int64(len(all)), nil
}

func (r memMovies) Update(_ context.Context, m *models.Movie) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.movies[m.ID]; !ok {
		return common.ErrMovieNotFound
	}
	c := *m
	r.s.movies[m.ID] = &c
	return nil
}

func (r memMovies) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.movies[id]; !ok {
		return common.ErrMovieNotFound
	}
	delete(r.s.movies, id)
	return nil
}
