package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/movieapi/internal/common"
	"github.com/dmitrijs2005/movieapi/internal/logging"
	"github.com/dmitrijs2005/movieapi/internal/server/auth"
	"github.com/dmitrijs2005/movieapi/internal/server/models"
	"github.com/dmitrijs2005/movieapi/internal/server/observability"
	"github.com/dmitrijs2005/movieapi/internal/server/services"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

// --- fakes ---

type fakeAccounts struct {
	mu    sync.Mutex
	byKey map[string]*models.Account
	calls int
}

func (f *fakeAccounts) FindAccount(_ context.Context, email string) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	acc, ok := f.byKey[email]
	if !ok {
		return nil, common.ErrAccountNotFound
	}
	return acc, nil
}

type fakeAuth struct {
	pair *services.TokenPair
	err  error

	gotRegister services.RegisterRequest
	gotEmail    string
	gotPassword string
	gotRefresh  string
}

func (f *fakeAuth) Register(_ context.Context, req services.RegisterRequest) (*services.TokenPair, error) {
	f.gotRegister = req
	return f.pair, f.err
}

func (f *fakeAuth) Login(_ context.Context, email, password string) (*services.TokenPair, error) {
	f.gotEmail, f.gotPassword = email, password
	return f.pair, f.err
}

func (f *fakeAuth) Refresh(_ context.Context, token string) (*services.TokenPair, error) {
	f.gotRefresh = token
	return f.pair, f.err
}

type fakeReset struct {
	err error

	gotEmail  string
	gotOtp    int
	gotPass   string
	gotRepeat string
}

func (f *fakeReset) RequestReset(_ context.Context, email string) error {
	f.gotEmail = email
	return f.err
}

func (f *fakeReset) VerifyOtp(_ context.Context, email string, otp int) error {
	f.gotEmail, f.gotOtp = email, otp
	return f.err
}

func (f *fakeReset) ChangePassword(_ context.Context, email, password, repeat string) error {
	f.gotEmail, f.gotPass, f.gotRepeat = email, password, repeat
	return f.err
}

type fakeMovies struct {
	err error

	added     *services.MovieDto
	addedFile string
	pageArgs  []any
}

func (f *fakeMovies) AddMovie(_ context.Context, in services.MovieDto, poster *services.Upload) (*services.MovieDto, error) {
	if f.err != nil {
		return nil, f.err
	}
	if poster == nil {
		return nil, common.ErrEmptyFile
	}
	body, _ := io.ReadAll(poster.Body)
	f.addedFile = poster.Filename + ":" + poster.ContentType + ":" + string(body)
	in.MovieID = 7
	f.added = &in
	return &in, nil
}

func (f *fakeMovies) GetMovie(_ context.Context, id int64) (*services.MovieDto, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &services.MovieDto{MovieID: id, Title: "Heat"}, nil
}

func (f *fakeMovies) GetAllMovies(context.Context) ([]services.MovieDto, error) {
	return []services.MovieDto{{MovieID: 1, Title: "Heat"}}, f.err
}

func (f *fakeMovies) UpdateMovie(_ context.Context, id int64, in services.MovieDto, poster *services.Upload) (*services.MovieDto, error) {
	if f.err != nil {
		return nil, f.err
	}
	in.MovieID = id
	if poster == nil {
		in.Poster = "unchanged"
	}
	return &in, nil
}

func (f *fakeMovies) DeleteMovie(context.Context, int64) error { return f.err }

func (f *fakeMovies) GetMoviesPage(_ context.Context, page, size int) (*services.MoviePageResponse, error) {
	f.pageArgs = []any{page, size}
	return &services.MoviePageResponse{PageNumber: page, PageSize: size}, f.err
}

func (f *fakeMovies) GetMoviesPageSorted(_ context.Context, page, size int, sortBy, dir string) (*services.MoviePageResponse, error) {
	f.pageArgs = []any{page, size, sortBy, dir}
	if f.err != nil {
		return nil, f.err
	}
	return &services.MoviePageResponse{PageNumber: page, PageSize: size}, nil
}

type fakeFiles struct {
	stored map[string]string
}

func (f *fakeFiles) Upload(_ context.Context, u services.Upload) (string, error) {
	if u.ContentType != "image/png" {
		return "", common.ErrUnsupportedFileType
	}
	b, _ := io.ReadAll(u.Body)
	name := "uuid_" + u.Filename
	f.stored[name] = string(b)
	return name, nil
}

func (f *fakeFiles) Open(_ context.Context, name string) (io.ReadCloser, string, error) {
	data, ok := f.stored[name]
	if !ok {
		return nil, "", common.ErrFileNotFound
	}
	return io.NopCloser(strings.NewReader(data)), services.ContentTypeFor(name), nil
}

// --- harness ---

type harness struct {
	router   *gin.Engine
	signer   *auth.TokenSigner
	now      time.Time
	accounts *fakeAccounts
	auth     *fakeAuth
	reset    *fakeReset
	movies   *fakeMovies
	files    *fakeFiles
	metrics  *observability.Metrics
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	h := &harness{
		now: time.Now(),
		accounts: &fakeAccounts{byKey: map[string]*models.Account{
			"user@x.com":  {ID: "u1", Email: "user@x.com", Role: models.RoleUser},
			"admin@x.com": {ID: "a1", Email: "admin@x.com", Role: models.RoleAdmin},
		}},
		auth:   &fakeAuth{pair: &services.TokenPair{AccessToken: "acc", RefreshToken: "ref"}},
		reset:  &fakeReset{},
		movies: &fakeMovies{},
		files:  &fakeFiles{stored: map[string]string{}},
	}

	var err error
	h.signer, err = auth.NewTokenSigner("http-test-secret", 25*time.Second, auth.WithClock(func() time.Time { return h.now }))
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	h.metrics = observability.NewMetrics(reg)

	h.router = NewRouter(RouterDeps{
		Auth:           h.auth,
		Reset:          h.reset,
		Movies:         h.movies,
		Files:          h.files,
		Verifier:       h.signer,
		Accounts:       h.accounts,
		Metrics:        h.metrics,
		MetricsHandler: observability.Handler(reg),
		Logger:         logging.NewNop(),
	})
	return h
}

func (h *harness) token(t *testing.T, email string) string {
	t.Helper()
	tok, err := h.signer.Issue(email, nil)
	require.NoError(t, err)
	return tok
}

func (h *harness) do(req *http.Request, bearer string) *httptest.ResponseRecorder {
	if bearer != "" {
		req.Header.Set(common.AuthorizationHeader, common.BearerPrefix+bearer)
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func jsonRequest(method, path string, body any) *http.Request {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(method, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	return req
}

type part struct {
	field, filename, contentType, body string
}

func multipartRequest(t *testing.T, method, path string, parts ...part) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, p := range parts {
		if p.filename == "" {
			require.NoError(t, mw.WriteField(p.field, p.body))
			continue
		}
		hdr := textproto.MIMEHeader{}
		hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, p.field, p.filename))
		hdr.Set("Content-Type", p.contentType)
		w, err := mw.CreatePart(hdr)
		require.NoError(t, err)
		_, err = w.Write([]byte(p.body))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var e ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &e), w.Body.String())
	return e
}
