// Package server wires configuration, storage and services together and runs
// the HTTP API alongside the gRPC health endpoint until a shutdown signal.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/movieapi/internal/logging"
	"github.com/dmitrijs2005/movieapi/internal/server/auth"
	"github.com/dmitrijs2005/movieapi/internal/server/config"
	"github.com/dmitrijs2005/movieapi/internal/server/mail"
	"github.com/dmitrijs2005/movieapi/internal/server/models"
	"github.com/dmitrijs2005/movieapi/internal/server/observability"
	"github.com/dmitrijs2005/movieapi/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/movieapi/internal/server/services"
	"github.com/dmitrijs2005/movieapi/internal/server/storage"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	gs "github.com/dmitrijs2005/movieapi/internal/server/grpc"
	hs "github.com/dmitrijs2005/movieapi/internal/server/http"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB

	authService  *services.AuthService
	movieService *services.MovieService
	router       *gin.Engine
}

// NewApp opens the database, applies migrations and builds the services.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, slog.LevelInfo)

	db, err := repomanager.OpenDB(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	m := repomanager.NewPostgresRepositoryManager()
	if err := m.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	store, err := newBlobStore(ctx, c)
	if err != nil {
		db.Close()
		return nil, err
	}

	app, err := newApp(c, logger, db, m, store)
	if err != nil {
		db.Close()
		return nil, err
	}
	return app, nil
}

func newApp(c *config.Config, logger logging.Logger, db *sql.DB, m repomanager.RepositoryManager, store storage.BlobStore) (*App, error) {
	signer, err := auth.NewTokenSigner(c.SecretKey, c.AccessTokenTTL)
	if err != nil {
		return nil, err
	}
	hasher := auth.NewPasswordHasher(0)
	withLogger := services.WithLogger(logger)

	refresh := services.NewRefreshTokenManager(db, m, c.RefreshTokenTTL, withLogger)
	reset := services.NewOtpResetManager(db, m, hasher, newNotifier(c, logger), c.OtpTTL, withLogger)
	authService := services.NewAuthService(db, m, hasher, signer, refresh, withLogger)
	files := services.NewFileService(store, withLogger)
	movies := services.NewMovieService(db, m, files, c.BaseURL, withLogger)

	reg := observability.NewRegistry()
	metrics := observability.NewMetrics(reg)

	router := hs.NewRouter(hs.RouterDeps{
		Auth:           authService,
		Reset:          reset,
		Movies:         movies,
		Files:          files,
		Verifier:       signer,
		Accounts:       authService,
		Metrics:        metrics,
		MetricsHandler: observability.Handler(reg),
		Logger:         logger,
	})

	return &App{
		config:       c,
		logger:       logger,
		db:           db,
		authService:  authService,
		movieService: movies,
		router:       router,
	}, nil
}

func newBlobStore(ctx context.Context, c *config.Config) (storage.BlobStore, error) {
	if c.PosterStorage == config.StorageS3 {
		s, err := storage.NewS3Store(ctx, storage.S3Config{
			Region:       c.S3Region,
			AccessKey:    c.S3RootUser,
			SecretKey:    c.S3RootPassword,
			Bucket:       c.S3Bucket,
			BaseEndpoint: c.S3BaseEndpoint,
		})
		if err != nil {
			return nil, fmt.Errorf("s3 storage: %w", err)
		}
		return s, nil
	}
	s, err := storage.NewLocalStore(c.PosterDir)
	if err != nil {
		return nil, fmt.Errorf("local storage: %w", err)
	}
	return s, nil
}

// newNotifier falls back to logging the notice when no relay is configured.
func newNotifier(c *config.Config, logger logging.Logger) services.Notifier {
	if c.MailHost == "" {
		return mail.NewLogNotifier(logger)
	}
	return mail.NewSMTPNotifier(mail.SMTPConfig{
		Host:     c.MailHost,
		Port:     c.MailPort,
		User:     c.MailUser,
		Password: c.MailPassword,
		From:     c.MailFrom,
	})
}

// CreateAccount registers an account with the given role, bypassing the
// public endpoint. Used to bootstrap administrators.
func (app *App) CreateAccount(ctx context.Context, req services.RegisterRequest, role models.Role) (*models.Account, error) {
	return app.authService.CreateAccount(ctx, req, role)
}

func (app *App) Close() error {
	return app.db.Close()
}

func (app *App) initSignalHandler(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
}

// Run serves until ctx is cancelled, a signal arrives or one of the servers
// fails. The database is closed on return.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := app.initSignalHandler(ctx)
	defer stop()
	defer app.Close()

	app.logger.Info(ctx, "Starting app...",
		"http", app.config.EndpointAddrHTTP,
		"grpc", app.config.EndpointAddrGRPC,
		"storage", app.config.PosterStorage)

	httpServer := hs.NewServer(app.config.EndpointAddrHTTP, app.router, app.logger)
	grpcServer := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.db)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return httpServer.Run(ctx) })
	g.Go(func() error { return grpcServer.Run(ctx) })

	err := g.Wait()
	if err != nil {
		app.logger.Error(ctx, "server stopped", "error", err)
	} else {
		app.logger.Info(ctx, "server stopped")
	}
	return err
}
