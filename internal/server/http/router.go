// Package http is the REST surface of the movie API, built on gin.
package http

import (
	"net/http"

	"github.com/dmitrijs2005/movieapi/internal/logging"
	"github.com/dmitrijs2005/movieapi/internal/server/models"
	"github.com/dmitrijs2005/movieapi/internal/server/observability"
	"github.com/gin-gonic/gin"
)

// RouterDeps carries everything NewRouter wires.
type RouterDeps struct {
	Auth     AuthAPI
	Reset    PasswordResetAPI
	Movies   MovieAPI
	Files    FileAPI
	Verifier TokenVerifier
	Accounts AccountFinder
	Metrics  *observability.Metrics

	// MetricsHandler serves /metrics when set.
	MetricsHandler http.Handler
	Logger         logging.Logger
}

// NewRouter wires routes and middleware. /auth and /forgotPassword are
// public; /file and /api/v1/movie need an identity; changing the catalog
// needs ADMIN.
func NewRouter(d RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(d.Logger))
	r.Use(RequestMetrics(d.Metrics))
	r.Use(Authenticator(d.Verifier, d.Accounts, d.Logger))

	if d.MetricsHandler != nil {
		r.GET("/metrics", gin.WrapH(d.MetricsHandler))
	}

	authHandler := NewAuthHandler(d.Auth, d.Reset, d.Metrics, d.Logger)
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)
	}

	forgot := r.Group("/forgotPassword")
	{
		forgot.POST("/verifyMail/:email", authHandler.VerifyMail)
		forgot.POST("/verifyOtp/:otp/:email", authHandler.VerifyOtp)
		forgot.POST("/changePassword/:email", authHandler.ChangePassword)
	}

	authenticated := RequireAuthenticated(d.Logger)
	admin := RequireRole(models.RoleAdmin, d.Logger)

	fileHandler := NewFileHandler(d.Files, d.Logger)
	files := r.Group("/file", authenticated)
	{
		files.POST("/upload", fileHandler.Upload)
		files.GET("/:fileName", fileHandler.Serve)
	}

	movieHandler := NewMovieHandler(d.Movies, d.Logger)
	movies := r.Group("/api/v1/movie", authenticated)
	{
		movies.GET("/all", movieHandler.GetAllMovies)
		movies.GET("/allMoviesPage", movieHandler.GetMoviesPage)
		movies.GET("/allMoviesPageSort", movieHandler.GetMoviesPageSorted)
		movies.GET("/:movieId", movieHandler.GetMovie)
		movies.POST("/add-movie", admin, movieHandler.AddMovie)
		movies.PUT("/update/:movieId", admin, movieHandler.UpdateMovie)
		movies.DELETE("/delete/:movieId", admin, movieHandler.DeleteMovie)
	}

	return r
}
