package http

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dmitrijs2005/movieapi/internal/common"
	"github.com/dmitrijs2005/movieapi/internal/logging"
	"github.com/dmitrijs2005/movieapi/internal/server/models"
	"github.com/dmitrijs2005/movieapi/internal/server/observability"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	identityKey  = "identity"
	requestIDKey = "request_id"

	requestIDHeader = "X-Request-ID"
)

// TokenVerifier is the part of the access token signer the authenticator needs.
type TokenVerifier interface {
	ExtractSubject(token string) (string, error)
	IsValid(token, expectedSubject string) bool
}

// AccountFinder loads the account named by a token subject.
type AccountFinder interface {
	FindAccount(ctx context.Context, email string) (*models.Account, error)
}

// Authenticator establishes the caller's identity from a bearer token. It
// never rejects a request: any failure leaves the request anonymous and
// access decisions are made by RequireAuthenticated and RequireRole.
func Authenticator(v TokenVerifier, accounts AccountFinder, logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authenticate(c, v, accounts, logger)
		c.Next()
	}
}

func authenticate(c *gin.Context, v TokenVerifier, accounts AccountFinder, logger logging.Logger) {
	header := c.GetHeader(common.AuthorizationHeader)
	if !strings.HasPrefix(header, common.BearerPrefix) {
		return
	}
	token := strings.TrimSpace(header[len(common.BearerPrefix):])
	if token == "" {
		return
	}

	email, err := v.ExtractSubject(token)
	if err != nil {
		return
	}

	if _, ok := Identity(c); ok {
		return
	}

	acc, err := accounts.FindAccount(c.Request.Context(), email)
	if err != nil {
		if !errors.Is(err, common.ErrAccountNotFound) {
			logger.Warn(c.Request.Context(), "account lookup failed", "error", err)
		}
		return
	}

	if !v.IsValid(token, acc.Email) {
		return
	}
	c.Set(identityKey, acc)
}

// Identity returns the account established by Authenticator.
func Identity(c *gin.Context) (*models.Account, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil, false
	}
	acc, ok := v.(*models.Account)
	return acc, ok
}

// RequireAuthenticated rejects anonymous requests with 401.
func RequireAuthenticated(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := Identity(c); !ok {
			abortWithError(c, logger, common.ErrorUnauthorized)
			return
		}
		c.Next()
	}
}

// RequireRole rejects anonymous requests with 401 and callers lacking role
// with 403.
func RequireRole(role models.Role, logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		acc, ok := Identity(c)
		if !ok {
			abortWithError(c, logger, common.ErrorUnauthorized)
			return
		}
		if acc.Role != role {
			abortWithError(c, logger, common.ErrorForbidden)
			return
		}
		c.Next()
	}
}

// RequestLogger logs every request with its route, latency and request ID.
func RequestLogger(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Writer.Header().Set(requestIDHeader, requestID)
		c.Request = c.Request.WithContext(logging.ContextWithRequestID(c.Request.Context(), requestID))

		c.Next()

		// The route template keeps path parameters such as OTPs out of the log.
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		status := c.Writer.Status()
		args := []any{
			"status", status,
			"method", c.Request.Method,
			"path", path,
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
		}
		if acc, ok := Identity(c); ok {
			args = append(args, "account_id", acc.ID)
		}

		ctx := c.Request.Context()
		switch {
		case status >= 500:
			logger.Error(ctx, "http_request", args...)
		case status >= 400:
			logger.Warn(ctx, "http_request", args...)
		default:
			logger.Info(ctx, "http_request", args...)
		}
	}
}

// RequestMetrics counts requests by matched route.
func RequestMetrics(m *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		m.RecordRequest(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}
