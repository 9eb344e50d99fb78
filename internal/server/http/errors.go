package http

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/movieapi/internal/common"
	"github.com/dmitrijs2005/movieapi/internal/logging"
	"github.com/gin-gonic/gin"
)

// ErrorResponse is the body of every failed API call.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type errorMapping struct {
	err    error
	status int
	kind   string
}

// Order matters: expired access tokens wrap both ErrTokenExpired and
// ErrTokenInvalid.
var errorMappings = []errorMapping{
	{common.ErrValidation, http.StatusBadRequest, "validation_error"},
	{common.ErrOtpMismatch, http.StatusBadRequest, "otp_mismatch"},
	{common.ErrEmptyFile, http.StatusBadRequest, "empty_file"},
	{common.ErrUnsupportedFileType, http.StatusBadRequest, "unsupported_file_type"},
	{common.ErrInvalidSortField, http.StatusBadRequest, "invalid_sort_field"},

	{common.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
	{common.ErrAccountDisabled, http.StatusUnauthorized, "account_disabled"},
	{common.ErrAccountLocked, http.StatusUnauthorized, "account_locked"},
	{common.ErrAccountExpired, http.StatusUnauthorized, "account_expired"},
	{common.ErrCredentialsExpired, http.StatusUnauthorized, "credentials_expired"},
	{common.ErrTokenExpired, http.StatusUnauthorized, "token_expired"},
	{common.ErrTokenNotFound, http.StatusUnauthorized, "token_not_found"},
	{common.ErrTokenMalformed, http.StatusUnauthorized, "token_malformed"},
	{common.ErrTokenInvalid, http.StatusUnauthorized, "token_invalid"},
	{common.ErrorUnauthorized, http.StatusUnauthorized, "unauthorized"},

	{common.ErrorForbidden, http.StatusForbidden, "forbidden"},

	{common.ErrAccountNotFound, http.StatusNotFound, "account_not_found"},
	{common.ErrMovieNotFound, http.StatusNotFound, "movie_not_found"},
	{common.ErrFileNotFound, http.StatusNotFound, "file_not_found"},

	{common.ErrAccountExists, http.StatusConflict, "account_exists"},
	{common.ErrConflict, http.StatusConflict, "conflict"},

	{common.ErrOtpExpired, http.StatusExpectationFailed, "otp_expired"},
	{common.ErrPasswordMismatch, http.StatusExpectationFailed, "password_mismatch"},
}

// StatusFor returns the HTTP status and machine-readable kind for err.
func StatusFor(err error) (int, string) {
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			return m.status, m.kind
		}
	}
	return http.StatusInternalServerError, "internal_error"
}

// abortWithError writes err as an ErrorResponse and stops the chain.
// Unknown errors are logged and their text is not exposed.
func abortWithError(c *gin.Context, logger logging.Logger, err error) {
	status, kind := StatusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		logger.Error(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
		msg = common.ErrorInternal.Error()
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, ErrorResponse{Error: kind, Message: msg})
}
