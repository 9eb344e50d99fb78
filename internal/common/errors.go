package common

import "errors"

var (
	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")

	// Generic storage conflict (unique constraint).
	ErrConflict = errors.New("conflict")

	// Validation errors for incoming payloads.
	ErrValidation = errors.New("validation error")

	// Account errors.
	ErrAccountNotFound    = errors.New("account not found")
	ErrAccountExists      = errors.New("account already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account is disabled")
	ErrAccountLocked      = errors.New("account is locked")
	ErrAccountExpired     = errors.New("account has expired")
	ErrCredentialsExpired = errors.New("credentials have expired")
	ErrPasswordMismatch   = errors.New("please enter the password again")
	ErrOtpMismatch        = errors.New("invalid OTP for email")
	ErrOtpExpired         = errors.New("OTP has expired")

	// Token errors.
	ErrTokenInvalid   = errors.New("invalid token")
	ErrTokenMalformed = errors.New("malformed token")
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenNotFound  = errors.New("refresh token not found")

	// Catalog and file errors.
	ErrMovieNotFound       = errors.New("movie not found")
	ErrFileNotFound        = errors.New("file not found")
	ErrEmptyFile           = errors.New("file is empty")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrInvalidSortField    = errors.New("invalid sort field")
)

