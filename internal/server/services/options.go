// Package services contains the server-side business logic: the
// authentication core (accounts, access and refresh tokens, password reset)
// and the movie catalog with its poster files.
package services

import (
	"time"

	"github.com/dmitrijs2005/movieapi/internal/logging"
)

// TokenPair is returned by register, login and refresh.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type options struct {
	now    func() time.Time
	logger logging.Logger
}

// Option customises a service.
type Option func(*options)

// WithClock replaces time.Now for expiry decisions.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithLogger sets the logger. Services log nothing by default.
func WithLogger(l logging.Logger) Option {
	return func(o *options) { o.logger = l }
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now, logger: logging.NewNop()}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}
