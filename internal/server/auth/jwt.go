// Package auth issues and verifies access tokens and hashes passwords.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/movieapi/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// reserved claims are always set by the signer and cannot be overridden by
// extra claims.
var reserved = map[string]bool{"sub": true, "iat": true, "exp": true, "jti": true}

// TokenSigner issues HS256 access tokens whose subject is the account email.
// The secret is copied at construction and never exposed.
type TokenSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

type SignerOption func(*TokenSigner)

// WithClock replaces the wall clock used for issuing and expiry checks.
func WithClock(now func() time.Time) SignerOption {
	return func(s *TokenSigner) { s.now = now }
}

func NewTokenSigner(secret string, ttl time.Duration, opts ...SignerOption) (*TokenSigner, error) {
	if secret == "" {
		return nil, errors.New("token signer: empty secret")
	}
	if ttl <= 0 {
		return nil, errors.New("token signer: non-positive ttl")
	}

	s := &TokenSigner{secret: []byte(secret), ttl: ttl, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// TTL returns the lifetime of issued tokens.
func (s *TokenSigner) TTL() time.Duration {
	return s.ttl
}

// Issue signs a token for subject valid from now until now+TTL. Each token
// gets a fresh jti, so two tokens issued within one second still differ.
// Extra claims are embedded as-is except for the reserved ones.
func (s *TokenSigner) Issue(subject string, extra map[string]any) (string, error) {
	now := s.now()

	claims := jwt.MapClaims{}
	for k, v := range extra {
		if !reserved[k] {
			claims[k] = v
		}
	}
	claims["sub"] = subject
	claims["iat"] = jwt.NewNumericDate(now)
	claims["exp"] = jwt.NewNumericDate(now.Add(s.ttl))
	claims["jti"] = uuid.NewString()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature, subject and expiry. Every failure wraps
// common.ErrTokenInvalid; an expired token additionally wraps
// common.ErrTokenExpired.
func (s *TokenSigner) Verify(token, expectedSubject string) error {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)

	if _, err := parser.ParseWithClaims(token, claims, s.key); err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return fmt.Errorf("%w: %w", common.ErrTokenInvalid, common.ErrTokenExpired)
		}
		return fmt.Errorf("%w: %v", common.ErrTokenInvalid, err)
	}

	sub, err := claims.GetSubject()
	if err != nil || sub != expectedSubject {
		return fmt.Errorf("%w: subject mismatch", common.ErrTokenInvalid)
	}
	return nil
}

// IsValid is Verify reduced to a boolean.
func (s *TokenSigner) IsValid(token, expectedSubject string) bool {
	return s.Verify(token, expectedSubject) == nil
}

// ExtractSubject returns the subject of a correctly signed token without
// checking expiry. Unparseable or forged tokens yield common.ErrTokenMalformed.
func (s *TokenSigner) ExtractSubject(token string) (string, error) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	if _, err := parser.ParseWithClaims(token, claims, s.key); err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrTokenMalformed, err)
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", fmt.Errorf("%w: no subject", common.ErrTokenMalformed)
	}
	return sub, nil
}

func (s *TokenSigner) key(t *jwt.Token) (any, error) {
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
	}
	return s.secret, nil
}
