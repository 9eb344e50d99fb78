package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/dmitrijs2005/movieapi/internal/common"
	"github.com/dmitrijs2005/movieapi/internal/dbx"
	"github.com/dmitrijs2005/movieapi/internal/server/models"
	"github.com/dmitrijs2005/movieapi/internal/server/repositories/repomanager"
)

const minPasswordLength = 5

// TokenIssuer mints access tokens.
type TokenIssuer interface {
	Issue(subject string, extra map[string]any) (string, error)
}

// RegisterRequest carries the fields of a new account.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthService implements register, login and refresh on top of the password
// hasher, the token signer and the refresh token manager.
type AuthService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      PasswordHasher
	signer      TokenIssuer
	refresh     *RefreshTokenManager
	options
}

func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, h PasswordHasher, signer TokenIssuer, refresh *RefreshTokenManager, opts ...Option) *AuthService {
	return &AuthService{db: db, repomanager: m, hasher: h, signer: signer, refresh: refresh, options: buildOptions(opts)}
}

// Register creates a USER account and returns its first token pair. The
// account and its refresh token are stored in one transaction.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*TokenPair, error) {
	var pair *TokenPair

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		acc, err := s.createAccount(ctx, tx, req, models.RoleUser)
		if err != nil {
			return err
		}

		access, err := s.issueAccessToken(acc)
		if err != nil {
			return err
		}

		rt, err := s.refresh.createOrGetForAccount(ctx, tx, acc)
		if err != nil {
			return err
		}

		pair = &TokenPair{AccessToken: access, RefreshToken: rt.Token}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pair, nil
}

// CreateAccount stores an account with the given role without issuing
// tokens. It is the only way to obtain an ADMIN account.
func (s *AuthService) CreateAccount(ctx context.Context, req RegisterRequest, role models.Role) (*models.Account, error) {
	return s.createAccount(ctx, s.db, req, role)
}

// Login checks the credentials and returns a new access token together with
// the account's current refresh token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	acc, err := s.authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}

	access, err := s.issueAccessToken(acc)
	if err != nil {
		return nil, err
	}

	rt, err := s.refresh.CreateOrGet(ctx, acc.Email)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: rt.Token}, nil
}

// Refresh exchanges a live refresh token for a new access token. The refresh
// token itself is returned unchanged.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	rt, err := s.refresh.Verify(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	access, err := s.issueAccessToken(rt.Account)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: rt.Token}, nil
}

// FindAccount loads an account by email.
func (s *AuthService) FindAccount(ctx context.Context, email string) (*models.Account, error) {
	return s.repomanager.Accounts(s.db).FindByEmail(ctx, normalizeEmail(email))
}

// --- helpers below ---

func (s *AuthService) authenticate(ctx context.Context, email, password string) (*models.Account, error) {
	acc, err := s.repomanager.Accounts(s.db).FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrAccountNotFound) {
			s.hasher.VerifyDummy(password)
			return nil, common.ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.hasher.Verify(password, acc.PasswordHash) {
		return nil, common.ErrInvalidCredentials
	}
	if err := acc.CheckStatus(); err != nil {
		return nil, err
	}
	return acc, nil
}

func (s *AuthService) createAccount(ctx context.Context, db dbx.DBTX, req RegisterRequest, role models.Role) (*models.Account, error) {
	if err := validateRegistration(req); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", common.ErrValidation, role)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	acc := models.NewAccount(strings.TrimSpace(req.Name), strings.TrimSpace(req.Username), normalizeEmail(req.Email), hash, role)
	return s.repomanager.Accounts(db).Create(ctx, acc)
}

func (s *AuthService) issueAccessToken(acc *models.Account) (string, error) {
	token, err := s.signer.Issue(acc.Email, map[string]any{"role": string(acc.Role)})
	if err != nil {
		return "", fmt.Errorf("error issuing access token: %w", err)
	}
	return token, nil
}

func validateRegistration(req RegisterRequest) error {
	switch {
	case strings.TrimSpace(req.Name) == "":
		return fmt.Errorf("%w: name is required", common.ErrValidation)
	case strings.TrimSpace(req.Username) == "":
		return fmt.Errorf("%w: username is required", common.ErrValidation)
	}
	if _, err := mail.ParseAddress(normalizeEmail(req.Email)); err != nil {
		return fmt.Errorf("%w: invalid email", common.ErrValidation)
	}
	return validatePassword(req.Password)
}

// normalizeEmail is applied to every email entering the services so lookups
// match what registration stored.
func normalizeEmail(email string) string {
	return strings.TrimSpace(email)
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return fmt.Errorf("%w: password must have at least %d characters", common.ErrValidation, minPasswordLength)
	}
	return nil
}
