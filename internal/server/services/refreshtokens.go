package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/movieapi/internal/common"
	"github.com/dmitrijs2005/movieapi/internal/dbx"
	"github.com/dmitrijs2005/movieapi/internal/server/models"
	"github.com/dmitrijs2005/movieapi/internal/server/repositories/repomanager"
)

// refreshTokenBytes gives 256 bits of randomness per token.
const refreshTokenBytes = 32

// RefreshTokenManager keeps one opaque refresh token per account. Live tokens
// are never rotated or extended; expired ones are removed when touched.
type RefreshTokenManager struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	ttl         time.Duration
	options
}

func NewRefreshTokenManager(db *sql.DB, m repomanager.RepositoryManager, ttl time.Duration, opts ...Option) *RefreshTokenManager {
	return &RefreshTokenManager{db: db, repomanager: m, ttl: ttl, options: buildOptions(opts)}
}

// CreateOrGet returns the account's live refresh token, minting one when the
// account has none.
func (s *RefreshTokenManager) CreateOrGet(ctx context.Context, email string) (*models.RefreshToken, error) {
	return s.createOrGet(ctx, s.db, email)
}

// Verify looks a token up by value. An expired token is deleted and
// reported as common.ErrTokenExpired.
func (s *RefreshTokenManager) Verify(ctx context.Context, token string) (*models.RefreshToken, error) {
	repo := s.repomanager.RefreshTokens(s.db)

	rt, err := repo.FindByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	if rt.Expired(s.now()) {
		if err := repo.Delete(ctx, rt.ID); err != nil {
			s.logger.Warn(ctx, "failed to delete expired refresh token", "account_id", rt.AccountID, "error", err)
		}
		return nil, common.ErrTokenExpired
	}
	return rt, nil
}

// --- helpers below ---

func (s *RefreshTokenManager) createOrGet(ctx context.Context, db dbx.DBTX, email string) (*models.RefreshToken, error) {
	acc, err := s.repomanager.Accounts(db).FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	return s.createOrGetForAccount(ctx, db, acc)
}

func (s *RefreshTokenManager) createOrGetForAccount(ctx context.Context, db dbx.DBTX, acc *models.Account) (*models.RefreshToken, error) {
	repo := s.repomanager.RefreshTokens(db)
	now := s.now()

	existing, err := repo.FindByAccountID(ctx, acc.ID)
	switch {
	case err == nil && !existing.Expired(now):
		return existing, nil
	case err == nil:
		if err := repo.Delete(ctx, existing.ID); err != nil {
			return nil, fmt.Errorf("error deleting expired refresh token: %w", err)
		}
	case !errors.Is(err, common.ErrTokenNotFound):
		return nil, fmt.Errorf("error searching refresh token: %w", err)
	}

	value, err := common.MakeRandHexString(refreshTokenBytes)
	if err != nil {
		return nil, fmt.Errorf("error generating refresh token: %w", err)
	}

	created, err := repo.Create(ctx, &models.RefreshToken{
		AccountID: acc.ID,
		Token:     value,
		ExpiresAt: now.Add(s.ttl).Truncate(time.Second),
	})
	if errors.Is(err, common.ErrConflict) {
		// A concurrent request stored its token first; hand that one out.
		return repo.FindByAccountID(ctx, acc.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("error creating refresh token: %w", err)
	}
	return created, nil
}
