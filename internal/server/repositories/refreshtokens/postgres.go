package refreshtokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/movieapi/internal/common"
	"github.com/dmitrijs2005/movieapi/internal/dbx"
	"github.com/dmitrijs2005/movieapi/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, t *models.RefreshToken) (*models.RefreshToken, error) {
	query := `
		INSERT INTO refresh_tokens (account_id, token, expires_at)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query, t.AccountID, t.Token, t.ExpiresAt).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %s", common.ErrConflict, dbx.ConstraintName(err))
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

func (r *PostgresRepository) FindByAccountID(ctx context.Context, accountID string) (*models.RefreshToken, error) {
	query := `
		SELECT id, account_id, token, expires_at, created_at
		FROM refresh_tokens
		WHERE account_id = $1
	`
	t := &models.RefreshToken{}
	err := r.db.QueryRowContext(ctx, query, accountID).Scan(&t.ID, &t.AccountID, &t.Token, &t.ExpiresAt, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrTokenNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

func (r *PostgresRepository) FindByToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	query := `
		SELECT t.id, t.account_id, t.token, t.expires_at, t.created_at,
			a.name, a.username, a.email, a.password_hash, a.role,
			a.enabled, a.account_non_expired, a.account_non_locked, a.credentials_non_expired
		FROM refresh_tokens t
		JOIN accounts a ON a.id = t.account_id
		WHERE t.token = $1
	`
	t := &models.RefreshToken{}
	acc := &models.Account{}
	var role string
	err := r.db.QueryRowContext(ctx, query, token).Scan(
		&t.ID, &t.AccountID, &t.Token, &t.ExpiresAt, &t.CreatedAt,
		&acc.Name, &acc.Username, &acc.Email, &acc.PasswordHash, &role,
		&acc.Enabled, &acc.AccountNonExpired, &acc.AccountNonLocked, &acc.CredentialsNonExpired,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrTokenNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	acc.ID = t.AccountID
	acc.Role = models.Role(role)
	t.Account = acc
	return t, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := `
		DELETE FROM refresh_tokens
		WHERE id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
