package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/movieapi/internal/common"
	"github.com/dmitrijs2005/movieapi/internal/dbx"
	"github.com/dmitrijs2005/movieapi/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, acc *models.Account) (*models.Account, error) {
	query := `
		INSERT INTO accounts (name, username, email, password_hash, role,
			enabled, account_non_expired, account_non_locked, credentials_non_expired)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		acc.Name, acc.Username, acc.Email, acc.PasswordHash, string(acc.Role),
		acc.Enabled, acc.AccountNonExpired, acc.AccountNonLocked, acc.CredentialsNonExpired,
	).Scan(&acc.ID, &acc.CreatedAt)

	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %s", common.ErrAccountExists, dbx.ConstraintName(err))
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return acc, nil
}

func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	query := `
		SELECT id, name, username, email, password_hash, role,
			enabled, account_non_expired, account_non_locked, credentials_non_expired, created_at
		FROM accounts
		WHERE email = $1
	`
	acc := &models.Account{}
	var role string
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&acc.ID, &acc.Name, &acc.Username, &acc.Email, &acc.PasswordHash, &role,
		&acc.Enabled, &acc.AccountNonExpired, &acc.AccountNonLocked, &acc.CredentialsNonExpired, &acc.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrAccountNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	acc.Role = models.Role(role)

	return acc, nil
}

func (r *PostgresRepository) UpdatePasswordByEmail(ctx context.Context, email, passwordHash string) error {
	query := `
		UPDATE accounts SET password_hash = $1
		WHERE email = $2
	`
	res, err := r.db.ExecContext(ctx, query, passwordHash, email)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrAccountNotFound
	}
	return nil
}
