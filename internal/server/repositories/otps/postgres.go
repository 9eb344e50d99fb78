package otps

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

// Upsert relies on the unique account_id constraint, so concurrent requests
// for the same account still leave a single row.
func (r *PostgresRepository) Upsert(ctx context.Context, otp *models.PasswordOtp) (*models.PasswordOtp, error) {
	query := `
		INSERT INTO password_otps (account_id, otp, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (account_id) DO UPDATE
		SET otp = EXCLUDED.otp, expires_at = EXCLUDED.expires_at
		RETURNING id
	`
	if err := r.db.QueryRowContext(ctx, query, otp.AccountID, otp.Otp, otp.ExpiresAt).Scan(&otp.ID); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return otp, nil
}

func (r *PostgresRepository) FindByAccountAndOtp(ctx context.Context, accountID string, otp int) (*models.PasswordOtp, error) {
	query := `
		SELECT id, account_id, otp, expires_at
		FROM password_otps
		WHERE account_id = $1 AND otp = $2
	`
	o := &models.PasswordOtp{}
	err := r.db.QueryRowContext(ctx, query, accountID, otp).Scan(&o.ID, &o.AccountID, &o.Otp, &o.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrOtpMismatch
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return o, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := `
		DELETE FROM password_otps
		WHERE id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
