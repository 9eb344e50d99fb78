package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/movieapi/internal/common"
	"github.com/dmitrijs2005/movieapi/internal/server/models"
	"github.com/dmitrijs2005/movieapi/internal/server/repositories/repomanager"
)

const (
	otpMin = 100000
	otpMax = 999999

	OtpMailSubject = "OTP for forgot password request"
)

// Notifier delivers a plain-text message to an email address.
type Notifier interface {
	Send(ctx context.Context, to, subject, body string) error
}

// PasswordHasher hashes and checks passwords.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hash string) bool
	VerifyDummy(plain string)
}

// OtpResetManager drives the forgot-password flow: mail a code, check the
// code, set a new password.
//
// ChangePassword does not require a previously verified code and a verified
// code stays usable until it expires or is replaced.
type OtpResetManager struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      PasswordHasher
	notifier    Notifier
	ttl         time.Duration
	options
}

func NewOtpResetManager(db *sql.DB, m repomanager.RepositoryManager, h PasswordHasher, n Notifier, ttl time.Duration, opts ...Option) *OtpResetManager {
	o := buildOptions(opts)
	o.logger = o.logger.With("module", "otp_reset")
	return &OtpResetManager{db: db, repomanager: m, hasher: h, notifier: n, ttl: ttl, options: o}
}

// RequestReset stores a fresh code for the account (replacing any previous
// one) and mails it. Delivery failures are logged, not returned; the stored
// code stays valid either way.
func (s *OtpResetManager) RequestReset(ctx context.Context, email string) error {
	acc, err := s.repomanager.Accounts(s.db).FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return err
	}

	code, err := common.RandIntInRange(otpMin, otpMax)
	if err != nil {
		return fmt.Errorf("error generating otp: %w", err)
	}

	_, err = s.repomanager.Otps(s.db).Upsert(ctx, &models.PasswordOtp{
		AccountID: acc.ID,
		Otp:       code,
		ExpiresAt: s.now().Add(s.ttl),
	})
	if err != nil {
		return fmt.Errorf("error storing otp: %w", err)
	}

	body := fmt.Sprintf("This is the OTP (One Time Password) for your forgot password request: %d", code)
	if err := s.notifier.Send(ctx, acc.Email, OtpMailSubject, body); err != nil {
		s.logger.Warn(ctx, "otp mail not delivered", "account_id", acc.ID, "error", err)
	}
	return nil
}

// VerifyOtp checks that otp is the account's current code and has not
// expired. An expired code is deleted.
func (s *OtpResetManager) VerifyOtp(ctx context.Context, email string, otp int) error {
	acc, err := s.repomanager.Accounts(s.db).FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return err
	}

	repo := s.repomanager.Otps(s.db)
	rec, err := repo.FindByAccountAndOtp(ctx, acc.ID, otp)
	if err != nil {
		return err
	}

	if rec.Expired(s.now()) {
		if err := repo.Delete(ctx, rec.ID); err != nil {
			s.logger.Warn(ctx, "failed to delete expired otp", "account_id", acc.ID, "error", err)
		}
		return common.ErrOtpExpired
	}
	return nil
}

// ChangePassword sets a new password when both entries match after trimming.
func (s *OtpResetManager) ChangePassword(ctx context.Context, email, password, repeatPassword string) error {
	password = strings.TrimSpace(password)
	if password != strings.TrimSpace(repeatPassword) {
		return common.ErrPasswordMismatch
	}
	if err := validatePassword(password); err != nil {
		return err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return err
	}
	return s.repomanager.Accounts(s.db).UpdatePasswordByEmail(ctx, normalizeEmail(email), hash)
}
