// Package models defines server-side data models persisted in the database.
package models

import (
	"time"

	"github.com/dmitrijs2005/movieapi/internal/common"
)

// Role is the authority granted to an account. It is fixed at creation.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Account is a registered user. Email is the identity key for every
// authentication flow.
type Account struct {
	ID           string
	Name         string
	Username     string
	Email        string
	PasswordHash string
	Role         Role

	Enabled               bool
	AccountNonExpired     bool
	AccountNonLocked      bool
	CredentialsNonExpired bool

	CreatedAt time.Time
}

// NewAccount returns an active account with the given role.
func NewAccount(name, username, email, passwordHash string, role Role) *Account {
	return &Account{
		Name:                  name,
		Username:              username,
		Email:                 email,
		PasswordHash:          passwordHash,
		Role:                  role,
		Enabled:               true,
		AccountNonExpired:     true,
		AccountNonLocked:      true,
		CredentialsNonExpired: true,
	}
}

// CheckStatus returns the sentinel for the first status flag that forbids
// authentication, or nil.
func (a *Account) CheckStatus() error {
	switch {
	case !a.AccountNonLocked:
		return common.ErrAccountLocked
	case !a.Enabled:
		return common.ErrAccountDisabled
	case !a.AccountNonExpired:
		return common.ErrAccountExpired
	case !a.CredentialsNonExpired:
		return common.ErrCredentialsExpired
	}
	return nil
}
