package admin

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/movieapi/internal/server/models"
	"github.com/dmitrijs2005/movieapi/internal/server/services"
)

var ErrPasswordsDiffer = errors.New("passwords do not match")

// AccountCreator is satisfied by *server.App.
type AccountCreator interface {
	CreateAccount(ctx context.Context, req services.RegisterRequest, role models.Role) (*models.Account, error)
}

// ReadRegistration asks for the account fields. The password is entered twice.
func ReadRegistration(p *Prompter) (services.RegisterRequest, error) {
	var req services.RegisterRequest
	var err error

	if req.Name, err = p.Text("Enter name"); err != nil {
		return req, err
	}
	if req.Email, err = p.Text("Enter email"); err != nil {
		return req, err
	}
	if req.Username, err = p.Text("Enter username"); err != nil {
		return req, err
	}
	if req.Password, err = p.Password("Enter password"); err != nil {
		return req, err
	}
	repeat, err := p.Password("Repeat password")
	if err != nil {
		return req, err
	}
	if repeat != req.Password {
		return req, ErrPasswordsDiffer
	}
	return req, nil
}

// CreateAdmin prompts for the account fields and stores an ADMIN account.
func CreateAdmin(ctx context.Context, c AccountCreator, p *Prompter) (*models.Account, error) {
	req, err := ReadRegistration(p)
	if err != nil {
		return nil, err
	}
	acc, err := c.CreateAccount(ctx, req, models.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("create admin: %w", err)
	}
	fmt.Fprintf(p.out, "Admin %s created (id %s)\n", acc.Email, acc.ID)
	return acc, nil
}
