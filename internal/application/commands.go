package application

import (
	"fmt"
	"strings"

	"github.com/lynnxiaofeng/parkyoga/internal/domain"
)

type RegisterCommand struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
	// RequestedAdmin is advisory only; accounts are always created
	// without privileges.
	RequestedAdmin bool
}

func (c RegisterCommand) Validate() error {
	if strings.TrimSpace(c.Username) == "" || strings.TrimSpace(c.Email) == "" || c.Password == "" || c.ConfirmPassword == "" {
		return fmt.Errorf("%w: please fill in all fields", domain.ErrValidation)
	}
	if c.Password != c.ConfirmPassword {
		return fmt.Errorf("%w: passwords do not match", domain.ErrValidation)
	}
	return nil
}

type LoginCommand struct {
	Email    string
	Password string
}

func (c LoginCommand) Validate() error {
	if strings.TrimSpace(c.Email) == "" || c.Password == "" {
		return fmt.Errorf("%w: please fill in all fields", domain.ErrValidation)
	}
	return nil
}
