package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/lynnxiaofeng/parkyoga/internal/domain"
	"github.com/lynnxiaofeng/parkyoga/internal/ports"
)

var _ ports.AuthAPI = Client{}

func (c Client) Register(ctx context.Context, req ports.Registration) error {
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/users/register",
		body: registerRequest{
			Username: req.Username,
			Email:    req.Email,
			Password: req.Password,
			IsAdmin:  req.IsAdmin,
		},
		fallback: "Registration failed",
	}, nil)
	if err != nil {
		return fmt.Errorf("register user: %w", err)
	}
	return nil
}

func (c Client) Login(ctx context.Context, email, password string) (ports.LoginResult, error) {
	var payload loginResponse
	err := c.do(ctx, request{
		method:     http.MethodPost,
		path:       "/users/login",
		body:       loginRequest{Email: email, Password: password},
		fallback:   "Login failed",
		jsonErrors: true,
	}, &payload)
	if err != nil {
		return ports.LoginResult{}, fmt.Errorf("login: %w", err)
	}
	if payload.Token == "" {
		return ports.LoginResult{}, fmt.Errorf("login: %w", errors.Join(domain.ErrInvalidResponse, errors.New("response missing token")))
	}

	result := ports.LoginResult{Token: payload.Token}
	if payload.User != nil {
		result.User = payload.User.toDomain()
	}
	return result, nil
}
