package domain

import (
	"context"
	"time"
)

type Service interface {
	// EnsureAdmin creates the account when no admin with that email exists.
	// The boolean reports whether a record was created.
	EnsureAdmin(ctx context.Context, req CreateAdminRequest) (*AdminUser, bool, error)
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
	Authenticate(ctx context.Context, rawToken string) (*Claims, error)
	Me(ctx context.Context, claims Claims) (*AdminUser, error)
}

type CreateAdminRequest struct {
	Email    string
	Name     string
	Password string
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResult struct {
	Token     string     `json:"token"`
	TokenType string     `json:"token_type"`
	ExpiresAt time.Time  `json:"expires_at"`
	User      *AdminUser `json:"user"`
}
