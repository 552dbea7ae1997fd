package seed

import (
	"context"
	"errors"
	"strings"

	authdomain "github.com/smallbiznis/rentaldesk/internal/auth/domain"
	"github.com/smallbiznis/rentaldesk/internal/config"
	"go.uber.org/zap"
)

// EnsureAdmin creates the bootstrap admin from ADMIN_EMAIL and ADMIN_PASSWORD
// when both are set and no account with that email exists yet.
func EnsureAdmin(ctx context.Context, auth authdomain.Service, cfg config.AuthConfig, log *zap.Logger) error {
	if auth == nil {
		return errors.New("seed auth service is required")
	}
	email := strings.TrimSpace(cfg.AdminEmail)
	if email == "" || cfg.AdminPassword == "" {
		log.Info("admin seed skipped, ADMIN_EMAIL or ADMIN_PASSWORD not set")
		return nil
	}

	user, created, err := auth.EnsureAdmin(ctx, authdomain.CreateAdminRequest{
		Email:    email,
		Name:     cfg.AdminName,
		Password: cfg.AdminPassword,
	})
	if err != nil {
		return err
	}
	if created {
		log.Info("admin user seeded", zap.String("admin_id", user.ID.String()), zap.String("email", user.Email))
	}
	return nil
}
