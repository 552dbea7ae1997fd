package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/rentaldesk/internal/auth/domain"
	"github.com/smallbiznis/rentaldesk/internal/auth/password"
	"github.com/smallbiznis/rentaldesk/internal/auth/token"
	"github.com/smallbiznis/rentaldesk/internal/clock"
	"github.com/smallbiznis/rentaldesk/internal/config"
	"github.com/smallbiznis/rentaldesk/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const tokenType = "Bearer"

type Params struct {
	fx.In

	Log    *zap.Logger
	Repo   domain.Repository
	GenID  *snowflake.Node
	Clock  clock.Clock
	Config config.Config
}

type Service struct {
	log    *zap.Logger
	repo   domain.Repository
	genID  *snowflake.Node
	clock  clock.Clock
	tokens *token.Issuer
}

func New(p Params) (domain.Service, error) {
	log := p.Log.Named("auth.service")

	secret := []byte(p.Config.Auth.JWTSecret)
	if len(secret) == 0 {
		if p.Config.IsProduction() {
			return nil, token.ErrMissingSecret
		}
		// Tokens will not survive a restart.
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, err
		}
		log.Warn("AUTH_JWT_SECRET not set, using an ephemeral signing key")
	}

	issuer, err := token.NewIssuer(secret, p.Config.Auth.TokenTTL, p.Config.AppName, p.Clock)
	if err != nil {
		return nil, err
	}
	return &Service{
		log:    log,
		repo:   p.Repo,
		genID:  p.GenID,
		clock:  p.Clock,
		tokens: issuer,
	}, nil
}

func (s *Service) EnsureAdmin(ctx context.Context, req domain.CreateAdminRequest) (*domain.AdminUser, bool, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, false, err
	}
	if len(req.Password) < password.MinLength {
		return nil, false, domain.ErrWeakPassword
	}

	existing, err := s.repo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return existing, false, nil
	case !errors.Is(err, domain.ErrUserNotFound):
		return nil, false, err
	}

	hashed, err := password.Hash(req.Password)
	if err != nil {
		return nil, false, fmt.Errorf("hash password: %w", err)
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}
	now := s.clock.Now().UTC()
	user := &domain.AdminUser{
		ID:           s.genID.Generate(),
		Email:        email,
		Name:         name,
		PasswordHash: hashed,
		Role:         domain.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, false, domain.ErrUserExists
		}
		return nil, false, err
	}
	return user, true, nil
}

func (s *Service) Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResult, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil || req.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if !password.Verify(req.Password, user.PasswordHash) {
		s.log.Info("admin login rejected", zap.String("admin_id", user.ID.String()))
		return nil, domain.ErrInvalidCredentials
	}

	raw, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	if err := s.repo.UpdateFields(ctx, user.ID, map[string]any{
		"last_login_at": now,
		"updated_at":    now,
	}); err != nil {
		s.log.Warn("failed to record admin login", zap.String("admin_id", user.ID.String()), zap.Error(err))
	} else {
		user.LastLoginAt = &now
	}

	return &domain.LoginResult{
		Token:     raw,
		TokenType: tokenType,
		ExpiresAt: expiresAt,
		User:      user,
	}, nil
}

func (s *Service) Authenticate(ctx context.Context, rawToken string) (*domain.Claims, error) {
	rawToken = strings.TrimSpace(rawToken)
	if rawToken == "" {
		return nil, domain.ErrInvalidToken
	}
	claims, err := s.tokens.Parse(rawToken)
	if err != nil {
		return nil, err
	}
	if claims.Role != domain.RoleAdmin {
		return nil, domain.ErrInvalidToken
	}
	return claims, nil
}

func (s *Service) Me(ctx context.Context, claims domain.Claims) (*domain.AdminUser, error) {
	user, err := s.repo.FindByID(ctx, claims.AdminID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidToken
		}
		return nil, err
	}
	return user, nil
}

func normalizeEmail(value string) (string, error) {
	trimmed := strings.ToLower(strings.TrimSpace(value))
	if trimmed == "" {
		return "", domain.ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(trimmed)
	if err != nil || addr.Address != trimmed {
		return "", domain.ErrInvalidEmail
	}
	return trimmed, nil
}
