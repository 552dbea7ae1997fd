// Package token issues and verifies HS256 admin access tokens.
package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/golang-jwt/jwt/v5"
	"github.com/smallbiznis/rentaldesk/internal/auth/domain"
	"github.com/smallbiznis/rentaldesk/internal/clock"
)

const tokenUse = "access"

var ErrMissingSecret = errors.New("missing_jwt_secret")

type claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Role  string `json:"role"`
	Use   string `json:"token_use"`
}

type Issuer struct {
	secret []byte
	ttl    time.Duration
	issuer string
	clock  clock.Clock
}

func NewIssuer(secret []byte, ttl time.Duration, issuer string, clk clock.Clock) (*Issuer, error) {
	if len(secret) == 0 {
		return nil, ErrMissingSecret
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if clk == nil {
		clk = clock.SystemClock{}
	}
	return &Issuer{secret: secret, ttl: ttl, issuer: issuer, clock: clk}, nil
}

// Issue signs a token for user, returning the token and its expiry.
func (i *Issuer) Issue(user *domain.AdminUser) (string, time.Time, error) {
	now := i.clock.Now().UTC()
	expiresAt := now.Add(i.ttl)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			Issuer:    i.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Email: user.Email,
		Role:  user.Role,
		Use:   tokenUse,
	})
	signed, err := tok.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Parse verifies raw and returns its claims. Every failure maps to
// domain.ErrInvalidToken.
func (i *Issuer) Parse(raw string) (*domain.Claims, error) {
	var parsed claims
	_, err := jwt.ParseWithClaims(raw, &parsed, func(t *jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.clock.Now),
		jwt.WithIssuer(i.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}
	if parsed.Use != tokenUse {
		return nil, domain.ErrInvalidToken
	}

	id, err := strconv.ParseInt(parsed.Subject, 10, 64)
	if err != nil || id <= 0 {
		return nil, domain.ErrInvalidToken
	}
	return &domain.Claims{
		AdminID:   snowflake.ID(id),
		Email:     parsed.Email,
		Role:      parsed.Role,
		ExpiresAt: parsed.ExpiresAt.Time,
	}, nil
}
