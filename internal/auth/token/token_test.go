package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/smallbiznis/rentaldesk/internal/auth/domain"
	"github.com/smallbiznis/rentaldesk/internal/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParseRoundTrip(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	issuer, err := NewIssuer([]byte("secret"), time.Hour, "rentaldesk", clk)
	require.NoError(t, err)

	user := &domain.AdminUser{ID: 42, Email: "admin@rentals.test", Role: domain.RoleAdmin}
	raw, expiresAt, err := issuer.Issue(user)
	require.NoError(t, err)
	assert.Equal(t, clk.Now().Add(time.Hour), expiresAt)

	claims, err := issuer.Parse(raw)
	require.NoError(t, err)
	assert.EqualValues(t, 42, claims.AdminID)
	assert.Equal(t, "admin@rentals.test", claims.Email)
	assert.Equal(t, domain.RoleAdmin, claims.Role)

	clk.Advance(2 * time.Hour)
	_, err = issuer.Parse(raw)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestParseRejectsForeignTokens(t *testing.T) {
	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	issuer, err := NewIssuer([]byte("secret"), time.Hour, "rentaldesk", clk)
	require.NoError(t, err)
	other, err := NewIssuer([]byte("other"), time.Hour, "rentaldesk", clk)
	require.NoError(t, err)

	raw, _, err := other.Issue(&domain.AdminUser{ID: 1})
	require.NoError(t, err)
	_, err = issuer.Parse(raw)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "1"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = issuer.Parse(unsigned)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)

	_, err = issuer.Parse("garbage")
	assert.ErrorIs(t, err, domain.ErrInvalidToken)

	_, err = NewIssuer(nil, time.Hour, "rentaldesk", clk)
	assert.ErrorIs(t, err, ErrMissingSecret)
}
