package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	tokens := NewTokenService(testAuthConfig())
	owner := uuid.New()

	token, expiresAt, err := tokens.GenerateToken(owner)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	claims, err := tokens.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, owner, claims.OwnerID)
	assert.Equal(t, owner.String(), claims.Subject)
}

func TestTokenRejections(t *testing.T) {
	tokens := NewTokenService(testAuthConfig())

	otherCfg := testAuthConfig()
	otherCfg.JWTSecret = "another-secret-another-secret-000"
	forged, _, err := NewTokenService(otherCfg).GenerateToken(uuid.New())
	require.NoError(t, err)

	expiredCfg := testAuthConfig()
	expiredCfg.TokenTTL = -time.Minute
	expired, _, err := NewTokenService(expiredCfg).GenerateToken(uuid.New())
	require.NoError(t, err)

	foreignCfg := testAuthConfig()
	foreignCfg.Issuer = "someone-else"
	foreign, _, err := NewTokenService(foreignCfg).GenerateToken(uuid.New())
	require.NoError(t, err)

	for name, token := range map[string]string{
		"garbage":      "not.a.token",
		"wrong secret": forged,
		"expired":      expired,
		"wrong issuer": foreign,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := tokens.ValidateToken(token)
			assert.Error(t, err)
		})
	}
}
