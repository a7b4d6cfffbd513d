package account

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/eduforge/coursepay/pkg/config"
	"github.com/eduforge/coursepay/pkg/types"
)

func testTokenManager(ttl time.Duration) *TokenManager {
	return NewTokenManager(&config.Config{
		Auth: config.AuthConfig{JWTSecret: "test-secret", TokenTTL: ttl},
	})
}

func TestTokenManager_SignParseRoundTrip(t *testing.T) {
	m := testTokenManager(time.Hour)

	token, expiresAt, err := m.Sign("user-1", types.UserRoleInstructor)
	require.NoError(t, err)
	require.True(t, expiresAt.After(time.Now()))

	claims, err := m.Parse(token)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.UserID)
	require.Equal(t, types.UserRoleInstructor, claims.Role)
}

func TestTokenManager_RejectsWrongSecret(t *testing.T) {
	m := testTokenManager(time.Hour)
	token, _, err := m.Sign("user-1", types.UserRoleStudent)
	require.NoError(t, err)

	other := NewTokenManager(&config.Config{
		Auth: config.AuthConfig{JWTSecret: "another-secret", TokenTTL: time.Hour},
	})
	_, err = other.Parse(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_RejectsExpired(t *testing.T) {
	m := testTokenManager(time.Hour)
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, _, err := m.Sign("user-1", types.UserRoleStudent)
	require.NoError(t, err)

	_, err = m.Parse(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_RejectsGarbage(t *testing.T) {
	m := testTokenManager(time.Hour)
	_, err := m.Parse("not-a-token")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_EmptySecret(t *testing.T) {
	m := NewTokenManager(&config.Config{})
	_, _, err := m.Sign("user-1", types.UserRoleStudent)
	require.Error(t, err)
}
