package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telesales/callops-service/internal/auth"
	"github.com/telesales/callops-service/internal/domain"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := auth.NewTokenManager("secret", 60)

	token, expiresAt, err := tm.GenerateToken("user-1", domain.RoleSupervisor)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.False(t, expiresAt.IsZero())

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, domain.RoleSupervisor, claims.Role)
}

func TestTokenRejectsWrongSecret(t *testing.T) {
	tm := auth.NewTokenManager("secret", 60)
	other := auth.NewTokenManager("different", 60)

	token, _, err := tm.GenerateToken("user-1", domain.RoleOperator)
	require.NoError(t, err)

	_, err = other.ParseToken(token)
	require.Error(t, err)
}

func TestTokenRejectsGarbage(t *testing.T) {
	tm := auth.NewTokenManager("secret", 60)
	_, err := tm.ParseToken("not-a-token")
	require.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := auth.HashPassword("segredo1", 4)
	require.NoError(t, err)
	assert.NotEqual(t, "segredo1", hash)

	require.NoError(t, auth.ComparePassword(hash, "segredo1"))
	require.Error(t, auth.ComparePassword(hash, "errada"))
}
