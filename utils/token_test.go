package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJwtGenerateAndValidate(t *testing.T) {
	token, err := JwtGenerate(42, "Aye Chan", "finance_manager", true)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	validated, err := JwtValidate(token)
	require.NoError(t, err)
	require.True(t, validated.Valid)

	claims, ok := validated.Claims.(*JwtCustomClaim)
	require.True(t, ok)
	assert.Equal(t, 42, claims.ID)
	assert.Equal(t, "Aye Chan", claims.Name)
	assert.Equal(t, "finance_manager", claims.Role)
	assert.True(t, claims.MustChangePassword)
	assert.Greater(t, claims.ExpiresAt, claims.IssuedAt)
}

func TestJwtValidateRejectsTamperedToken(t *testing.T) {
	token, err := JwtGenerate(1, "A", "viewer", false)
	require.NoError(t, err)

	_, err = JwtValidate(token + "x")
	assert.Error(t, err)
}

func TestHashTokenIsDeterministic(t *testing.T) {
	raw, err := RandomToken(32)
	require.NoError(t, err)
	require.Len(t, raw, 64)

	assert.Equal(t, HashToken(raw), HashToken(raw))
	assert.NotEqual(t, raw, HashToken(raw))
}
