package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	m := NewManager("secret", time.Hour, "test-issuer")

	token, err := m.GenerateToken("u1", "ada")
	require.NoError(t, err)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Subject)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "ada", claims.Username)
	assert.Equal(t, "test-issuer", claims.Issuer)
}

func TestValidateWrongSecret(t *testing.T) {
	token, err := NewManager("secret-a", time.Hour, "test").GenerateToken("u1", "ada")
	require.NoError(t, err)

	_, err = NewManager("secret-b", time.Hour, "test").ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateExpired(t *testing.T) {
	m := NewManager("secret", -time.Minute, "test")

	token, err := m.GenerateToken("u1", "ada")
	require.NoError(t, err)

	_, err = m.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}
