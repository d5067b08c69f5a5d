package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTAdapter_IssueAndVerify(t *testing.T) {
	adapter := NewJWTAdapter("test-secret")

	token, err := adapter.Issue("user-123", "u@example.com", 24*time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := adapter.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", userID)
}

func TestJWTAdapter_Issue_claims(t *testing.T) {
	secret := "test-secret"
	adapter := NewJWTAdapter(secret)

	token, err := adapter.Issue("user-123", "u@example.com", time.Hour)
	require.NoError(t, err)

	parsed, err := jwt.ParseWithClaims(token, &jwtClaims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)
	claims, ok := parsed.Claims.(*jwtClaims)
	require.True(t, ok)
	assert.Equal(t, "user-123", claims.Subject)
	assert.Equal(t, "u@example.com", claims.Email)
}

func TestJWTAdapter_Verify_rejects(t *testing.T) {
	adapter := NewJWTAdapter("test-secret")

	t.Run("garbage", func(t *testing.T) {
		_, err := adapter.Verify("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewJWTAdapter("other-secret")
		token, err := other.Issue("user-123", "u@example.com", time.Hour)
		require.NoError(t, err)

		_, err = adapter.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		token, err := adapter.Issue("user-123", "u@example.com", -time.Minute)
		require.NoError(t, err)

		_, err = adapter.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
