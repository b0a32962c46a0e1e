package jwt_test

import (
	"testing"

	"reqflow/internal/pkg/jwt"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	accessSecret  = "test-access-secret"
	refreshSecret = "test-refresh-secret"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	userID := uuid.New()

	token, err := jwt.GenerateAccessToken(userID, "alice@example.com", "Alice Nguyen", "Manager", accessSecret, 15)
	require.NoError(t, err)

	claims, err := jwt.ValidateAccessToken(token, accessSecret)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, "Alice Nguyen", claims.FullName)
	assert.Equal(t, "Manager", claims.Role)
}

func TestAccessTokenWrongSecret(t *testing.T) {
	token, err := jwt.GenerateAccessToken(uuid.New(), "alice@example.com", "Alice Nguyen", "User", accessSecret, 15)
	require.NoError(t, err)

	_, err = jwt.ValidateAccessToken(token, "some-other-secret")
	assert.ErrorIs(t, err, jwt.ErrTokenInvalid)
}

func TestAccessTokenExpired(t *testing.T) {
	token, err := jwt.GenerateAccessToken(uuid.New(), "alice@example.com", "Alice Nguyen", "User", accessSecret, -1)
	require.NoError(t, err)

	_, err = jwt.ValidateAccessToken(token, accessSecret)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	userID := uuid.New()
	tokenID := uuid.New().String()

	token, err := jwt.GenerateRefreshToken(userID, tokenID, refreshSecret, 7)
	require.NoError(t, err)

	claims, err := jwt.ValidateRefreshToken(token, refreshSecret)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, tokenID, claims.TokenID)
}

func TestRefreshTokenIsNotAnAccessToken(t *testing.T) {
	token, err := jwt.GenerateRefreshToken(uuid.New(), uuid.New().String(), refreshSecret, 7)
	require.NoError(t, err)

	// Signed with the refresh secret, so the access secret must refuse it
	_, err = jwt.ValidateAccessToken(token, accessSecret)
	assert.ErrorIs(t, err, jwt.ErrTokenInvalid)
}

func TestGarbageToken(t *testing.T) {
	_, err := jwt.ValidateAccessToken("not.a.token", accessSecret)
	assert.ErrorIs(t, err, jwt.ErrTokenInvalid)

	_, err = jwt.ValidateRefreshToken("", refreshSecret)
	assert.ErrorIs(t, err, jwt.ErrTokenInvalid)
}
