package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tradeyard/backend/internal/config"
	"github.com/tradeyard/backend/internal/models"
)

func testService() *Service {
	return NewService(nil, &config.JWTConfig{
		Secret:             "test-secret-key-for-jwt-testing",
		Issuer:             "tradeyard",
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenExpiry: 7 * 24 * time.Hour,
	})
}

func testUser() *models.User {
	return &models.User{
		ID:          uuid.New(),
		Email:       "seller@example.com",
		UserType:    models.UserTypeSeller,
		DisplayName: "Test Seller",
	}
}

func TestGenerateTokenPairRoundTrip(t *testing.T) {
	svc := testService()
	user := testUser()

	pair, err := svc.generateTokenPair(user)
	require.NoError(t, err)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	claims, err := svc.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.UserID)
	assert.Equal(t, string(models.UserTypeSeller), claims.UserType)
	assert.Equal(t, user.Email, claims.Email)
	assert.Equal(t, "access", claims.Subject)
}

func TestValidateAccessTokenRejectsRefreshToken(t *testing.T) {
	svc := testService()

	pair, err := svc.generateTokenPair(testUser())
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateAccessTokenRejectsForeignSecret(t *testing.T) {
	svc := testService()
	other := NewService(nil, &config.JWTConfig{
		Secret:             "a-completely-different-secret",
		Issuer:             "tradeyard",
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenExpiry: 7 * 24 * time.Hour,
	})

	pair, err := other.generateTokenPair(testUser())
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateAccessTokenExpired(t *testing.T) {
	svc := NewService(nil, &config.JWTConfig{
		Secret:             "test-secret-key-for-jwt-testing",
		Issuer:             "tradeyard",
		AccessTokenExpiry:  -1 * time.Minute,
		RefreshTokenExpiry: 7 * 24 * time.Hour,
	})

	pair, err := svc.generateTokenPair(testUser())
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestGenerateJTIUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		jti := generateJTI()
		require.NotEmpty(t, jti)
		require.False(t, seen[jti], "duplicate JTI %s", jti)
		seen[jti] = true
	}
}
