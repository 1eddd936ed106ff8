package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lateleria/storefront/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:                 "test-secret-key-at-least-32-chars",
		RefreshSecret:          "test-refresh-secret-key-32-chars",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "la-teleria-test",
		MaxRefreshCount:        10,
	}
}

func newTestInput() GenerateTokenInput {
	return GenerateTokenInput{
		UserID:   uuid.New(),
		Username: "admin",
	}
}

func TestNewJWTService_UsesSecretForRefreshIfNotProvided(t *testing.T) {
	cfg := config.JWTConfig{Secret: "test-secret"}

	svc := NewJWTService(cfg)

	assert.Equal(t, []byte(cfg.Secret), svc.refreshSecret)
}

func TestGenerateTokenPair(t *testing.T) {
	svc := NewJWTService(testJWTConfig())

	pair, err := svc.GenerateTokenPair(newTestInput())

	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.True(t, pair.RefreshTokenExpiresAt.After(pair.AccessTokenExpiresAt))
}

func TestValidateAccessToken_Success(t *testing.T) {
	svc := NewJWTService(testJWTConfig())
	input := newTestInput()

	pair, err := svc.GenerateTokenPair(input)
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(pair.AccessToken)

	require.NoError(t, err)
	assert.Equal(t, input.UserID.String(), claims.UserID)
	assert.Equal(t, "admin", claims.Username)
	assert.Equal(t, TokenTypeAccess, claims.TokenType)
	assert.NotEmpty(t, claims.ID)

	id, err := claims.GetUserUUID()
	require.NoError(t, err)
	assert.Equal(t, input.UserID, id)
	assert.InDelta(t, (15 * time.Minute).Seconds(), claims.GetRemainingTTL().Seconds(), 5)
}

func TestValidateAccessToken_ExpiredToken(t *testing.T) {
	svc := NewJWTService(testJWTConfig())
	svc.now = func() time.Time { return time.Now().Add(-time.Hour) }
	pair, err := svc.GenerateTokenPair(newTestInput())
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.ValidateAccessToken(pair.AccessToken)

	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateAccessToken_InvalidToken(t *testing.T) {
	svc := NewJWTService(testJWTConfig())

	_, err := svc.ValidateAccessToken("invalid-token")

	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateAccessToken_DifferentSecret(t *testing.T) {
	pair, err := NewJWTService(testJWTConfig()).GenerateTokenPair(newTestInput())
	require.NoError(t, err)

	other := testJWTConfig()
	other.Secret = "another-secret-key-at-least-32-chars"
	_, err = NewJWTService(other).ValidateAccessToken(pair.AccessToken)

	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_WrongTokenType(t *testing.T) {
	cfg := testJWTConfig()
	cfg.RefreshSecret = cfg.Secret
	svc := NewJWTService(cfg)

	pair, err := svc.GenerateTokenPair(newTestInput())
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidTokenType)

	_, err = svc.ValidateRefreshToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidTokenType)

	_, err = svc.RefreshTokenPair(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidTokenType)
}

func TestRefreshTokenPair_IncrementsRefreshCount(t *testing.T) {
	svc := NewJWTService(testJWTConfig())
	input := newTestInput()

	pair, err := svc.GenerateTokenPair(input)
	require.NoError(t, err)

	for want := 1; want <= 2; want++ {
		next, err := svc.RefreshTokenPair(pair.RefreshToken)
		require.NoError(t, err)
		assert.NotEqual(t, pair.AccessToken, next.AccessToken)

		claims, err := svc.ValidateRefreshToken(next.RefreshToken)
		require.NoError(t, err)
		assert.Equal(t, want, claims.RefreshCount)
		assert.Equal(t, "admin", claims.Username)
		pair = next
	}
}

func TestRefreshTokenPair_MaxRefreshExceeded(t *testing.T) {
	cfg := testJWTConfig()
	cfg.MaxRefreshCount = 2
	svc := NewJWTService(cfg)

	pair, err := svc.GenerateTokenPair(newTestInput())
	require.NoError(t, err)

	pair, err = svc.RefreshTokenPair(pair.RefreshToken)
	require.NoError(t, err)
	pair, err = svc.RefreshTokenPair(pair.RefreshToken)
	require.NoError(t, err)

	_, err = svc.RefreshTokenPair(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrMaxRefreshExceeded)
}
