package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lateleria/storefront/internal/application/identity"
	"github.com/lateleria/storefront/internal/infrastructure/auth"
	"github.com/lateleria/storefront/internal/infrastructure/config"
	"github.com/lateleria/storefront/internal/infrastructure/persistence"
	"github.com/lateleria/storefront/internal/interfaces/http/dto"
	"github.com/lateleria/storefront/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testAdminUser     = "admin"
	testAdminPassword = "lino2024seguro"
)

func newAuthRouter(t *testing.T) *gin.Engine {
	t.Helper()
	env := newStoreEnv(t)

	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-access-secret-0123456789abcdef",
		RefreshSecret:          "test-refresh-secret-0123456789abcdef",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: time.Hour,
		Issuer:                 "lateleria-test",
		MaxRefreshCount:        3,
	})
	blacklist := auth.NewInMemoryTokenBlacklist()
	authService := identity.NewAuthService(persistence.NewGormAdminUserRepository(env.db), jwtService, blacklist, zap.NewNop())
	created, err := authService.EnsureBootstrapAdmin(t.Context(), testAdminUser, testAdminPassword)
	require.NoError(t, err)
	require.True(t, created)

	h := NewAuthHandler(authService)
	r := gin.New()
	r.Use(middleware.RequestID())
	r.POST("/auth/login", h.Login)
	r.POST("/auth/refresh", h.RefreshToken)

	protected := r.Group("/auth", middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: blacklist,
	}))
	protected.POST("/logout", h.Logout)
	protected.GET("/me", h.GetCurrentUser)
	protected.PUT("/password", h.ChangePassword)
	return r
}

func login(t *testing.T, r *gin.Engine, username, password string) LoginResponse {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/auth/login", map[string]string{"username": username, "password": password})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp LoginResponse
	decodeEnvelope(t, w, &resp)
	return resp
}

func bearer(token string) []string {
	return []string{"Authorization", "Bearer " + token}
}

func TestAuthHandler_Login(t *testing.T) {
	r := newAuthRouter(t)

	resp := login(t, r, testAdminUser, testAdminPassword)
	assert.NotEmpty(t, resp.Token.AccessToken)
	assert.NotEmpty(t, resp.Token.RefreshToken)
	assert.Equal(t, "Bearer", resp.Token.TokenType)
	assert.Equal(t, testAdminUser, resp.User.Username)
	assert.NotNil(t, resp.User.LastLoginAt)

	tests := []struct {
		name       string
		body       map[string]string
		wantStatus int
		wantCode   string
	}{
		{name: "wrong password", body: map[string]string{"username": testAdminUser, "password": "otra-clave1"}, wantStatus: http.StatusUnauthorized, wantCode: "INVALID_CREDENTIALS"},
		{name: "unknown user", body: map[string]string{"username": "nadie", "password": testAdminPassword}, wantStatus: http.StatusUnauthorized, wantCode: "INVALID_CREDENTIALS"},
		{name: "missing password", body: map[string]string{"username": testAdminUser}, wantStatus: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, r, http.MethodPost, "/auth/login", tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)
			env := decodeEnvelope(t, w, nil)
			assert.False(t, env.Success)
			require.NotNil(t, env.Error)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, env.Error.Code)
			}
		})
	}
}

func TestAuthHandler_MeAndLogout(t *testing.T) {
	r := newAuthRouter(t)
	tokens := login(t, r, testAdminUser, testAdminPassword)

	w := doJSON(t, r, http.MethodGet, "/auth/me", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, r, http.MethodGet, "/auth/me", nil, bearer(tokens.Token.AccessToken)...)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var me AdminUserResponse
	decodeEnvelope(t, w, &me)
	assert.Equal(t, tokens.User.ID, me.ID)

	w = doJSON(t, r, http.MethodPost, "/auth/logout", nil, bearer(tokens.Token.AccessToken)...)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/auth/me", nil, bearer(tokens.Token.AccessToken)...)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	env := decodeEnvelope(t, w, nil)
	require.NotNil(t, env.Error)
	assert.Equal(t, dto.ErrCodeTokenInvalid, env.Error.Code)
}

func TestAuthHandler_Refresh(t *testing.T) {
	r := newAuthRouter(t)
	tokens := login(t, r, testAdminUser, testAdminPassword)

	w := doJSON(t, r, http.MethodPost, "/auth/refresh", map[string]string{"refreshToken": tokens.Token.RefreshToken})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var refreshed RefreshTokenResponse
	decodeEnvelope(t, w, &refreshed)
	assert.NotEmpty(t, refreshed.Token.AccessToken)

	// access tokens are not accepted as refresh tokens
	w = doJSON(t, r, http.MethodPost, "/auth/refresh", map[string]string{"refreshToken": tokens.Token.AccessToken})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, r, http.MethodPost, "/auth/refresh", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandler_ChangePassword(t *testing.T) {
	r := newAuthRouter(t)
	tokens := login(t, r, testAdminUser, testAdminPassword)
	headers := bearer(tokens.Token.AccessToken)

	w := doJSON(t, r, http.MethodPut, "/auth/password", map[string]string{
		"oldPassword": "incorrecta1",
		"newPassword": "nuevaClave99",
	}, headers...)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, r, http.MethodPut, "/auth/password", map[string]string{
		"oldPassword": testAdminPassword,
		"newPassword": "corta",
	}, headers...)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodPut, "/auth/password", map[string]string{
		"oldPassword": testAdminPassword,
		"newPassword": "nuevaClave99",
	}, headers...)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	login(t, r, testAdminUser, "nuevaClave99")
	w = doJSON(t, r, http.MethodPost, "/auth/login", map[string]string{"username": testAdminUser, "password": testAdminPassword})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
