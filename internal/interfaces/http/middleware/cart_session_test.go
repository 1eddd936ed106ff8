package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lateleria/storefront/internal/infrastructure/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCartSessionRouter(cfg CartSessionConfig, seen *string, ctxSeen *string) *gin.Engine {
	r := gin.New()
	r.Use(CartSession(cfg))
	r.GET("/api/carrito", func(c *gin.Context) {
		*seen, _ = GetCartSession(c)
		*ctxSeen = logger.GetCartSession(c.Request.Context())
		c.Status(http.StatusOK)
	})
	return r
}

func TestCartSession(t *testing.T) {
	existing := uuid.NewString()

	t.Run("issues a new session", func(t *testing.T) {
		var seen, ctxSeen string
		r := newCartSessionRouter(DefaultCartSessionConfig(), &seen, &ctxSeen)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/carrito", nil))

		require.Equal(t, http.StatusOK, w.Code)
		_, err := uuid.Parse(seen)
		require.NoError(t, err)
		assert.Equal(t, seen, ctxSeen)
		assert.Equal(t, seen, w.Header().Get(CartSessionHeader))

		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, "cart_session", cookies[0].Name)
		assert.Equal(t, seen, cookies[0].Value)
		assert.True(t, cookies[0].HttpOnly)
		assert.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)
		assert.Equal(t, int((30 * 24 * time.Hour).Seconds()), cookies[0].MaxAge)
	})

	t.Run("reuses the cookie", func(t *testing.T) {
		var seen, ctxSeen string
		r := newCartSessionRouter(DefaultCartSessionConfig(), &seen, &ctxSeen)

		req := httptest.NewRequest(http.MethodGet, "/api/carrito", nil)
		req.AddCookie(&http.Cookie{Name: "cart_session", Value: existing})
		r.ServeHTTP(httptest.NewRecorder(), req)

		assert.Equal(t, existing, seen)
	})

	t.Run("falls back to the header", func(t *testing.T) {
		var seen, ctxSeen string
		r := newCartSessionRouter(DefaultCartSessionConfig(), &seen, &ctxSeen)

		req := httptest.NewRequest(http.MethodGet, "/api/carrito", nil)
		req.Header.Set(CartSessionHeader, existing)
		r.ServeHTTP(httptest.NewRecorder(), req)

		assert.Equal(t, existing, seen)
	})

	t.Run("replaces a malformed session", func(t *testing.T) {
		var seen, ctxSeen string
		r := newCartSessionRouter(DefaultCartSessionConfig(), &seen, &ctxSeen)

		req := httptest.NewRequest(http.MethodGet, "/api/carrito", nil)
		req.AddCookie(&http.Cookie{Name: "cart_session", Value: "../../etc/passwd"})
		r.ServeHTTP(httptest.NewRecorder(), req)

		assert.NotEqual(t, "../../etc/passwd", seen)
		_, err := uuid.Parse(seen)
		assert.NoError(t, err)
	})

	t.Run("custom cookie settings", func(t *testing.T) {
		var seen, ctxSeen string
		r := newCartSessionRouter(CartSessionConfig{CookieName: "lt_cart", MaxAge: time.Hour, Secure: true}, &seen, &ctxSeen)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/carrito", nil))

		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, "lt_cart", cookies[0].Name)
		assert.True(t, cookies[0].Secure)
		assert.Equal(t, 3600, cookies[0].MaxAge)
	})
}
