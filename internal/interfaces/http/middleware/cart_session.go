package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	cartapp "github.com/lateleria/storefront/internal/application/cart"
	"github.com/lateleria/storefront/internal/infrastructure/logger"
)

const (
	// CartSessionKey is the gin context key holding the shopper's cart session.
	CartSessionKey = "cart_session"
	// CartSessionHeader lets non-browser clients carry the session without cookies.
	CartSessionHeader = "X-Cart-Session"
)

// CartSessionConfig configures the cart session cookie.
type CartSessionConfig struct {
	CookieName string
	MaxAge     time.Duration
	Secure     bool
}

// DefaultCartSessionConfig returns a 30-day, non-secure cookie named "cart_session".
func DefaultCartSessionConfig() CartSessionConfig {
	return CartSessionConfig{
		CookieName: "cart_session",
		MaxAge:     30 * 24 * time.Hour,
	}
}

// CartSession resolves the shopper's cart session from the cookie or the
// X-Cart-Session header, issuing a fresh one when neither holds a valid id.
// The cookie is refreshed on every request so active carts do not expire.
func CartSession(cfg CartSessionConfig) gin.HandlerFunc {
	if cfg.CookieName == "" {
		cfg.CookieName = DefaultCartSessionConfig().CookieName
	}

	return func(c *gin.Context) {
		session := resolveCartSession(c, cfg.CookieName)

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(cfg.CookieName, session, int(cfg.MaxAge.Seconds()), "/", "", cfg.Secure, true)
		c.Header(CartSessionHeader, session)

		c.Set(CartSessionKey, session)
		c.Request = c.Request.WithContext(logger.WithCartSession(c.Request.Context(), session))
		c.Next()
	}
}

func resolveCartSession(c *gin.Context, cookieName string) string {
	if v, err := c.Cookie(cookieName); err == nil && cartapp.IsValidSessionID(v) {
		return v
	}
	if v := c.GetHeader(CartSessionHeader); cartapp.IsValidSessionID(v) {
		return v
	}
	return cartapp.NewSessionID()
}

// GetCartSession returns the session resolved by CartSession.
func GetCartSession(c *gin.Context) (string, bool) {
	session := c.GetString(CartSessionKey)
	return session, session != ""
}
