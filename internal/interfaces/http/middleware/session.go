// internal/interfaces/http/middleware/session.go
package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/your-org/fashion-store/internal/config"
	"github.com/your-org/fashion-store/internal/domain/cart"
)

const sessionKey = "session"

// Session loads the browsing session named by the session cookie or header,
// starting a new one when the client has none, and saves it once the handler
// returns.
func Session(store cart.SessionStore, cfg config.SessionConfig, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(cfg.HeaderName)
		if id == "" {
			if cookie, err := c.Cookie(cfg.CookieName); err == nil {
				id = cookie
			}
		}
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}

		sess, err := store.Load(c.Request.Context(), id)
		if err != nil {
			logger.WithError(err).WithField("session_id", id).Error("Failed to load session")
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"error": "Session store unavailable",
			})
			return
		}

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(cfg.CookieName, id, int(cfg.TTL.Seconds()), "/", "", cfg.Secure, true)
		c.Header(cfg.HeaderName, id)
		c.Set(sessionKey, sess)

		c.Next()

		// The request context may already have timed out.
		if err := store.Save(context.WithoutCancel(c.Request.Context()), sess); err != nil {
			logger.WithError(err).WithField("session_id", id).Error("Failed to save session")
		}
	}
}

// GetSession returns the session attached by Session
func GetSession(c *gin.Context) (*cart.Session, bool) {
	v, exists := c.Get(sessionKey)
	if !exists {
		return nil, false
	}
	sess, ok := v.(*cart.Session)
	return sess, ok && sess != nil
}
