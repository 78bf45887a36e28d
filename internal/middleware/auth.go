package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tooltag/tooltag-backend/internal/logger"
	"github.com/tooltag/tooltag-backend/internal/services"
)

// SessionCookie is the cookie name the admin session token travels in.
const SessionCookie = "tooltag_session"

// ContextAdminKey is where RequireAdmin stores the verified username.
const ContextAdminKey = "admin_username"

// RequireAdmin aborts with 401 unless the request carries a valid session
// token, either as the session cookie or a Bearer header.
func RequireAdmin(auth services.AuthService, log *logger.Logger) gin.HandlerFunc {
	mwLog := log.With("middleware", "RequireAdmin")
	return func(c *gin.Context) {
		token := ""
		if cookie, err := c.Cookie(SessionCookie); err == nil {
			token = cookie
		}
		if token == "" {
			header := c.GetHeader("Authorization")
			if strings.HasPrefix(header, "Bearer ") {
				token = strings.TrimPrefix(header, "Bearer ")
			}
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		username, err := auth.Verify(token)
		if err != nil {
			mwLog.Debug("Rejected session token", "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid session"})
			return
		}
		c.Set(ContextAdminKey, username)
		c.Next()
	}
}
