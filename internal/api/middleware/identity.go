package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/ozgun/catalogd/internal/logger"
)

// identityKey is the Gin context key for the authenticated username.
const identityKey = "auth_user"

// Identity reads the caller identity forwarded by the auth proxy in the
// X-Auth-User header and attaches it to the request context. Authentication
// itself happens upstream; an empty header means an anonymous caller.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := c.GetHeader("X-Auth-User")
		if user != "" {
			c.Set(identityKey, user)
			ctx := logger.SetUserID(c.Request.Context(), user)
			c.Request = c.Request.WithContext(ctx)
		}
		c.Next()
	}
}

// CallerIdentity returns the username forwarded by the auth proxy, or ""
// when the request is anonymous.
func CallerIdentity(c *gin.Context) string {
	if v, ok := c.Get(identityKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
