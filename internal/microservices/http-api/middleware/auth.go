package middleware

import (
	"errors"
	"net/http"
	"strings"

	"musichub/internal/logging"
	"musichub/internal/middleware/auth"

	"github.com/gin-gonic/gin"
)

// CallerKey is the gin context key holding the *auth.Caller of the request.
const CallerKey = "caller"

// TokenVerifier turns a bearer token into a caller.
type TokenVerifier interface {
	Verify(token string) (*auth.Caller, error)
}

// Authenticate resolves the caller from the Authorization header. Requests
// without the header continue anonymously; a malformed or invalid token is
// rejected even on public routes.
func Authenticate(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		// Extract token (format: "Bearer <token>")
		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			return
		}

		caller, err := verifier.Verify(parts[1])
		if err != nil {
			logging.Ctx(c.Request.Context()).Debug().Err(err).Msg("token rejected")
			if errors.Is(err, auth.ErrExpiredToken) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token has expired"})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(CallerKey, caller)
		c.Next()
	}
}

// RequireAuth rejects anonymous requests.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CallerFromContext(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication credentials were not provided"})
			return
		}
		c.Next()
	}
}

// RequireAdmin rejects anyone without the admin role
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := CallerFromContext(c)
		if caller == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication credentials were not provided"})
			return
		}
		if !caller.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin role required"})
			return
		}
		c.Next()
	}
}

// CallerFromContext returns the authenticated caller, or nil for anonymous requests.
func CallerFromContext(c *gin.Context) *auth.Caller {
	v, exists := c.Get(CallerKey)
	if !exists {
		return nil
	}
	caller, _ := v.(*auth.Caller)
	return caller
}
