package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"reviewhub/internal/http-api/permission"
	"reviewhub/internal/http-api/service"
)

const actorKey = "actor"

// Authenticate establishes the acting identity for the request. Anonymous
// requests pass through with a zero actor; a present but invalid bearer
// token is rejected outright.
func Authenticate(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		// Extract token (format: "Bearer <token>")
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			c.Abort()
			return
		}

		claims, err := authService.ValidateToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		c.Set(actorKey, permission.Actor{
			Authenticated: true,
			ID:            claims.UserID,
			Username:      claims.Username,
			Role:          claims.Role,
		})
		c.Next()
	}
}

// RequireAuth aborts requests that did not authenticate.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !ActorFrom(c).Authenticated {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// ActorFrom returns the actor established by Authenticate; a zero actor for
// anonymous requests.
func ActorFrom(c *gin.Context) permission.Actor {
	if v, exists := c.Get(actorKey); exists {
		if actor, ok := v.(permission.Actor); ok {
			return actor
		}
	}
	return permission.Actor{}
}
