package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/profast/profast-backend/internal/models"
	"github.com/profast/profast-backend/internal/services"
	"github.com/profast/profast-backend/pkg/utils"
	"gorm.io/gorm"
)

// AuthMiddleware validates the bearer token and injects the caller's
// identity into the request context. The token may also arrive as a query
// parameter for websocket connections.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		var tokenString string

		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}

		if tokenString == "" {
			tokenString = c.Query("token")
		}

		if tokenString == "" {
			c.JSON(401, gin.H{"error": "Authorization header or token query parameter required"})
			c.Abort()
			return
		}

		token, err := utils.ValidateToken(tokenString)
		if err != nil || !token.Valid {
			c.JSON(401, gin.H{"error": "Invalid token"})
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.JSON(401, gin.H{"error": "Invalid token claims"})
			c.Abort()
			return
		}

		id, _ := claims["id"].(float64)
		email, _ := claims["email"].(string)
		if email == "" {
			c.JSON(401, gin.H{"error": "Invalid token claims"})
			c.Abort()
			return
		}

		c.Set("userId", uint(id))
		c.Set("email", strings.ToLower(email))
		c.Next()
	}
}

// RequireRole blocks the request until the caller's role is resolved and
// matches. The role comes from the database (through the cache), not from
// the token claim, so promotions and demotions take effect without a new
// login. A role that cannot be resolved never authorizes.
func RequireRole(db *gorm.DB, role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		email := c.GetString("email")
		if email == "" {
			c.JSON(401, gin.H{"error": "Authentication required"})
			c.Abort()
			return
		}

		resolved, err := services.ResolveRole(c.Request.Context(), db, email)
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to resolve role"})
			c.Abort()
			return
		}

		if resolved != role {
			c.JSON(403, gin.H{
				"error": "Forbidden",
				"path":  c.Request.URL.Path,
			})
			c.Abort()
			return
		}

		c.Set("role", string(resolved))
		c.Next()
	}
}
