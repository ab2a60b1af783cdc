package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/profast/profast-backend/internal/services"
	"gorm.io/gorm"
)

// WebSocketHandler joins the caller to the tracking-update hub.
func WebSocketHandler(db *gorm.DB, hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		email := c.GetString("email")

		role, err := services.ResolveRole(c.Request.Context(), db, email)
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to resolve role"})
			return
		}

		services.HandleWebSocket(hub, c.Writer, c.Request, email, string(role))
	}
}
