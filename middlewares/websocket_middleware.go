package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-tables/utils"
)

// WebSocketAuthMiddleware reads the token from ?token= since browsers cannot
// set headers on the upgrade request.
func WebSocketAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.AbortWithStatus(401)
			return
		}

		// Validasi token
		claims, err := utils.ParseToken(token)
		if err != nil {
			c.AbortWithStatus(401)
			return
		}

		setIdentity(c, claims)
		c.Next()
	}
}
