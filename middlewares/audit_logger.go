package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/restaurant-tables/utils"
)

// AuditLogger records who changed what on the floor. Mounted on mutating
// routes only.
func AuditLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		fields := logrus.Fields{
			"user_id":       c.GetString(CtxUserID),
			"role":          c.GetString(CtxRole),
			"restaurant_id": c.GetString(CtxRestaurantID),
			"method":        c.Request.Method,
			"route":         c.FullPath(),
			"status":        c.Writer.Status(),
		}
		for _, p := range c.Params {
			fields[p.Key] = p.Value
		}

		// Setelah request
		if c.Writer.Status() < 400 {
			utils.InfoLogger.WithFields(fields).Info("floor change applied")
		} else {
			utils.ErrorLogger.WithFields(fields).Warn("floor change rejected")
		}
	}
}
