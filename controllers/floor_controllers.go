package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/yeremiapane/restaurant-tables/hub"
	"github.com/yeremiapane/restaurant-tables/middlewares"
)

type FloorController struct {
	Hub      *hub.Hub
	upgrader websocket.Upgrader
}

// NewFloorController accepts upgrades only from allowedOrigin; "*" allows any.
func NewFloorController(h *hub.Hub, allowedOrigin string) *FloorController {
	return &FloorController{
		Hub: h,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return allowedOrigin == "*" || origin == "" || origin == allowedOrigin
			},
		},
	}
}

// FloorSocket -> endpoint WebSocket untuk update meja/reservasi real-time
func (fc *FloorController) FloorSocket(c *gin.Context) {
	role := c.GetString(middlewares.CtxRole)
	if role == "" {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	// Validasi role
	if role != middlewares.RoleStaff && role != middlewares.RoleAdmin {
		c.AbortWithStatus(http.StatusForbidden)
		return
	}

	ws, err := fc.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	fc.Hub.Register(ws, role, middlewares.RestaurantID(c))

	// Baca pesan sampai client disconnect
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}

	fc.Hub.Unregister(ws)
}
