package router

import (
	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-tables/controllers"
	"github.com/yeremiapane/restaurant-tables/hub"
	"github.com/yeremiapane/restaurant-tables/middlewares"
	"github.com/yeremiapane/restaurant-tables/services"
)

type Options struct {
	Floor      *services.Floor
	Hub        *hub.Hub
	CORSOrigin string
	// nil disables rate limiting
	RateLimiter *middlewares.RateLimiter
}

func SetupRouter(opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// Apply security middlewares
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(opts.CORSOrigin))
	r.Use(middlewares.LoggerMiddleware())
	if opts.RateLimiter != nil {
		r.Use(opts.RateLimiter.RateLimit())
	}

	// Inisialisasi controller
	tableCtrl := controllers.NewTableController(opts.Floor.Tables, opts.Floor.Matcher, opts.Floor.Coordinator)
	reservationCtrl := controllers.NewReservationController(opts.Floor.Reservations, opts.Floor.Coordinator)
	dayCtrl := controllers.NewDayController(opts.Floor.Coordinator)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	if opts.Hub != nil {
		floorCtrl := controllers.NewFloorController(opts.Hub, opts.CORSOrigin)
		r.GET("/ws", middlewares.WebSocketAuthMiddleware(), floorCtrl.FloorSocket)
	}

	// ----------------------------------------------------------------
	//                      AUTH ROUTES (admin, staff)
	// ----------------------------------------------------------------
	api := r.Group("/api")
	api.Use(middlewares.AuthMiddleware())
	api.Use(middlewares.RequireRoles(middlewares.RoleStaff))
	{
		tables := api.Group("/tables")
		{
			tables.GET("", tableCtrl.GetAllTables)
			tables.GET("/stats", tableCtrl.GetTableStats)
			tables.GET("/eligible", tableCtrl.GetEligibleTables)
			tables.GET("/:table_id", tableCtrl.GetTableByID)
			tables.PATCH("/:table_id/status", middlewares.AuditLogger(), tableCtrl.UpdateTableStatus)

			// admin only
			tables.POST("", middlewares.RequireRoles(middlewares.RoleAdmin), middlewares.AuditLogger(), tableCtrl.CreateTable)
			tables.DELETE("/:table_id", middlewares.RequireRoles(middlewares.RoleAdmin), middlewares.AuditLogger(), tableCtrl.DeleteTable)
		}

		days := api.Group("/days")
		{
			days.GET("/:day", dayCtrl.GetDayBoard)
			days.POST("/:day/reconcile", middlewares.AuditLogger(), dayCtrl.ReconcileDay)
		}

		reservations := api.Group("/reservations")
		{
			reservations.GET("", reservationCtrl.GetReservations)
			reservations.GET("/:reservation_id", reservationCtrl.GetReservationByID)

			audited := reservations.Group("", middlewares.AuditLogger())
			audited.POST("", reservationCtrl.CreateReservation)
			audited.PATCH("/:reservation_id", reservationCtrl.UpdateReservation)
			audited.POST("/:reservation_id/confirm", reservationCtrl.ConfirmReservation)
			audited.POST("/:reservation_id/cancel", reservationCtrl.CancelReservation)
			audited.DELETE("/:reservation_id", reservationCtrl.DeleteReservation)
		}
	}

	return r
}
