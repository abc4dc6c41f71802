package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-tables/middlewares"
	"github.com/yeremiapane/restaurant-tables/services"
	"github.com/yeremiapane/restaurant-tables/utils"
)

type DayController struct {
	Coordinator *services.AllocationCoordinator
}

func NewDayController(coordinator *services.AllocationCoordinator) *DayController {
	return &DayController{Coordinator: coordinator}
}

// GetDayBoard -> pindah ke hari D: rekonsiliasi status meja lalu tampilkan papan
func (dc *DayController) GetDayBoard(c *gin.Context) {
	day, err := utils.ParseDay(c.Param("day"))
	if err != nil {
		utils.RespondError(c, 0, err)
		return
	}

	board, err := dc.Coordinator.NavigateToDay(c.Request.Context(), middlewares.RestaurantID(c), day)
	if err != nil {
		utils.RespondError(c, 0, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Day board", board)
}

func (dc *DayController) ReconcileDay(c *gin.Context) {
	day, err := utils.ParseDay(c.Param("day"))
	if err != nil {
		utils.RespondError(c, 0, err)
		return
	}

	result, err := dc.Coordinator.Reconcile(c.Request.Context(), middlewares.RestaurantID(c), day)
	if err != nil {
		utils.RespondError(c, 0, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Day reconciled", result)
}
