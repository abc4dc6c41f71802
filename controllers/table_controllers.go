package controllers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-tables/middlewares"
	"github.com/yeremiapane/restaurant-tables/models"
	"github.com/yeremiapane/restaurant-tables/services"
	"github.com/yeremiapane/restaurant-tables/utils"
)

type TableController struct {
	Tables      *services.TableRegistry
	Matcher     *services.AvailabilityMatcher
	Coordinator *services.AllocationCoordinator
}

func NewTableController(tables *services.TableRegistry, matcher *services.AvailabilityMatcher, coordinator *services.AllocationCoordinator) *TableController {
	return &TableController{Tables: tables, Matcher: matcher, Coordinator: coordinator}
}

// CreateTable -> menambahkan meja baru, selalu available
func (tc *TableController) CreateTable(c *gin.Context) {
	var req struct {
		Name     string `json:"name" binding:"required"`
		Capacity int    `json:"capacity" binding:"required"`
		Location string `json:"location" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	table, err := tc.Tables.CreateTable(c.Request.Context(), middlewares.RestaurantID(c), req.Name, req.Capacity, models.TableLocation(req.Location))
	if err != nil {
		utils.RespondError(c, 0, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Table created successfully", table)
}

// GetAllTables -> menampilkan seluruh meja, opsional ?location=
func (tc *TableController) GetAllTables(c *gin.Context) {
	location, err := locationQuery(c)
	if err != nil {
		utils.RespondError(c, 0, err)
		return
	}

	tables, err := tc.Tables.ListTables(c.Request.Context(), middlewares.RestaurantID(c), location)
	if err != nil {
		utils.RespondError(c, 0, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of tables", tables)
}

// GetTableByID -> detail satu meja
func (tc *TableController) GetTableByID(c *gin.Context) {
	table, err := tc.Tables.GetTable(c.Request.Context(), middlewares.RestaurantID(c), c.Param("table_id"))
	if err != nil {
		utils.RespondError(c, 0, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table detail", table)
}

func (tc *TableController) GetTableStats(c *gin.Context) {
	stats, err := tc.Tables.Stats(c.Request.Context(), middlewares.RestaurantID(c))
	if err != nil {
		utils.RespondError(c, 0, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table stats", stats)
}

// GetEligibleTables -> meja yang cukup untuk ?guests=, opsional ?location= dan ?day=
func (tc *TableController) GetEligibleTables(c *gin.Context) {
	guests := 0
	if raw := c.Query("guests"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			utils.RespondError(c, 0, utils.NewValidationError("guests", "must be a number, got %q", raw))
			return
		}
		guests = n
	}

	location, err := locationQuery(c)
	if err != nil {
		utils.RespondError(c, 0, err)
		return
	}

	var day time.Time
	if raw := c.Query("day"); raw != "" {
		if day, err = utils.ParseDay(raw); err != nil {
			utils.RespondError(c, 0, err)
			return
		}
	}

	tables, err := tc.Matcher.EligibleTables(c.Request.Context(), middlewares.RestaurantID(c), location, guests, day)
	if err != nil {
		utils.RespondError(c, 0, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Eligible tables", tables)
}

// UpdateTableStatus -> ubah status meja secara manual (seat, free), per id atau ?by=name
func (tc *TableController) UpdateTableStatus(c *gin.Context) {
	var body struct {
		Status string `json:"status" binding:"required"`
	}

	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	// ?by=name: segmen path adalah nama meja, bukan id
	if c.Query("by") == "name" {
		tables, err := tc.Coordinator.ChangeTableStatusByName(c.Request.Context(), middlewares.RestaurantID(c), c.Param("table_id"), models.TableStatus(body.Status))
		if err != nil {
			utils.RespondError(c, 0, err)
			return
		}
		utils.RespondJSON(c, http.StatusOK, "Table status updated", tables)
		return
	}

	table, err := tc.Coordinator.ChangeTableStatus(c.Request.Context(), middlewares.RestaurantID(c), c.Param("table_id"), models.TableStatus(body.Status))
	if err != nil {
		utils.RespondError(c, 0, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Table status updated", table)
}

// DeleteTable -> menghapus meja, reservasi tidak ikut terhapus
func (tc *TableController) DeleteTable(c *gin.Context) {
	tableID := c.Param("table_id")
	if err := tc.Tables.DeleteTable(c.Request.Context(), middlewares.RestaurantID(c), tableID); err != nil {
		utils.RespondError(c, 0, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Table deleted", gin.H{
		"id": tableID,
	})
}

func locationQuery(c *gin.Context) (*models.TableLocation, error) {
	raw := strings.TrimSpace(c.Query("location"))
	if raw == "" {
		return nil, nil
	}
	loc, ok := models.ParseTableLocation(raw)
	if !ok {
		return nil, utils.NewValidationError("location", "unknown location %q", raw)
	}
	return &loc, nil
}
