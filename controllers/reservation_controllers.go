package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-tables/middlewares"
	"github.com/yeremiapane/restaurant-tables/models"
	"github.com/yeremiapane/restaurant-tables/services"
	"github.com/yeremiapane/restaurant-tables/utils"
)

type ReservationController struct {
	Reservations *services.ReservationStore
	Coordinator  *services.AllocationCoordinator
}

func NewReservationController(reservations *services.ReservationStore, coordinator *services.AllocationCoordinator) *ReservationController {
	return &ReservationController{Reservations: reservations, Coordinator: coordinator}
}

// CreateReservation -> reservasi baru, meja (opsional) langsung di-reserve
func (rc *ReservationController) CreateReservation(c *gin.Context) {
	var in services.ReservationInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	in.RestaurantID = middlewares.RestaurantID(c)

	res, err := rc.Coordinator.CreateReservation(c.Request.Context(), in)
	switch {
	case err != nil && res == nil:
		utils.RespondError(c, 0, err)
	case err != nil:
		// reservasi sudah tersimpan, status meja menyusul saat rekonsiliasi
		utils.RespondPartial(c, http.StatusCreated, "Reservation created, table status pending reconcile", res, err)
	default:
		utils.RespondJSON(c, http.StatusCreated, "Reservation created", res)
	}
}

// GetReservations -> daftar reservasi per hari (?day=YYYY-MM-DD, default hari ini), ?q= cari nama
func (rc *ReservationController) GetReservations(c *gin.Context) {
	day := utils.StartOfDay(time.Now())
	if raw := c.Query("day"); raw != "" {
		parsed, err := utils.ParseDay(raw)
		if err != nil {
			utils.RespondError(c, 0, err)
			return
		}
		day = parsed
	}

	list, err := rc.Reservations.Search(c.Request.Context(), middlewares.RestaurantID(c), day, c.Query("q"))
	if err != nil {
		utils.RespondError(c, 0, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservations of "+utils.FormatDay(day), list)
}

func (rc *ReservationController) GetReservationByID(c *gin.Context) {
	res, err := rc.Reservations.Get(c.Request.Context(), middlewares.RestaurantID(c), c.Param("reservation_id"))
	if err != nil {
		utils.RespondError(c, 0, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservation detail", res)
}

// UpdateReservation -> edit sebagian field; "table_id": "" melepas meja
func (rc *ReservationController) UpdateReservation(c *gin.Context) {
	var patch models.ReservationPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	res, err := rc.Coordinator.UpdateReservation(c.Request.Context(), middlewares.RestaurantID(c), c.Param("reservation_id"), patch)
	switch {
	case err != nil && res == nil:
		utils.RespondError(c, 0, err)
	case err != nil:
		utils.RespondPartial(c, http.StatusOK, "Reservation updated, table status pending reconcile", res, err)
	default:
		utils.RespondJSON(c, http.StatusOK, "Reservation updated", res)
	}
}

func (rc *ReservationController) ConfirmReservation(c *gin.Context) {
	res, err := rc.Coordinator.ConfirmReservation(c.Request.Context(), middlewares.RestaurantID(c), c.Param("reservation_id"))
	if err != nil {
		utils.RespondError(c, 0, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservation confirmed", res)
}

func (rc *ReservationController) CancelReservation(c *gin.Context) {
	var body struct {
		Reason string `json:"reason"`
	}
	// body is optional
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			utils.RespondError(c, http.StatusBadRequest, err)
			return
		}
	}

	res, err := rc.Coordinator.CancelReservation(c.Request.Context(), middlewares.RestaurantID(c), c.Param("reservation_id"), body.Reason)
	switch {
	case err != nil && res == nil:
		utils.RespondError(c, 0, err)
	case err != nil:
		utils.RespondPartial(c, http.StatusOK, "Reservation cancelled, table status pending reconcile", res, err)
	default:
		utils.RespondJSON(c, http.StatusOK, "Reservation cancelled", res)
	}
}

func (rc *ReservationController) DeleteReservation(c *gin.Context) {
	id := c.Param("reservation_id")
	res, err := rc.Coordinator.DeleteReservation(c.Request.Context(), middlewares.RestaurantID(c), id)
	switch {
	case err != nil && res == nil:
		utils.RespondError(c, 0, err)
	case err != nil:
		utils.RespondPartial(c, http.StatusOK, "Reservation deleted, table status pending reconcile", gin.H{"id": id}, err)
	default:
		utils.RespondJSON(c, http.StatusOK, "Reservation deleted", gin.H{
			"id": id,
		})
	}
}
