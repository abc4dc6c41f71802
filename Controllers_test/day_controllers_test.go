package Controllers_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/restaurant-tables/models"
	"github.com/yeremiapane/restaurant-tables/services"
)

func TestGetDayBoard_SwitchesTableStatus(t *testing.T) {
	r, floor := setupTestRouter(t)
	ctx := context.Background()
	c1, err := floor.Tables.CreateTable(ctx, testRestaurant, "C1", 4, models.LocationIndoor)
	require.NoError(t, err)
	_, err = floor.Tables.CreateTable(ctx, testRestaurant, "T1", 2, models.LocationOutdoor)
	require.NoError(t, err)
	staff := tokenFor(t, "staff")

	w, _ := doRequest(t, r, http.MethodPost, "/api/reservations", staff, map[string]interface{}{
		"customer_name":    "Rossi",
		"guests":           4,
		"reservation_date": "2024-06-02T19:00:00Z",
		"table_id":         c1.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	// hari lain: C1 bebas
	w, env := doRequest(t, r, http.MethodGet, "/api/days/2024-06-01", staff, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var board services.DayBoard
	decode(t, env, &board)
	assert.Equal(t, "2024-06-01", board.Day)
	require.Len(t, board.Indoor, 1)
	require.Len(t, board.Outdoor, 1)
	assert.Equal(t, models.TableStatusAvailable, board.Indoor[0].Status)
	assert.Empty(t, board.Reservations)
	assert.EqualValues(t, 2, board.Stats.Available)

	w, env = doRequest(t, r, http.MethodGet, "/api/days/2024-06-02", staff, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, env, &board)
	assert.Equal(t, models.TableStatusReserved, board.Indoor[0].Status)
	assert.Len(t, board.Reservations, 1)
	require.NotNil(t, board.Reconcile)
	assert.Equal(t, []string{c1.ID}, board.Reconcile.Reserved)

	w, _ = doRequest(t, r, http.MethodGet, "/api/days/06-02-2024", staff, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReconcileDay(t *testing.T) {
	r, floor := setupTestRouter(t)
	ctx := context.Background()
	c1, err := floor.Tables.CreateTable(ctx, testRestaurant, "C1", 4, models.LocationIndoor)
	require.NoError(t, err)

	// drift: meja ditandai reserved tanpa reservasi
	_, err = floor.Tables.SetStatus(ctx, testRestaurant, c1.ID, models.TableStatusReserved)
	require.NoError(t, err)

	w, env := doRequest(t, r, http.MethodPost, "/api/days/2024-06-01/reconcile", tokenFor(t, "staff"), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Day reconciled", env.Message)

	var result services.ReconcileResult
	decode(t, env, &result)
	assert.Empty(t, result.Reserved)

	got, err := floor.Tables.GetTable(ctx, testRestaurant, c1.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TableStatusAvailable, got.Status)
}
