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

func TestCreateTable(t *testing.T) {
	r, _ := setupTestRouter(t)
	admin := tokenFor(t, "admin")

	w, env := doRequest(t, r, http.MethodPost, "/api/tables", admin, map[string]interface{}{
		"name": "A1", "capacity": 4, "location": "indoor",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Table created successfully", env.Message)

	var table models.Table
	decode(t, env, &table)
	assert.Equal(t, "A1", table.Name)
	assert.Equal(t, models.TableStatusAvailable, table.Status)
	assert.Equal(t, testRestaurant, table.RestaurantID)

	// duplicate name in the same location
	w, _ = doRequest(t, r, http.MethodPost, "/api/tables", admin, map[string]interface{}{
		"name": "A1", "capacity": 2, "location": "indoor",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = doRequest(t, r, http.MethodPost, "/api/tables", admin, map[string]interface{}{
		"name": "Z9", "capacity": 2, "location": "roof",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateTable_StaffForbidden(t *testing.T) {
	r, _ := setupTestRouter(t)

	w, _ := doRequest(t, r, http.MethodPost, "/api/tables", tokenFor(t, "staff"), map[string]interface{}{
		"name": "A1", "capacity": 4, "location": "indoor",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = doRequest(t, r, http.MethodGet, "/api/tables", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = doRequest(t, r, http.MethodGet, "/api/tables", tokenFor(t, "chef"), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestGetAllTables(t *testing.T) {
	r, floor := setupTestRouter(t)
	ctx := context.Background()

	// Seed data: tiga meja
	_, err := floor.Tables.CreateTable(ctx, testRestaurant, "A1", 4, models.LocationIndoor)
	require.NoError(t, err)
	_, err = floor.Tables.CreateTable(ctx, testRestaurant, "D1", 2, models.LocationOutdoor)
	require.NoError(t, err)
	_, err = floor.Tables.CreateTable(ctx, "someone-else", "X1", 2, models.LocationOutdoor)
	require.NoError(t, err)

	w, env := doRequest(t, r, http.MethodGet, "/api/tables", tokenFor(t, "staff"), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "List of tables", env.Message)
	var tables []models.Table
	decode(t, env, &tables)
	assert.Len(t, tables, 2)

	w, env = doRequest(t, r, http.MethodGet, "/api/tables?location=outdoor", tokenFor(t, "staff"), nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, env, &tables)
	require.Len(t, tables, 1)
	assert.Equal(t, "D1", tables[0].Name)

	w, _ = doRequest(t, r, http.MethodGet, "/api/tables?location=roof", tokenFor(t, "staff"), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetEligibleTables(t *testing.T) {
	r, floor := setupTestRouter(t)
	ctx := context.Background()
	for _, c := range []int{8, 4, 6} {
		_, err := floor.Tables.CreateTable(ctx, testRestaurant, "cap"+string(rune('0'+c)), c, models.LocationIndoor)
		require.NoError(t, err)
	}

	w, env := doRequest(t, r, http.MethodGet, "/api/tables/eligible?guests=6", tokenFor(t, "staff"), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var tables []models.Table
	decode(t, env, &tables)
	require.Len(t, tables, 2)
	assert.Equal(t, 6, tables[0].Capacity)
	assert.Equal(t, 8, tables[1].Capacity)

	w, _ = doRequest(t, r, http.MethodGet, "/api/tables/eligible?guests=six", tokenFor(t, "staff"), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = doRequest(t, r, http.MethodGet, "/api/tables/eligible?guests=2&day=01-06-2024", tokenFor(t, "staff"), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateTableStatus(t *testing.T) {
	r, floor := setupTestRouter(t)
	table, err := floor.Tables.CreateTable(context.Background(), testRestaurant, "C1", 4, models.LocationIndoor)
	require.NoError(t, err)
	staff := tokenFor(t, "staff")
	path := "/api/tables/" + table.ID + "/status"

	w, _ := doRequest(t, r, http.MethodPatch, path, staff, map[string]string{"status": "occupied"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w, env := doRequest(t, r, http.MethodPatch, path, staff, map[string]string{"status": "reserved"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Table status updated", env.Message)
	var updated models.Table
	decode(t, env, &updated)
	assert.Equal(t, models.TableStatusReserved, updated.Status)

	w, _ = doRequest(t, r, http.MethodPatch, path, staff, map[string]string{"status": "on-dine"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = doRequest(t, r, http.MethodPatch, "/api/tables/nope/status", staff, map[string]string{"status": "reserved"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateTableStatus_ByName(t *testing.T) {
	r, floor := setupTestRouter(t)
	ctx := context.Background()
	in, err := floor.Tables.CreateTable(ctx, testRestaurant, "C1", 4, models.LocationIndoor)
	require.NoError(t, err)
	_, err = floor.Tables.CreateTable(ctx, testRestaurant, "C1", 2, models.LocationOutdoor)
	require.NoError(t, err)
	staff := tokenFor(t, "staff")

	w, env := doRequest(t, r, http.MethodPatch, "/api/tables/C1/status?by=name", staff, map[string]string{"status": "reserved"})
	require.Equal(t, http.StatusOK, w.Code)
	var tables []models.Table
	decode(t, env, &tables)
	require.Len(t, tables, 2)
	for _, table := range tables {
		assert.Equal(t, models.TableStatusReserved, table.Status)
	}

	got, err := floor.Tables.GetTable(ctx, testRestaurant, in.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TableStatusReserved, got.Status)

	// tanpa ?by=name, "C1" dibaca sebagai id
	w, _ = doRequest(t, r, http.MethodPatch, "/api/tables/C1/status", staff, map[string]string{"status": "available"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = doRequest(t, r, http.MethodPatch, "/api/tables/Z9/status?by=name", staff, map[string]string{"status": "reserved"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTableStatsAndDelete(t *testing.T) {
	r, floor := setupTestRouter(t)
	ctx := context.Background()
	a, err := floor.Tables.CreateTable(ctx, testRestaurant, "A1", 4, models.LocationIndoor)
	require.NoError(t, err)
	_, err = floor.Tables.CreateTable(ctx, testRestaurant, "A2", 4, models.LocationIndoor)
	require.NoError(t, err)
	_, err = floor.Tables.SetStatus(ctx, testRestaurant, a.ID, models.TableStatusReserved)
	require.NoError(t, err)

	w, env := doRequest(t, r, http.MethodGet, "/api/tables/stats", tokenFor(t, "staff"), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats services.TableStats
	decode(t, env, &stats)
	assert.EqualValues(t, 2, stats.Total)
	assert.EqualValues(t, 1, stats.Reserved)

	w, _ = doRequest(t, r, http.MethodDelete, "/api/tables/"+a.ID, tokenFor(t, "staff"), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = doRequest(t, r, http.MethodDelete, "/api/tables/"+a.ID, tokenFor(t, "admin"), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = doRequest(t, r, http.MethodDelete, "/api/tables/"+a.ID, tokenFor(t, "admin"), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
