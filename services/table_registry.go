package services

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/restaurant-tables/database"
	"github.com/yeremiapane/restaurant-tables/hub"
	"github.com/yeremiapane/restaurant-tables/models"
	"github.com/yeremiapane/restaurant-tables/utils"
)

const maxTableNameLen = 50

// Broadcaster receives floor events after successful writes.
type Broadcaster interface {
	Broadcast(msg hub.Message)
}

// TableStats is the board legend: number of tables per status.
type TableStats struct {
	Total     int64 `json:"total"`
	Available int64 `json:"available"`
	Reserved  int64 `json:"reserved"`
	Occupied  int64 `json:"occupied"`
}

// TableRegistry owns table records of every restaurant.
type TableRegistry struct {
	repo database.TableRepository
	hub  Broadcaster
}

func NewTableRegistry(repo database.TableRepository, b Broadcaster) *TableRegistry {
	if b == nil {
		b = hub.Nop{}
	}
	return &TableRegistry{repo: repo, hub: b}
}

// ListTables returns tables in creation order, optionally for one location.
func (s *TableRegistry) ListTables(ctx context.Context, restaurantID string, location *models.TableLocation) ([]models.Table, error) {
	if err := requireRestaurant(restaurantID); err != nil {
		return nil, err
	}
	if location != nil {
		if _, ok := models.ParseTableLocation(string(*location)); !ok {
			return nil, utils.NewValidationError("location", "unknown location %q", *location)
		}
	}
	return s.repo.List(ctx, restaurantID, location)
}

func (s *TableRegistry) GetTable(ctx context.Context, restaurantID, tableID string) (*models.Table, error) {
	if err := requireRestaurant(restaurantID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(tableID) == "" {
		return nil, utils.NewValidationError("table_id", "is required")
	}
	return s.repo.Get(ctx, restaurantID, tableID)
}

// FindByName is kept for callers that still address tables by display name.
func (s *TableRegistry) FindByName(ctx context.Context, restaurantID, name string) ([]models.Table, error) {
	if err := requireRestaurant(restaurantID); err != nil {
		return nil, err
	}
	return s.repo.FindByName(ctx, restaurantID, strings.TrimSpace(name))
}

// CreateTable adds a table in status available.
func (s *TableRegistry) CreateTable(ctx context.Context, restaurantID, name string, capacity int, location models.TableLocation) (*models.Table, error) {
	if err := requireRestaurant(restaurantID); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, utils.NewValidationError("name", "is required")
	}
	if utf8.RuneCountInString(name) > maxTableNameLen {
		return nil, utils.NewValidationError("name", "must be at most %d characters", maxTableNameLen)
	}
	if capacity <= 0 {
		return nil, utils.NewValidationError("capacity", "must be greater than zero")
	}
	if _, ok := models.ParseTableLocation(string(location)); !ok {
		return nil, utils.NewValidationError("location", "unknown location %q", location)
	}

	existing, err := s.repo.FindByName(ctx, restaurantID, name)
	if err != nil {
		return nil, err
	}
	for _, t := range existing {
		if t.Location == location {
			return nil, utils.NewValidationError("name", "table %q already exists in %s", name, location)
		}
	}

	table := &models.Table{
		RestaurantID: restaurantID,
		Name:         name,
		Capacity:     capacity,
		Location:     location,
		Status:       models.TableStatusAvailable,
	}
	if err := s.repo.Insert(ctx, table); err != nil {
		return nil, err
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"restaurant_id": restaurantID,
		"table_id":      table.ID,
		"name":          table.Name,
	}).Info("table created")
	s.hub.Broadcast(hub.Message{
		Event:        hub.EventTableCreate,
		RestaurantID: restaurantID,
		Data:         table,
	})
	return table, nil
}

// DeleteTable removes the table only. Reservations pointing at it are left
// alone and read as unassigned from then on.
func (s *TableRegistry) DeleteTable(ctx context.Context, restaurantID, tableID string) error {
	if err := requireRestaurant(restaurantID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, restaurantID, tableID); err != nil {
		return err
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"restaurant_id": restaurantID,
		"table_id":      tableID,
	}).Info("table deleted")
	s.hub.Broadcast(hub.Message{
		Event:        hub.EventTableDelete,
		RestaurantID: restaurantID,
		Data:         map[string]interface{}{"table_id": tableID},
	})
	return nil
}

// SetStatus writes status without transition checks. Setting the current
// status again performs no write and emits no event.
func (s *TableRegistry) SetStatus(ctx context.Context, restaurantID, tableID string, status models.TableStatus) (*models.Table, error) {
	if err := requireRestaurant(restaurantID); err != nil {
		return nil, err
	}
	if _, ok := models.ParseTableStatus(string(status)); !ok {
		return nil, utils.NewValidationError("status", "unknown table status %q", status)
	}

	changed, err := s.repo.UpdateStatus(ctx, restaurantID, tableID, status)
	if err != nil {
		return nil, err
	}
	table, err := s.repo.Get(ctx, restaurantID, tableID)
	if err != nil {
		return nil, err
	}

	if changed > 0 {
		utils.InfoLogger.WithFields(logrus.Fields{
			"restaurant_id": restaurantID,
			"table_id":      tableID,
			"status":        status,
		}).Info("table status changed")
		s.hub.Broadcast(hub.Message{
			Event:        hub.EventTableUpdate,
			RestaurantID: restaurantID,
			Data:         table,
		})
	}
	return table, nil
}

// SetStatusByName updates every table carrying name and returns how many
// rows changed.
func (s *TableRegistry) SetStatusByName(ctx context.Context, restaurantID, name string, status models.TableStatus) (int64, error) {
	if err := requireRestaurant(restaurantID); err != nil {
		return 0, err
	}
	if _, ok := models.ParseTableStatus(string(status)); !ok {
		return 0, utils.NewValidationError("status", "unknown table status %q", status)
	}
	name = strings.TrimSpace(name)
	changed, err := s.repo.UpdateStatusByName(ctx, restaurantID, name, status)
	if err != nil || changed == 0 {
		return changed, err
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"restaurant_id": restaurantID,
		"name":          name,
		"status":        status,
		"rows":          changed,
	}).Info("table status changed by name")

	tables, err := s.repo.FindByName(ctx, restaurantID, name)
	if err != nil {
		// the write went through; dashboards catch up on next load
		utils.ErrorLogger.Warnf("reload tables named %q: %v", name, err)
		return changed, nil
	}
	for i := range tables {
		s.hub.Broadcast(hub.Message{
			Event:        hub.EventTableUpdate,
			RestaurantID: restaurantID,
			Data:         &tables[i],
		})
	}
	return changed, nil
}

func (s *TableRegistry) Stats(ctx context.Context, restaurantID string) (TableStats, error) {
	if err := requireRestaurant(restaurantID); err != nil {
		return TableStats{}, err
	}
	counts, err := s.repo.CountByStatus(ctx, restaurantID)
	if err != nil {
		return TableStats{}, err
	}
	stats := TableStats{
		Available: counts[models.TableStatusAvailable],
		Reserved:  counts[models.TableStatusReserved],
		Occupied:  counts[models.TableStatusOccupied],
	}
	stats.Total = stats.Available + stats.Reserved + stats.Occupied
	return stats, nil
}

func statsOf(tables []models.Table) TableStats {
	var stats TableStats
	for _, t := range tables {
		switch t.Status {
		case models.TableStatusAvailable:
			stats.Available++
		case models.TableStatusReserved:
			stats.Reserved++
		case models.TableStatusOccupied:
			stats.Occupied++
		}
		stats.Total++
	}
	return stats
}

func requireRestaurant(restaurantID string) error {
	if strings.TrimSpace(restaurantID) == "" {
		return utils.NewValidationError("restaurant_id", "is required")
	}
	return nil
}
