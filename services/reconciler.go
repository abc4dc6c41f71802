package services

import (
	"context"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/restaurant-tables/database"
	"github.com/yeremiapane/restaurant-tables/hub"
	"github.com/yeremiapane/restaurant-tables/models"
	"github.com/yeremiapane/restaurant-tables/utils"
	"golang.org/x/sync/errgroup"
)

// ReconcileResult describes one pass over a restaurant's tables.
type ReconcileResult struct {
	RestaurantID string   `json:"restaurant_id"`
	Day          string   `json:"day"`
	Reserved     []string `json:"reserved"`
	Released     int64    `json:"released"`
	Claimed      int64    `json:"claimed"`
	// referenced table ids that no longer exist
	Dangling     int      `json:"dangling"`
}

// Reconciler re-derives table statuses from a day's reservations. It runs
// only when asked; nothing here owns a timer.
type Reconciler struct {
	tables       database.TableRepository
	reservations *ReservationStore
	hub          Broadcaster
}

func NewReconciler(tables database.TableRepository, reservations *ReservationStore, b Broadcaster) *Reconciler {
	if b == nil {
		b = hub.Nop{}
	}
	return &Reconciler{tables: tables, reservations: reservations, hub: b}
}

// Reconcile sets every table referenced by an active reservation of day to
// reserved and every other table of the restaurant to available, occupied
// ones included. Running it twice gives the same result.
func (r *Reconciler) Reconcile(ctx context.Context, restaurantID string, day time.Time) (*ReconcileResult, error) {
	if err := requireRestaurant(restaurantID); err != nil {
		return nil, err
	}

	var (
		tables       []models.Table
		reservations []models.Reservation
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tables, err = r.tables.List(gctx, restaurantID, nil)
		return err
	})
	g.Go(func() error {
		var err error
		reservations, err = r.reservations.ListForDay(gctx, restaurantID, day)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	existing := make(map[string]struct{}, len(tables))
	for _, t := range tables {
		existing[t.ID] = struct{}{}
	}

	result := &ReconcileResult{
		RestaurantID: restaurantID,
		Day:          utils.FormatDay(day),
		Reserved:     []string{},
	}
	for id := range activeTableIDs(reservations, "") {
		if _, ok := existing[id]; !ok {
			result.Dangling++
			continue
		}
		result.Reserved = append(result.Reserved, id)
	}
	sort.Strings(result.Reserved)

	released, claimed, err := r.tables.ResetStatuses(ctx, restaurantID, result.Reserved)
	if err != nil {
		return nil, err
	}
	result.Released = released
	result.Claimed = claimed

	utils.InfoLogger.WithFields(logrus.Fields{
		"restaurant_id": restaurantID,
		"day":           result.Day,
		"reserved":      len(result.Reserved),
		"released":      released,
		"claimed":       claimed,
		"dangling":      result.Dangling,
	}).Info("day reconciled")

	r.hub.Broadcast(hub.Message{
		Event:        hub.EventDayReconciled,
		RestaurantID: restaurantID,
		Data:         result,
	})
	return result, nil
}
