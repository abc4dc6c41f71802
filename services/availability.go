package services

import (
	"context"
	"sort"
	"time"

	"github.com/yeremiapane/restaurant-tables/models"
	"golang.org/x/sync/errgroup"
)

// AvailabilityMatcher answers "which tables can seat this party". Read only.
type AvailabilityMatcher struct {
	tables       *TableRegistry
	reservations *ReservationStore
}

func NewAvailabilityMatcher(tables *TableRegistry, reservations *ReservationStore) *AvailabilityMatcher {
	return &AvailabilityMatcher{tables: tables, reservations: reservations}
}

// EligibleTables returns available tables with capacity >= partySize,
// smallest first and then by name. partySize <= 0 skips the capacity
// filter. A non-zero day also drops tables already claimed by an active
// reservation on that day.
func (m *AvailabilityMatcher) EligibleTables(ctx context.Context, restaurantID string, location *models.TableLocation, partySize int, day time.Time) ([]models.Table, error) {
	var (
		tables  []models.Table
		claimed map[string]struct{}
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tables, err = m.tables.ListTables(gctx, restaurantID, location)
		return err
	})
	if !day.IsZero() {
		g.Go(func() error {
			var err error
			claimed, err = m.reservations.ActiveTableIDsForDay(gctx, restaurantID, day, "")
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	eligible := make([]models.Table, 0, len(tables))
	for _, t := range tables {
		if t.Status != models.TableStatusAvailable {
			continue
		}
		if partySize > 0 && t.Capacity < partySize {
			continue
		}
		if _, taken := claimed[t.ID]; taken {
			continue
		}
		eligible = append(eligible, t)
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		if eligible[i].Capacity != eligible[j].Capacity {
			return eligible[i].Capacity < eligible[j].Capacity
		}
		return eligible[i].Name < eligible[j].Name
	})
	return eligible, nil
}
