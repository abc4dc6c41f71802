package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/restaurant-tables/database"
	"github.com/yeremiapane/restaurant-tables/hub"
	"github.com/yeremiapane/restaurant-tables/models"
	"github.com/yeremiapane/restaurant-tables/services"
	"github.com/yeremiapane/restaurant-tables/testutil"
	"github.com/yeremiapane/restaurant-tables/utils"
)

const restaurantID = "resto-rossi"

type recorder struct {
	mu   sync.Mutex
	msgs []hub.Message
}

func (r *recorder) Broadcast(msg hub.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
}

func (r *recorder) count(event string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, m := range r.msgs {
		if m.Event == event {
			n++
		}
	}
	return n
}

type fixture struct {
	tables       *services.TableRegistry
	reservations *services.ReservationStore
	matcher      *services.AvailabilityMatcher
	reconciler   *services.Reconciler
	coordinator  *services.AllocationCoordinator
	events       *recorder
	// status writes fail while FailUpdates(true)
	flaky *testutil.FlakyTables
}

func newFixture(t *testing.T, opts ...services.CoordinatorOption) *fixture {
	t.Helper()
	utils.InitLogger("warn")

	db := testutil.NewTestDB(t)
	events := &recorder{}
	tableRepo := testutil.NewFlakyTables(database.NewGormTableRepository(db))

	f := &fixture{events: events, flaky: tableRepo}
	f.tables = services.NewTableRegistry(tableRepo, events)
	f.reservations = services.NewReservationStore(database.NewGormReservationRepository(db))
	f.matcher = services.NewAvailabilityMatcher(f.tables, f.reservations)
	f.reconciler = services.NewReconciler(tableRepo, f.reservations, events)
	opts = append([]services.CoordinatorOption{services.WithBroadcaster(events)}, opts...)
	f.coordinator = services.NewAllocationCoordinator(f.tables, f.reservations, f.reconciler, opts...)
	return f
}

func (f *fixture) table(t *testing.T, name string, capacity int, location models.TableLocation) *models.Table {
	t.Helper()
	table, err := f.tables.CreateTable(context.Background(), restaurantID, name, capacity, location)
	require.NoError(t, err)
	return table
}

func (f *fixture) status(t *testing.T, tableID string) models.TableStatus {
	t.Helper()
	table, err := f.tables.GetTable(context.Background(), restaurantID, tableID)
	require.NoError(t, err)
	return table.Status
}

// rawReservation stores a reservation without touching any table.
func (f *fixture) rawReservation(t *testing.T, name string, guests int, when time.Time, tableID string, status models.ReservationStatus) *models.Reservation {
	t.Helper()
	r := &models.Reservation{
		RestaurantID:    restaurantID,
		CustomerName:    name,
		Guests:          guests,
		ReservationDate: when,
		Status:          status,
	}
	if tableID != "" {
		r.TableID = &tableID
	}
	out, err := f.reservations.Create(context.Background(), r)
	require.NoError(t, err)
	return out
}

func at(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return ts
}

func day(t *testing.T, value string) time.Time {
	t.Helper()
	d, err := utils.ParseDay(value)
	require.NoError(t, err)
	return d
}
