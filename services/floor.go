package services

import (
	"github.com/yeremiapane/restaurant-tables/database"
	"github.com/yeremiapane/restaurant-tables/hub"
	"gorm.io/gorm"
)

// Floor bundles the allocation components over one database.
type Floor struct {
	Tables       *TableRegistry
	Reservations *ReservationStore
	Matcher      *AvailabilityMatcher
	Reconciler   *Reconciler
	Coordinator  *AllocationCoordinator
}

func NewFloor(db *gorm.DB, b Broadcaster, opts ...CoordinatorOption) *Floor {
	if b == nil {
		b = hub.Nop{}
	}
	tableRepo := database.NewGormTableRepository(db)

	f := &Floor{}
	f.Tables = NewTableRegistry(tableRepo, b)
	f.Reservations = NewReservationStore(database.NewGormReservationRepository(db))
	f.Matcher = NewAvailabilityMatcher(f.Tables, f.Reservations)
	f.Reconciler = NewReconciler(tableRepo, f.Reservations, b)
	f.Coordinator = NewAllocationCoordinator(f.Tables, f.Reservations, f.Reconciler,
		append([]CoordinatorOption{WithBroadcaster(b)}, opts...)...)
	return f
}
