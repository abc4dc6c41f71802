package services

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/restaurant-tables/hub"
	"github.com/yeremiapane/restaurant-tables/models"
	"github.com/yeremiapane/restaurant-tables/utils"
	"golang.org/x/sync/errgroup"
)

// ReservationInput is a new booking as it arrives from a dashboard or the
// customer portal. Empty Status means "use the origin default".
type ReservationInput struct {
	RestaurantID    string                   `json:"-"`
	CustomerName    string                   `json:"customer_name"`
	CustomerEmail   string                   `json:"customer_email"`
	CustomerPhone   string                   `json:"customer_phone"`
	Guests          int                      `json:"guests"`
	ReservationDate time.Time                `json:"reservation_date"`
	TableID         string                   `json:"table_id"`
	Status          models.ReservationStatus `json:"status"`
	Origin          models.ReservationOrigin `json:"origin"`
	SpecialRequests string                   `json:"special_requests"`
}

// DayBoard is what a dashboard shows for one day.
type DayBoard struct {
	Day          string               `json:"day"`
	Indoor       []models.Table       `json:"indoor"`
	Outdoor      []models.Table       `json:"outdoor"`
	Reservations []models.Reservation `json:"reservations"`
	Stats        TableStats           `json:"stats"`
	Reconcile    *ReconcileResult     `json:"reconcile"`
}

// AllocationCoordinator keeps table status in step with reservation writes.
// Every mutation writes the reservation first and the table second; the two
// writes are not atomic and Reconcile is the correction path.
type AllocationCoordinator struct {
	tables           *TableRegistry
	reservations     *ReservationStore
	reconciler       *Reconciler
	hub              Broadcaster
	reconcileOnWrite bool
}

type CoordinatorOption func(*AllocationCoordinator)

// WithReconcileOnWrite re-derives the affected day after every mutation.
func WithReconcileOnWrite(enabled bool) CoordinatorOption {
	return func(c *AllocationCoordinator) { c.reconcileOnWrite = enabled }
}

func WithBroadcaster(b Broadcaster) CoordinatorOption {
	return func(c *AllocationCoordinator) {
		if b != nil {
			c.hub = b
		}
	}
}

func NewAllocationCoordinator(tables *TableRegistry, reservations *ReservationStore, reconciler *Reconciler, opts ...CoordinatorOption) *AllocationCoordinator {
	c := &AllocationCoordinator{
		tables:       tables,
		reservations: reservations,
		reconciler:   reconciler,
		hub:          hub.Nop{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreateReservation files a booking and, when a table is given, claims it.
// The table must exist, fit the party and be available; otherwise nothing is
// written. If the reservation is stored but the table write fails, the
// reservation is returned together with the error.
func (c *AllocationCoordinator) CreateReservation(ctx context.Context, in ReservationInput) (*models.Reservation, error) {
	origin := in.Origin
	if origin == "" {
		origin = models.OriginStaff
	}
	if _, ok := models.ParseReservationOrigin(string(origin)); !ok {
		return nil, utils.NewValidationError("origin", "unknown origin %q", origin)
	}
	status := in.Status
	if status == "" {
		status = origin.DefaultStatus()
	}

	res := &models.Reservation{
		RestaurantID:    in.RestaurantID,
		CustomerName:    strings.TrimSpace(in.CustomerName),
		Guests:          in.Guests,
		ReservationDate: in.ReservationDate.UTC(),
		Status:          status,
	}
	models.ReservationPatch{
		CustomerEmail:   &in.CustomerEmail,
		CustomerPhone:   &in.CustomerPhone,
		SpecialRequests: &in.SpecialRequests,
		TableID:         &in.TableID,
	}.Apply(res)

	if err := validateReservation(res); err != nil {
		return nil, err
	}

	claim := holding(res)
	if tid := res.AssignedTable(); tid != "" {
		lookup := c.fitting
		if claim != "" {
			lookup = c.assignable
		}
		table, err := lookup(ctx, res.RestaurantID, tid, res.Guests)
		if err != nil {
			return nil, err
		}
		res.TableNumber = &table.Name
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := c.reservations.Create(ctx, res); err != nil {
		return nil, err
	}

	// the reservation is stored; finish the table write even if the caller is gone
	wctx := context.WithoutCancel(ctx)
	var tableErr error
	if claim != "" {
		tableErr = c.setTableStatus(wctx, res, claim, models.TableStatusReserved)
	}

	c.log(res, "reservation created")
	c.hub.Broadcast(hub.Message{Event: hub.EventReservationCreate, RestaurantID: res.RestaurantID, Data: res})
	c.afterWrite(wctx, res.RestaurantID, res.ReservationDate)
	return res, tableErr
}

// UpdateReservation edits a booking. A newly assigned table is checked
// before anything is written. The previous table is released unless another
// active reservation of the previous day still holds it.
func (c *AllocationCoordinator) UpdateReservation(ctx context.Context, restaurantID, id string, patch models.ReservationPatch) (*models.Reservation, error) {
	current, err := c.reservations.Get(ctx, restaurantID, id)
	if err != nil {
		return nil, err
	}
	if patch.Status != nil {
		if _, ok := models.ParseReservationStatus(string(*patch.Status)); !ok {
			return nil, utils.NewValidationError("status", "unknown reservation status %q", *patch.Status)
		}
	}

	next := *current
	patch.Apply(&next)
	if err := validateReservation(&next); err != nil {
		return nil, err
	}

	before := holding(current)
	after := holding(&next)
	tableChanged := next.AssignedTable() != current.AssignedTable()

	switch tid := next.AssignedTable(); {
	case tid == "":
		next.TableNumber = nil
	case after != "" && after != before:
		// new claim: another table, or a cancelled booking coming back
		table, err := c.assignable(ctx, restaurantID, tid, next.Guests)
		if err != nil {
			return nil, err
		}
		next.TableNumber = &table.Name
	case tableChanged:
		table, err := c.fitting(ctx, restaurantID, tid, next.Guests)
		if err != nil {
			return nil, err
		}
		next.TableNumber = &table.Name
	case next.Guests != current.Guests:
		if err := c.checkCapacity(ctx, restaurantID, tid, next.Guests); err != nil {
			return nil, err
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := c.reservations.Save(ctx, &next); err != nil {
		return nil, err
	}

	wctx := context.WithoutCancel(ctx)
	var tableErr error
	if before != "" && before != after {
		tableErr = c.release(wctx, current, before)
	}
	if after != "" && after != before {
		if err := c.setTableStatus(wctx, &next, after, models.TableStatusReserved); err != nil && tableErr == nil {
			tableErr = err
		}
	}

	c.log(&next, "reservation updated")
	c.hub.Broadcast(hub.Message{Event: hub.EventReservationUpdate, RestaurantID: restaurantID, Data: &next})
	c.afterWrite(wctx, restaurantID, current.ReservationDate)
	if !utils.SameDay(current.ReservationDate, next.ReservationDate) {
		c.afterWrite(wctx, restaurantID, next.ReservationDate)
	}
	return &next, tableErr
}

// DeleteReservation removes a booking and frees its table when nothing else
// that day holds it. A failed release still returns the removed record.
func (c *AllocationCoordinator) DeleteReservation(ctx context.Context, restaurantID, id string) (*models.Reservation, error) {
	current, err := c.reservations.Get(ctx, restaurantID, id)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := c.reservations.Delete(ctx, restaurantID, id); err != nil {
		return nil, err
	}

	wctx := context.WithoutCancel(ctx)
	var tableErr error
	if tid := holding(current); tid != "" {
		tableErr = c.release(wctx, current, tid)
	}

	c.log(current, "reservation deleted")
	c.hub.Broadcast(hub.Message{
		Event:        hub.EventReservationDelete,
		RestaurantID: restaurantID,
		Data:         map[string]interface{}{"reservation_id": id},
	})
	c.afterWrite(wctx, restaurantID, current.ReservationDate)
	return current, tableErr
}

// CancelReservation marks a booking cancelled and frees its table like a
// delete would. Cancelling twice is a no-op.
func (c *AllocationCoordinator) CancelReservation(ctx context.Context, restaurantID, id, reason string) (*models.Reservation, error) {
	current, err := c.reservations.Get(ctx, restaurantID, id)
	if err != nil {
		return nil, err
	}
	if current.Status == models.ReservationCancelled {
		return current, nil
	}

	next := *current
	cancelled := models.ReservationCancelled
	models.ReservationPatch{Status: &cancelled, CancellationReason: &reason}.Apply(&next)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := c.reservations.Save(ctx, &next); err != nil {
		return nil, err
	}

	wctx := context.WithoutCancel(ctx)
	var tableErr error
	if tid := holding(current); tid != "" {
		tableErr = c.release(wctx, current, tid)
	}

	c.log(&next, "reservation cancelled")
	c.hub.Broadcast(hub.Message{Event: hub.EventReservationCancel, RestaurantID: restaurantID, Data: &next})
	c.afterWrite(wctx, restaurantID, next.ReservationDate)
	return &next, tableErr
}

// ConfirmReservation moves a pending booking to confirmed. Table state is
// unaffected: pending bookings already hold their table.
func (c *AllocationCoordinator) ConfirmReservation(ctx context.Context, restaurantID, id string) (*models.Reservation, error) {
	current, err := c.reservations.Get(ctx, restaurantID, id)
	if err != nil {
		return nil, err
	}
	switch current.Status {
	case models.ReservationConfirmed:
		return current, nil
	case models.ReservationCancelled:
		return nil, utils.NewConflictError("reservation %s is cancelled", id)
	}

	current.Status = models.ReservationConfirmed
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := c.reservations.Save(ctx, current); err != nil {
		return nil, err
	}

	c.log(current, "reservation confirmed")
	c.hub.Broadcast(hub.Message{Event: hub.EventReservationConfirm, RestaurantID: restaurantID, Data: current})
	return current, nil
}

// ChangeTableStatus is the manual override from the floor (seat guests,
// free a table). Only the documented transitions are accepted.
func (c *AllocationCoordinator) ChangeTableStatus(ctx context.Context, restaurantID, tableID string, status models.TableStatus) (*models.Table, error) {
	if _, ok := models.ParseTableStatus(string(status)); !ok {
		return nil, utils.NewValidationError("status", "unknown table status %q", status)
	}
	table, err := c.tables.GetTable(ctx, restaurantID, tableID)
	if err != nil {
		return nil, err
	}
	if !models.CanTransition(table.Status, status) {
		return nil, utils.NewConflictError("table %s cannot go from %s to %s", table.Name, table.Status, status)
	}
	return c.tables.SetStatus(ctx, restaurantID, tableID, status)
}

// ChangeTableStatusByName is the manual override for callers that address
// tables by display name. Every table carrying the name must accept the
// transition, otherwise none is changed.
func (c *AllocationCoordinator) ChangeTableStatusByName(ctx context.Context, restaurantID, name string, status models.TableStatus) ([]models.Table, error) {
	if _, ok := models.ParseTableStatus(string(status)); !ok {
		return nil, utils.NewValidationError("status", "unknown table status %q", status)
	}
	tables, err := c.tables.FindByName(ctx, restaurantID, name)
	if err != nil {
		return nil, err
	}
	if len(tables) == 0 {
		return nil, utils.NewNotFoundError("table", name)
	}
	for _, t := range tables {
		if !models.CanTransition(t.Status, status) {
			return nil, utils.NewConflictError("table %s (%s) cannot go from %s to %s", t.Name, t.Location, t.Status, status)
		}
	}
	if _, err := c.tables.SetStatusByName(ctx, restaurantID, name, status); err != nil {
		return nil, err
	}
	return c.tables.FindByName(ctx, restaurantID, name)
}

// NavigateToDay reconciles day and returns the resulting board.
func (c *AllocationCoordinator) NavigateToDay(ctx context.Context, restaurantID string, day time.Time) (*DayBoard, error) {
	if day.IsZero() {
		return nil, utils.NewValidationError("day", "is required")
	}
	result, err := c.reconciler.Reconcile(ctx, restaurantID, day)
	if err != nil {
		return nil, err
	}

	var (
		tables       []models.Table
		reservations []models.Reservation
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tables, err = c.tables.ListTables(gctx, restaurantID, nil)
		return err
	})
	g.Go(func() error {
		var err error
		reservations, err = c.reservations.ListForDay(gctx, restaurantID, day)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	board := &DayBoard{
		Day:          utils.FormatDay(day),
		Indoor:       []models.Table{},
		Outdoor:      []models.Table{},
		Reservations: reservations,
		Stats:        statsOf(tables),
		Reconcile:    result,
	}
	for _, t := range tables {
		if t.Location == models.LocationOutdoor {
			board.Outdoor = append(board.Outdoor, t)
		} else {
			board.Indoor = append(board.Indoor, t)
		}
	}
	return board, nil
}

// Reconcile exposes the explicit trigger.
func (c *AllocationCoordinator) Reconcile(ctx context.Context, restaurantID string, day time.Time) (*ReconcileResult, error) {
	return c.reconciler.Reconcile(ctx, restaurantID, day)
}

// fitting loads the table and checks it seats guests.
func (c *AllocationCoordinator) fitting(ctx context.Context, restaurantID, tableID string, guests int) (*models.Table, error) {
	table, err := c.tables.GetTable(ctx, restaurantID, tableID)
	if err != nil {
		return nil, err
	}
	if table.Capacity < guests {
		return nil, utils.NewValidationError("table_id", "table %s seats %d, party is %d", table.Name, table.Capacity, guests)
	}
	return table, nil
}

// assignable is fitting plus the table being free right now.
func (c *AllocationCoordinator) assignable(ctx context.Context, restaurantID, tableID string, guests int) (*models.Table, error) {
	table, err := c.fitting(ctx, restaurantID, tableID, guests)
	if err != nil {
		return nil, err
	}
	if table.Status != models.TableStatusAvailable {
		return nil, utils.NewConflictError("table %s is %s", table.Name, table.Status)
	}
	return table, nil
}

// checkCapacity is the guest-count check for an unchanged assignment. A
// table that no longer exists counts as no table.
func (c *AllocationCoordinator) checkCapacity(ctx context.Context, restaurantID, tableID string, guests int) error {
	table, err := c.tables.GetTable(ctx, restaurantID, tableID)
	if utils.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if table.Capacity < guests {
		return utils.NewValidationError("guests", "table %s seats %d, party is %d", table.Name, table.Capacity, guests)
	}
	return nil
}

// release frees tableID unless another active reservation of res's day
// still references it. A table deleted in the meantime is ignored.
func (c *AllocationCoordinator) release(ctx context.Context, res *models.Reservation, tableID string) error {
	held, err := c.reservations.ActiveTableIDsForDay(ctx, res.RestaurantID, res.ReservationDate, res.ID)
	if err != nil {
		c.logTableFailure(res, tableID, err)
		return err
	}
	if _, ok := held[tableID]; ok {
		return nil
	}
	return c.setTableStatus(ctx, res, tableID, models.TableStatusAvailable)
}

func (c *AllocationCoordinator) setTableStatus(ctx context.Context, res *models.Reservation, tableID string, status models.TableStatus) error {
	_, err := c.tables.SetStatus(ctx, res.RestaurantID, tableID, status)
	if err == nil || utils.IsNotFound(err) {
		return nil
	}
	c.logTableFailure(res, tableID, err)
	return err
}

func (c *AllocationCoordinator) afterWrite(ctx context.Context, restaurantID string, day time.Time) {
	if !c.reconcileOnWrite {
		return
	}
	if _, err := c.reconciler.Reconcile(ctx, restaurantID, day); err != nil {
		utils.ErrorLogger.WithFields(logrus.Fields{
			"restaurant_id": restaurantID,
			"day":           utils.FormatDay(day),
		}).Errorf("reconcile after write failed: %v", err)
	}
}

func (c *AllocationCoordinator) log(res *models.Reservation, msg string) {
	utils.InfoLogger.WithFields(logrus.Fields{
		"restaurant_id":  res.RestaurantID,
		"reservation_id": res.ID,
		"table_id":       res.AssignedTable(),
		"status":         res.Status,
	}).Info(msg)
}

func (c *AllocationCoordinator) logTableFailure(res *models.Reservation, tableID string, err error) {
	utils.ErrorLogger.WithFields(logrus.Fields{
		"restaurant_id":  res.RestaurantID,
		"reservation_id": res.ID,
		"table_id":       tableID,
	}).Errorf("table write after reservation write failed, next reconcile corrects it: %v", err)
}

// holding is the table a reservation keeps out of circulation, if any.
func holding(r *models.Reservation) string {
	if !r.Active() {
		return ""
	}
	return r.AssignedTable()
}
