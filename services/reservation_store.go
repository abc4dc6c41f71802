package services

import (
	"context"
	"strings"
	"time"

	"github.com/yeremiapane/restaurant-tables/database"
	"github.com/yeremiapane/restaurant-tables/models"
	"github.com/yeremiapane/restaurant-tables/utils"
)

// ReservationStore owns reservation records. It does not touch tables.
type ReservationStore struct {
	repo database.ReservationRepository
	now  func() time.Time
}

func NewReservationStore(repo database.ReservationRepository) *ReservationStore {
	return &ReservationStore{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// ListForDay returns reservations in [day 00:00, next day 00:00) of the
// restaurant zone, earliest first.
func (s *ReservationStore) ListForDay(ctx context.Context, restaurantID string, day time.Time) ([]models.Reservation, error) {
	if err := requireRestaurant(restaurantID); err != nil {
		return nil, err
	}
	if day.IsZero() {
		return nil, utils.NewValidationError("day", "is required")
	}
	from, to := utils.DayBounds(day)
	return s.repo.ListBetween(ctx, restaurantID, from, to)
}

// Search filters the day list by a case-insensitive customer name fragment.
func (s *ReservationStore) Search(ctx context.Context, restaurantID string, day time.Time, query string) ([]models.Reservation, error) {
	list, err := s.ListForDay(ctx, restaurantID, day)
	if err != nil {
		return nil, err
	}
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return list, nil
	}

	out := make([]models.Reservation, 0, len(list))
	for _, r := range list {
		if strings.Contains(strings.ToLower(r.CustomerName), query) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *ReservationStore) Get(ctx context.Context, restaurantID, id string) (*models.Reservation, error) {
	if err := requireRestaurant(restaurantID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(id) == "" {
		return nil, utils.NewValidationError("reservation_id", "is required")
	}
	return s.repo.Get(ctx, restaurantID, id)
}

// Create validates and inserts r. Status must already be set.
func (s *ReservationStore) Create(ctx context.Context, r *models.Reservation) (*models.Reservation, error) {
	r.CustomerName = strings.TrimSpace(r.CustomerName)
	if err := validateReservation(r); err != nil {
		return nil, err
	}
	s.stamp(r)
	if err := s.repo.Insert(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// Update applies patch to the stored reservation. Table assignment rules
// live in the coordinator; this is the raw record edit.
func (s *ReservationStore) Update(ctx context.Context, restaurantID, id string, patch models.ReservationPatch) (*models.Reservation, error) {
	current, err := s.Get(ctx, restaurantID, id)
	if err != nil {
		return nil, err
	}
	patch.Apply(current)
	if err := s.Save(ctx, current); err != nil {
		return nil, err
	}
	return current, nil
}

// Save validates r and overwrites the stored record.
func (s *ReservationStore) Save(ctx context.Context, r *models.Reservation) error {
	if err := validateReservation(r); err != nil {
		return err
	}
	s.stamp(r)
	return s.repo.Update(ctx, r)
}

func (s *ReservationStore) Delete(ctx context.Context, restaurantID, id string) error {
	if err := requireRestaurant(restaurantID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, restaurantID, id)
}

// ActiveTableIDsForDay returns the table ids referenced by active
// reservations of that day, skipping excludeID.
func (s *ReservationStore) ActiveTableIDsForDay(ctx context.Context, restaurantID string, day time.Time, excludeID string) (map[string]struct{}, error) {
	list, err := s.ListForDay(ctx, restaurantID, day)
	if err != nil {
		return nil, err
	}
	return activeTableIDs(list, excludeID), nil
}

func activeTableIDs(list []models.Reservation, excludeID string) map[string]struct{} {
	ids := make(map[string]struct{})
	for _, r := range list {
		if r.ID == excludeID || !r.Active() {
			continue
		}
		if tid := r.AssignedTable(); tid != "" {
			ids[tid] = struct{}{}
		}
	}
	return ids
}

// stamp keeps the confirmation/cancellation timestamps in line with Status.
func (s *ReservationStore) stamp(r *models.Reservation) {
	now := s.now()
	switch r.Status {
	case models.ReservationConfirmed:
		if r.ConfirmedAt == nil {
			r.ConfirmedAt = &now
		}
		r.CancelledAt = nil
	case models.ReservationCancelled:
		if r.CancelledAt == nil {
			r.CancelledAt = &now
		}
	default:
		r.CancelledAt = nil
	}
}

func validateReservation(r *models.Reservation) error {
	if err := requireRestaurant(r.RestaurantID); err != nil {
		return err
	}
	if strings.TrimSpace(r.CustomerName) == "" {
		return utils.NewValidationError("customer_name", "is required")
	}
	if r.Guests <= 0 {
		return utils.NewValidationError("guests", "must be greater than zero")
	}
	if r.ReservationDate.IsZero() {
		return utils.NewValidationError("reservation_date", "is required")
	}
	if _, ok := models.ParseReservationStatus(string(r.Status)); !ok {
		return utils.NewValidationError("status", "unknown reservation status %q", r.Status)
	}
	return nil
}
