package database

import (
	"context"
	"time"

	"github.com/yeremiapane/restaurant-tables/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReservationRepository is the record-store boundary for the reservations relation.
type ReservationRepository interface {
	// Reservasi dalam rentang [from, to), urut berdasarkan waktu.
	ListBetween(ctx context.Context, restaurantID string, from, to time.Time) ([]models.Reservation, error)
	Get(ctx context.Context, restaurantID, id string) (*models.Reservation, error)
	Insert(ctx context.Context, reservation *models.Reservation) error
	// Update writes every column of reservation; NotFound when the row is gone.
	Update(ctx context.Context, reservation *models.Reservation) error
	Delete(ctx context.Context, restaurantID, id string) error
}

type GormReservationRepository struct {
	db *gorm.DB
}

func NewGormReservationRepository(db *gorm.DB) *GormReservationRepository {
	return &GormReservationRepository{db: db}
}

func (r *GormReservationRepository) ListBetween(ctx context.Context, restaurantID string, from, to time.Time) ([]models.Reservation, error) {
	var reservations []models.Reservation
	err := r.db.WithContext(ctx).
		Where("restaurant_id = ?", restaurantID).
		Where("reservation_date >= ? AND reservation_date < ?", from.UTC(), to.UTC()).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "reservation_date"}}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "created_at"}}).
		Find(&reservations).Error
	if err != nil {
		return nil, storeErr("list", "reservations", restaurantID, err)
	}
	return reservations, nil
}

func (r *GormReservationRepository) Get(ctx context.Context, restaurantID, id string) (*models.Reservation, error) {
	var res models.Reservation
	err := r.db.WithContext(ctx).
		Where("restaurant_id = ? AND id = ?", restaurantID, id).
		First(&res).Error
	if err != nil {
		return nil, storeErr("get", "reservation", id, err)
	}
	return &res, nil
}

func (r *GormReservationRepository) Insert(ctx context.Context, reservation *models.Reservation) error {
	if err := r.db.WithContext(ctx).Create(reservation).Error; err != nil {
		return storeErr("insert", "reservation", reservation.ID, err)
	}
	return nil
}

func (r *GormReservationRepository) Update(ctx context.Context, reservation *models.Reservation) error {
	reservation.ReservationDate = reservation.ReservationDate.UTC()
	res := r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("restaurant_id = ? AND id = ?", reservation.RestaurantID, reservation.ID).
		Select("*").
		Omit("id", "restaurant_id", "created_at").
		Updates(reservation)
	if res.Error != nil {
		return storeErr("update", "reservation", reservation.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return storeErr("update", "reservation", reservation.ID, gorm.ErrRecordNotFound)
	}
	return nil
}

func (r *GormReservationRepository) Delete(ctx context.Context, restaurantID, id string) error {
	res := r.db.WithContext(ctx).
		Where("restaurant_id = ? AND id = ?", restaurantID, id).
		Delete(&models.Reservation{})
	if res.Error != nil {
		return storeErr("delete", "reservation", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return storeErr("delete", "reservation", id, gorm.ErrRecordNotFound)
	}
	return nil
}
