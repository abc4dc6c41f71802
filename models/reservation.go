package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pending"
	ReservationConfirmed ReservationStatus = "confirmed"
	ReservationCancelled ReservationStatus = "cancelled"
)

// ReservationOrigin says who filed the booking; it only drives the default status.
type ReservationOrigin string

const (
	OriginStaff    ReservationOrigin = "staff"
	OriginCustomer ReservationOrigin = "customer"
)

type Reservation struct {
	ID                 string            `gorm:"type:varchar(36);primaryKey" json:"id"`
	RestaurantID       string            `gorm:"type:varchar(64);not null;index:idx_reservations_restaurant_date" json:"restaurant_id"`
	CustomerName       string            `gorm:"type:varchar(255);not null" json:"customer_name"`
	CustomerEmail      *string           `gorm:"type:varchar(255)" json:"customer_email"`
	CustomerPhone      *string           `gorm:"type:varchar(50)" json:"customer_phone"`
	Guests             int               `gorm:"not null" json:"guests"`
	ReservationDate    time.Time         `gorm:"not null;index:idx_reservations_restaurant_date" json:"reservation_date"`
	TableID            *string           `gorm:"type:varchar(36);index" json:"table_id"`
	TableNumber        *string           `gorm:"type:varchar(50)" json:"table_number"`
	Status             ReservationStatus `gorm:"type:varchar(16);not null;default:'pending';index" json:"status"`
	SpecialRequests    *string           `gorm:"type:text" json:"special_requests"`
	ConfirmedAt        *time.Time        `json:"confirmed_at"`
	CancelledAt        *time.Time        `json:"cancelled_at"`
	CancellationReason *string           `gorm:"type:text" json:"cancellation_reason"`
	CreatedAt          time.Time         `gorm:"not null" json:"created_at"`
	UpdatedAt          time.Time         `gorm:"not null" json:"updated_at"`
}

func (r *Reservation) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	r.ReservationDate = r.ReservationDate.UTC()
	return nil
}

// Active reports whether the reservation counts for table occupancy.
func (r Reservation) Active() bool {
	return r.Status != ReservationCancelled
}

// AssignedTable returns the referenced table id, or "" when none.
func (r Reservation) AssignedTable() string {
	if r.TableID == nil {
		return ""
	}
	return *r.TableID
}

// ReservationPatch carries the fields of an edit. Nil means unchanged.
// TableID pointing at "" removes the table assignment.
type ReservationPatch struct {
	CustomerName       *string            `json:"customer_name"`
	CustomerEmail      *string            `json:"customer_email"`
	CustomerPhone      *string            `json:"customer_phone"`
	Guests             *int               `json:"guests"`
	ReservationDate    *time.Time         `json:"reservation_date"`
	TableID            *string            `json:"table_id"`
	Status             *ReservationStatus `json:"status"`
	SpecialRequests    *string            `json:"special_requests"`
	CancellationReason *string            `json:"cancellation_reason"`
}

// Apply copies the set fields onto r. Table name snapshots are the caller's job.
func (p ReservationPatch) Apply(r *Reservation) {
	if p.CustomerName != nil {
		r.CustomerName = strings.TrimSpace(*p.CustomerName)
	}
	if p.CustomerEmail != nil {
		r.CustomerEmail = nilIfEmpty(*p.CustomerEmail)
	}
	if p.CustomerPhone != nil {
		r.CustomerPhone = nilIfEmpty(*p.CustomerPhone)
	}
	if p.Guests != nil {
		r.Guests = *p.Guests
	}
	if p.ReservationDate != nil {
		r.ReservationDate = p.ReservationDate.UTC()
	}
	if p.TableID != nil {
		r.TableID = nilIfEmpty(*p.TableID)
	}
	if p.Status != nil {
		r.Status = *p.Status
	}
	if p.SpecialRequests != nil {
		r.SpecialRequests = nilIfEmpty(*p.SpecialRequests)
	}
	if p.CancellationReason != nil {
		r.CancellationReason = nilIfEmpty(*p.CancellationReason)
	}
}

func ParseReservationStatus(s string) (ReservationStatus, bool) {
	switch st := ReservationStatus(strings.TrimSpace(s)); st {
	case ReservationPending, ReservationConfirmed, ReservationCancelled:
		return st, true
	}
	return "", false
}

func ParseReservationOrigin(s string) (ReservationOrigin, bool) {
	switch o := ReservationOrigin(strings.TrimSpace(s)); o {
	case OriginStaff, OriginCustomer:
		return o, true
	}
	return "", false
}

// DefaultStatus: staff bookings are confirmed on entry, customer ones wait.
func (o ReservationOrigin) DefaultStatus() ReservationStatus {
	if o == OriginCustomer {
		return ReservationPending
	}
	return ReservationConfirmed
}

func nilIfEmpty(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
