package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TableStatus string

const (
	TableStatusAvailable TableStatus = "available"
	TableStatusReserved  TableStatus = "reserved"
	TableStatusOccupied  TableStatus = "occupied"
)

type TableLocation string

const (
	LocationIndoor  TableLocation = "indoor"
	LocationOutdoor TableLocation = "outdoor"
)

// TableStatuses is the closed set, in board legend order.
var TableStatuses = []TableStatus{TableStatusAvailable, TableStatusReserved, TableStatusOccupied}

// TableLocations is the closed set, in board section order.
var TableLocations = []TableLocation{LocationIndoor, LocationOutdoor}

type Table struct {
	ID           string        `gorm:"type:varchar(36);primaryKey" json:"id"`
	RestaurantID string        `gorm:"type:varchar(64);not null;index;uniqueIndex:idx_tables_restaurant_location_name" json:"restaurant_id"`
	Name         string        `gorm:"type:varchar(50);not null;uniqueIndex:idx_tables_restaurant_location_name" json:"name"`
	Capacity     int           `gorm:"not null" json:"capacity"`
	Location     TableLocation `gorm:"type:varchar(16);not null;uniqueIndex:idx_tables_restaurant_location_name" json:"location"`
	Status       TableStatus   `gorm:"type:varchar(16);not null;default:'available';index" json:"status"`
	CreatedAt    time.Time     `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time     `gorm:"not null" json:"updated_at"`
}

func (t *Table) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// ParseTableStatus accepts only the canonical lowercase names.
func ParseTableStatus(s string) (TableStatus, bool) {
	switch st := TableStatus(strings.TrimSpace(s)); st {
	case TableStatusAvailable, TableStatusReserved, TableStatusOccupied:
		return st, true
	}
	return "", false
}

func ParseTableLocation(s string) (TableLocation, bool) {
	switch loc := TableLocation(strings.TrimSpace(s)); loc {
	case LocationIndoor, LocationOutdoor:
		return loc, true
	}
	return "", false
}

// CanTransition reports whether a manual status change from -> to is allowed.
// Staying in the same status is always allowed.
func CanTransition(from, to TableStatus) bool {
	if from == to {
		return true
	}
	switch from {
	case TableStatusAvailable:
		return to == TableStatusReserved
	case TableStatusReserved:
		return to == TableStatusOccupied || to == TableStatusAvailable
	case TableStatusOccupied:
		return to == TableStatusAvailable
	}
	return false
}
