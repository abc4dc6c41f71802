package models

import "gorm.io/gorm"

// AutoMigrate creates or updates the tables and reservations schema.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Table{},
		&Reservation{},
	)
}
