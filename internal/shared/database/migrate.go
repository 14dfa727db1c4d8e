package database

import (
	"skybook/internal/bookings"
	"skybook/internal/flights"
	"skybook/internal/users"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&users.User{},
		&flights.Flight{},
		&bookings.Booking{},
	); err != nil {
		return err
	}
	return migrateConstraints(db)
}

// migrateConstraints adds indexes the booking hot path relies on.
func migrateConstraints(db *gorm.DB) error {
	err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_bookings_flight_id
		ON bookings (flight_id);
	`).Error
	if err != nil {
		return err
	}

	return db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_bookings_user_id
		ON bookings (user_id);
	`).Error
}
