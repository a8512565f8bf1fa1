package database

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// BookingCodeSequence backs the per-day booking-code counter. The counter
// is advanced with a single upsert statement so concurrent booking
// creation can never hand out the same number twice (the old
// count-then-insert approach raced under concurrent writers).
type BookingCodeSequence struct {
	Day        string `gorm:"type:varchar(8);primaryKey"`
	LastNumber int    `gorm:"not null;default:0"`
}

// TableName sets the table name for the BookingCodeSequence model
func (BookingCodeSequence) TableName() string {
	return "booking_code_sequences"
}

// NextBookingCode atomically reserves the next sequential number for the
// given calendar day and formats it as YJ-YYYYMMDD-NNN. Must run inside
// the caller's transaction so an aborted booking insert releases nothing
// visible.
func NextBookingCode(tx *gorm.DB, date time.Time) (string, error) {
	day := date.Format("20060102")

	var n int
	err := tx.Raw(`
		INSERT INTO booking_code_sequences (day, last_number)
		VALUES (?, 1)
		ON CONFLICT (day)
		DO UPDATE SET last_number = booking_code_sequences.last_number + 1
		RETURNING last_number`, day).Scan(&n).Error
	if err != nil {
		return "", fmt.Errorf("failed to advance booking code sequence: %w", err)
	}

	return fmt.Sprintf("YJ-%s-%03d", day, n), nil
}
