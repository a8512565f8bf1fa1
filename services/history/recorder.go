package history

import (
	bookingModel "studio-booking/models/booking"

	"gorm.io/gorm"
)

// NewEntry builds one audit row for an observed field transition. The
// entry is not persisted until Record is called inside a transaction.
func NewEntry(bookingID uint, action bookingModel.HistoryAction, field, oldValue, newValue, changedBy string) bookingModel.BookingHistory {
	return bookingModel.BookingHistory{
		BookingID: bookingID,
		Action:    action,
		Field:     field,
		OldValue:  oldValue,
		NewValue:  newValue,
		ChangedBy: changedBy,
	}
}

// Record appends history entries within the caller's transaction, in the
// exact order given. The audit trail is read back in insertion order, so
// the caller's ordering of a combined operation (e.g. status change plus
// payment cascade) is significant. A failed insert fails the whole
// transaction; a booking mutation must never commit without its audit
// rows.
func Record(tx *gorm.DB, entries ...bookingModel.BookingHistory) error {
	for i := range entries {
		if err := tx.Create(&entries[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// ListForBooking returns the full audit trail of a booking in insertion
// order.
func ListForBooking(db *gorm.DB, bookingID uint) ([]bookingModel.BookingHistory, error) {
	var entries []bookingModel.BookingHistory
	err := db.Where("booking_id = ?", bookingID).Order("id asc").Find(&entries).Error
	return entries, err
}
