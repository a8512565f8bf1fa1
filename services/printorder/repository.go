package printorder

import (
	"errors"
	"fmt"

	"studio-booking/logger"
	bookingModel "studio-booking/models/booking"
	printModel "studio-booking/models/printorder"
	"studio-booking/services/history"
	"studio-booking/types"

	"gorm.io/gorm"
)

// GormRepository is the production Repository over Postgres.
type GormRepository struct {
	DB *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{DB: db}
}

func (r *GormRepository) FindBooking(id uint) (*bookingModel.Booking, error) {
	var b bookingModel.Booking
	if err := r.DB.Scopes(bookingModel.NotDeleted).First(&b, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("booking %d: %w", id, types.ErrNotFound)
		}
		return nil, err
	}
	return &b, nil
}

func (r *GormRepository) FindByBookingID(bookingID uint) (*printModel.PrintOrder, error) {
	var po printModel.PrintOrder
	if err := r.DB.Where("booking_id = ?", bookingID).First(&po).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &po, nil
}

func (r *GormRepository) Create(po *printModel.PrintOrder) error {
	return r.DB.Create(po).Error
}

// Save commits the print order together with its audit rows.
func (r *GormRepository) Save(po *printModel.PrintOrder, entries []bookingModel.BookingHistory) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(po).Error; err != nil {
			return err
		}
		return history.Record(tx, entries...)
	})
}

// RecordBestEffort writes an ancillary audit row, logging instead of
// failing when the insert goes wrong.
func (r *GormRepository) RecordBestEffort(entry bookingModel.BookingHistory) {
	if err := r.DB.Create(&entry).Error; err != nil {
		logger.Error(fmt.Sprintf("Failed to record audit entry for booking %d", entry.BookingID), err)
	}
}
