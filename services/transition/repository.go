package transition

import (
	"errors"
	"fmt"

	bookingModel "studio-booking/models/booking"
	printModel "studio-booking/models/printorder"
	"studio-booking/services/history"
	"studio-booking/types"

	"gorm.io/gorm"
)

// BookingRepository is the persistence contract the lifecycle engine
// works against. Commit must apply the booking update, the optional print
// order update and all history inserts in one atomic transaction; a
// failure anywhere rolls back everything.
type BookingRepository interface {
	FindByID(id uint) (*bookingModel.Booking, error)
	// FindPrintOrder returns (nil, nil) when the booking has no print
	// order yet.
	FindPrintOrder(bookingID uint) (*printModel.PrintOrder, error)
	Commit(b *bookingModel.Booking, po *printModel.PrintOrder, entries []bookingModel.BookingHistory) error
}

// GormBookingRepository is the production BookingRepository over Postgres.
type GormBookingRepository struct {
	DB *gorm.DB
}

func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{DB: db}
}

func (r *GormBookingRepository) FindByID(id uint) (*bookingModel.Booking, error) {
	var b bookingModel.Booking
	if err := r.DB.Scopes(bookingModel.NotDeleted).Preload("AddOns").First(&b, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("booking %d: %w", id, types.ErrNotFound)
		}
		return nil, err
	}
	return &b, nil
}

func (r *GormBookingRepository) FindPrintOrder(bookingID uint) (*printModel.PrintOrder, error) {
	var po printModel.PrintOrder
	if err := r.DB.Where("booking_id = ?", bookingID).First(&po).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &po, nil
}

// Commit writes the mutated aggregate and its audit rows atomically.
func (r *GormBookingRepository) Commit(b *bookingModel.Booking, po *printModel.PrintOrder, entries []bookingModel.BookingHistory) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(b).Error; err != nil {
			return err
		}
		if po != nil {
			if err := tx.Save(po).Error; err != nil {
				return err
			}
		}
		return history.Record(tx, entries...)
	})
}
