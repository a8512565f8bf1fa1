package schedule

import (
	"errors"
	"fmt"

	bookingModel "studio-booking/models/booking"
	"studio-booking/types"

	"github.com/jinzhu/now"
	"gorm.io/gorm"
)

// Detector loads the day's bookings and runs the pure conflict check.
// Queries are read-only and unlocked; concurrent writes elsewhere are
// tolerated.
type Detector struct {
	DB *gorm.DB
}

func NewDetector(db *gorm.DB) *Detector {
	return &Detector{DB: db}
}

// ForBooking computes the MUA conflicts for the given booking against all
// other non-cancelled bookings on the same calendar date.
func (d *Detector) ForBooking(bookingID uint) (*Conflicts, error) {
	var subject bookingModel.Booking
	if err := d.DB.Scopes(bookingModel.NotDeleted).Preload("AddOns").First(&subject, bookingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("booking %d: %w", bookingID, types.ErrNotFound)
		}
		return nil, err
	}

	day := now.New(subject.Date)
	var others []bookingModel.Booking
	err := d.DB.Scopes(bookingModel.NotDeleted).Preload("AddOns").
		Where("date BETWEEN ? AND ?", day.BeginningOfDay(), day.EndOfDay()).
		Where("id <> ?", subject.ID).
		Where("status <> ?", bookingModel.StatusCancelled).
		Find(&others).Error
	if err != nil {
		return nil, err
	}

	conflicts := Detect(&subject, others)
	return &conflicts, nil
}
