package booking

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// AddOnRequest is one extra service line on a booking create request.
type AddOnRequest struct {
	ItemName  string `json:"item_name" validate:"required,min=1,max=255"`
	Quantity  int    `json:"quantity" validate:"required,gte=1"`
	UnitPrice int64  `json:"unit_price" validate:"gte=0"`
}

// BookingCreateRequest represents the request payload for creating a booking
type BookingCreateRequest struct {
	CustomerName  string `json:"customer_name" validate:"required,min=1,max=255"`
	CustomerPhone string `json:"customer_phone" validate:"required,min=5,max=20"`
	PackageName   string `json:"package_name" validate:"required,min=1,max=255"`

	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime string `json:"start_time" validate:"required"`
	EndTime   string `json:"end_time" validate:"required"`

	PackagePrice   int64 `json:"package_price" validate:"gte=0"`
	DiscountAmount int64 `json:"discount_amount" validate:"gte=0"`

	AddOns []AddOnRequest `json:"add_ons" validate:"dive"`

	Notes string `json:"notes" validate:"omitempty"`
}

func (b BookingCreateRequest) Validate() error {
	if err := validate.Struct(b); err != nil {
		return fmt.Errorf("invalid booking request: %w", err)
	}
	return nil
}

// ChangeStatusRequest drives a booking status transition.
type ChangeStatusRequest struct {
	Status    string  `json:"status" validate:"required"`
	PhotoLink *string `json:"photo_link,omitempty"`
}

func (r ChangeStatusRequest) Validate() error {
	if r.Status == "" {
		return fmt.Errorf("status is required")
	}
	return nil
}

// ChangePaymentStatusRequest drives a payment-status change.
type ChangePaymentStatusRequest struct {
	PaymentStatus string `json:"payment_status" validate:"required"`
}

func (r ChangePaymentStatusRequest) Validate() error {
	if r.PaymentStatus == "" {
		return fmt.Errorf("payment_status is required")
	}
	return nil
}

// RescheduleRequest moves a booking to a new slot.
type RescheduleRequest struct {
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime string `json:"start_time" validate:"required"`
	EndTime   string `json:"end_time" validate:"required"`
}

func (r RescheduleRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("invalid reschedule request: %w", err)
	}
	return nil
}
