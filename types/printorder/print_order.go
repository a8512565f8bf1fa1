package printorder

import "fmt"

// CreatePrintOrderRequest creates the single print order for a booking.
type CreatePrintOrderRequest struct {
	BookingID uint `json:"booking_id" validate:"required"`
}

func (r CreatePrintOrderRequest) Validate() error {
	if r.BookingID == 0 {
		return fmt.Errorf("booking_id is required")
	}
	return nil
}

// UpdatePrintOrderRequest advances the status and/or updates side fields.
// All fields are optional; nil leaves a field untouched.
type UpdatePrintOrderRequest struct {
	Status          *string  `json:"status,omitempty"`
	SelectedPhotos  []string `json:"selected_photos,omitempty"`
	VendorName      *string  `json:"vendor_name,omitempty"`
	VendorNotes     *string  `json:"vendor_notes,omitempty"`
	ShippingAddress *string  `json:"shipping_address,omitempty"`
	Courier         *string  `json:"courier,omitempty"`
	TrackingNumber  *string  `json:"tracking_number,omitempty"`
}
