package booking

// BookingStatus is the lifecycle status of a booking.
type BookingStatus string

const (
	StatusBooked          BookingStatus = "BOOKED"
	StatusPaid            BookingStatus = "PAID"
	StatusShootDone       BookingStatus = "SHOOT_DONE"
	StatusPhotosDelivered BookingStatus = "PHOTOS_DELIVERED"
	StatusClosed          BookingStatus = "CLOSED"
	StatusCancelled       BookingStatus = "CANCELLED"
)

// PaymentStatus is the manually asserted payment state of a booking.
type PaymentStatus string

const (
	PaymentUnpaid        PaymentStatus = "UNPAID"
	PaymentPartiallyPaid PaymentStatus = "PARTIALLY_PAID"
	PaymentPaid          PaymentStatus = "PAID"
)

// HistoryAction classifies a booking history entry.
type HistoryAction string

const (
	ActionStatusChanged        HistoryAction = "STATUS_CHANGED"
	ActionPaymentUpdated       HistoryAction = "PAYMENT_UPDATED"
	ActionRescheduled          HistoryAction = "RESCHEDULED"
	ActionPaymentProofUploaded HistoryAction = "PAYMENT_PROOF_UPLOADED"
	ActionPrintOrderUpdated    HistoryAction = "PRINT_ORDER_UPDATED"
	ActionPhotoLinkUpdated     HistoryAction = "PHOTO_LINK_UPDATED"
)

// Helper methods for BookingStatus
func (bs BookingStatus) String() string {
	return string(bs)
}

func (bs BookingStatus) IsValid() bool {
	switch bs {
	case StatusBooked, StatusPaid, StatusShootDone, StatusPhotosDelivered, StatusClosed, StatusCancelled:
		return true
	default:
		return false
	}
}

// IsCancelled reports whether the booking is in the immutable cancelled
// state. Deletion is the only operation allowed afterwards.
func (bs BookingStatus) IsCancelled() bool {
	return bs == StatusCancelled
}

// Rank returns the position of a status on the linear fulfillment path.
// CANCELLED sits outside the path and ranks -1.
func (bs BookingStatus) Rank() int {
	switch bs {
	case StatusBooked:
		return 0
	case StatusPaid:
		return 1
	case StatusShootDone:
		return 2
	case StatusPhotosDelivered:
		return 3
	case StatusClosed:
		return 4
	default:
		return -1
	}
}

// ImpliesPayment reports whether reaching this status means the client
// must already have paid.
func (bs BookingStatus) ImpliesPayment() bool {
	switch bs {
	case StatusPaid, StatusShootDone, StatusPhotosDelivered, StatusClosed:
		return true
	default:
		return false
	}
}

// GetAllBookingStatuses returns all valid booking statuses.
func GetAllBookingStatuses() []BookingStatus {
	return []BookingStatus{
		StatusBooked,
		StatusPaid,
		StatusShootDone,
		StatusPhotosDelivered,
		StatusClosed,
		StatusCancelled,
	}
}

// Helper methods for PaymentStatus
func (ps PaymentStatus) String() string {
	return string(ps)
}

func (ps PaymentStatus) IsValid() bool {
	switch ps {
	case PaymentUnpaid, PaymentPartiallyPaid, PaymentPaid:
		return true
	default:
		return false
	}
}
