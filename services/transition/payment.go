package transition

import (
	"fmt"

	"studio-booking/logger"
	bookingModel "studio-booking/models/booking"
	"studio-booking/services/history"
	"studio-booking/types"
)

// ChangePaymentStatus applies a payment-status change and the coupled
// status side effects. Only management roles may call this; everyone else
// fails closed regardless of the booking's state.
//
// Moving to UNPAID rewinds the booking status to BOOKED no matter how far
// fulfillment had progressed. That is the intended admin undo path; it
// deliberately leaves DeliveredAt and the print order untouched.
func (e *Engine) ChangePaymentStatus(bookingID uint, target bookingModel.PaymentStatus, actor types.Actor) (*bookingModel.Booking, []bookingModel.BookingHistory, error) {
	policy, ok := policyFor(actor.Role)
	if !ok || !policy.canEditPayment {
		return nil, nil, fmt.Errorf("role %q may not change payment status: %w", actor.Role, types.ErrForbidden)
	}

	if !target.IsValid() {
		return nil, nil, fmt.Errorf("unknown payment status %q: %w", target, types.ErrValidation)
	}

	b, err := e.repo.FindByID(bookingID)
	if err != nil {
		return nil, nil, err
	}

	if b.Status.IsCancelled() {
		return nil, nil, fmt.Errorf("booking %s is cancelled and immutable: %w", b.BookingCode, types.ErrForbidden)
	}

	if target == b.PaymentStatus {
		// Idempotent: succeed without a duplicate history entry.
		return b, nil, nil
	}

	now := e.clock()
	oldPay := b.PaymentStatus
	b.PaymentStatus = target

	// Payment entry first, then any cascaded status entry: the audit
	// trail replays in this order.
	entries := []bookingModel.BookingHistory{
		history.NewEntry(b.ID, bookingModel.ActionPaymentUpdated, "payment_status", oldPay.String(), target.String(), actor.ID),
	}

	switch target {
	case bookingModel.PaymentPaid:
		if b.PaidAt == nil {
			b.PaidAt = &now
		}
		if b.Status == bookingModel.StatusBooked {
			b.Status = bookingModel.StatusPaid
			entries = append(entries,
				history.NewEntry(b.ID, bookingModel.ActionStatusChanged, "status", bookingModel.StatusBooked.String(), bookingModel.StatusPaid.String(), actor.ID))
		}

	case bookingModel.PaymentUnpaid:
		b.PaidAt = nil
		if b.Status != bookingModel.StatusBooked {
			if b.Status.Rank() > bookingModel.StatusPaid.Rank() {
				logger.Warning(fmt.Sprintf("Booking %s rewound from %s to BOOKED by UNPAID payment change (actor %s)", b.BookingCode, b.Status, actor.ID))
			}
			oldStatus := b.Status
			b.Status = bookingModel.StatusBooked
			entries = append(entries,
				history.NewEntry(b.ID, bookingModel.ActionStatusChanged, "status", oldStatus.String(), bookingModel.StatusBooked.String(), actor.ID))
		}

	case bookingModel.PaymentPartiallyPaid:
		// No status side effect. PaidAt tracks the PAID payment state
		// only.
		b.PaidAt = nil
	}

	if err := e.repo.Commit(b, nil, entries); err != nil {
		return nil, nil, fmt.Errorf("failed to commit payment status change: %w", err)
	}

	return b, entries, nil
}
