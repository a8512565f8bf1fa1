package transition

import (
	"fmt"
	"time"

	bookingModel "studio-booking/models/booking"
	printModel "studio-booking/models/printorder"
	"studio-booking/services/history"
	"studio-booking/types"
)

// Config carries the settings the engine needs at call time. They are
// resolved once at startup instead of being read from a settings store
// inside the engine, which keeps the state machine pure.
type Config struct {
	DefaultPaymentStatus bookingModel.PaymentStatus
}

// Engine drives booking status and payment-status changes: role policy,
// derived side effects, payment synchronization, the print-order closure
// cascade and the audit trail. All rejections happen before any field is
// mutated; all accepted mutations commit atomically with their history
// entries through the repository.
type Engine struct {
	repo  BookingRepository
	clock func() time.Time
	cfg   Config
}

func NewEngine(repo BookingRepository, clock func() time.Time, cfg Config) *Engine {
	if clock == nil {
		clock = time.Now
	}
	if !cfg.DefaultPaymentStatus.IsValid() {
		cfg.DefaultPaymentStatus = bookingModel.PaymentUnpaid
	}
	return &Engine{repo: repo, clock: clock, cfg: cfg}
}

// DefaultPaymentState is the payment state new bookings start with. When
// the configured default is PAID the creation time doubles as paidAt, so
// paidAt tracks the PAID payment status from the very first commit.
func (e *Engine) DefaultPaymentState() (bookingModel.PaymentStatus, *time.Time) {
	if e.cfg.DefaultPaymentStatus == bookingModel.PaymentPaid {
		now := e.clock()
		return bookingModel.PaymentPaid, &now
	}
	return e.cfg.DefaultPaymentStatus, nil
}

// StatusChangeExtra carries optional side payload for a status change.
type StatusChangeExtra struct {
	// PhotoLink may accompany a PHOTOS_DELIVERED transition.
	PhotoLink *string
}

// ChangeStatus applies a booking status transition requested by the given
// actor and returns the updated booking together with the history entries
// it committed. Requesting the current status is a successful no-op that
// records nothing.
func (e *Engine) ChangeStatus(bookingID uint, target bookingModel.BookingStatus, actor types.Actor, extra *StatusChangeExtra) (*bookingModel.Booking, []bookingModel.BookingHistory, error) {
	if !target.IsValid() {
		return nil, nil, fmt.Errorf("unknown booking status %q: %w", target, types.ErrValidation)
	}

	b, err := e.repo.FindByID(bookingID)
	if err != nil {
		return nil, nil, err
	}

	if b.Status.IsCancelled() {
		return nil, nil, fmt.Errorf("booking %s is cancelled and immutable: %w", b.BookingCode, types.ErrForbidden)
	}

	policy, ok := policyFor(actor.Role)
	if !ok {
		return nil, nil, fmt.Errorf("role %q may not change booking status: %w", actor.Role, types.ErrForbidden)
	}
	if policy.blockedAt(b.Status) {
		return nil, nil, fmt.Errorf("role %q is blocked while the booking is %s: %w", actor.Role, b.Status, types.ErrForbidden)
	}

	if target == b.Status {
		// Idempotent: succeed without touching anything.
		return b, nil, nil
	}

	if !policy.allowsStatusTarget(target) {
		return nil, nil, fmt.Errorf("role %q may not set status %s: %w", actor.Role, target, types.ErrForbidden)
	}

	now := e.clock()
	oldStatus := b.Status
	b.Status = target

	entries := []bookingModel.BookingHistory{
		history.NewEntry(b.ID, bookingModel.ActionStatusChanged, "status", oldStatus.String(), target.String(), actor.ID),
	}

	// Delivery timestamp follows the PHOTOS_DELIVERED state exactly: set
	// on entry, cleared when the booking is moved back before it.
	if target == bookingModel.StatusPhotosDelivered {
		b.DeliveredAt = &now
	} else if r := target.Rank(); r >= 0 && r < bookingModel.StatusPhotosDelivered.Rank() && b.DeliveredAt != nil {
		b.DeliveredAt = nil
	}

	// Progressing to PAID or beyond means the client must have paid.
	if target.ImpliesPayment() && b.PaymentStatus != bookingModel.PaymentPaid {
		oldPay := b.PaymentStatus
		b.PaymentStatus = bookingModel.PaymentPaid
		if b.PaidAt == nil {
			b.PaidAt = &now
		}
		entries = append(entries,
			history.NewEntry(b.ID, bookingModel.ActionPaymentUpdated, "payment_status", oldPay.String(), bookingModel.PaymentPaid.String(), actor.ID))
	}

	if extra != nil && extra.PhotoLink != nil {
		oldLink := ""
		if b.PhotoLink != nil {
			oldLink = *b.PhotoLink
		}
		b.PhotoLink = extra.PhotoLink
		entries = append(entries,
			history.NewEntry(b.ID, bookingModel.ActionPhotoLinkUpdated, "photo_link", oldLink, *extra.PhotoLink, actor.ID))
	}

	// Closing the booking force-completes any attached print order,
	// skipping the normal linear ordering.
	var po *printModel.PrintOrder
	if target == bookingModel.StatusClosed {
		po, err = e.repo.FindPrintOrder(b.ID)
		if err != nil {
			return nil, nil, err
		}
		if po != nil && po.Status != printModel.PrintCompleted {
			oldPO := po.Status
			po.Status = printModel.PrintCompleted
			entries = append(entries,
				history.NewEntry(b.ID, bookingModel.ActionStatusChanged, "print_order_status", oldPO.String(), printModel.PrintCompleted.String(), actor.ID))
		} else {
			po = nil
		}
	}

	if err := e.repo.Commit(b, po, entries); err != nil {
		return nil, nil, fmt.Errorf("failed to commit status change: %w", err)
	}

	return b, entries, nil
}
