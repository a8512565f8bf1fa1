package transition

import (
	"errors"
	"testing"
	"time"

	"studio-booking/constants"
	bookingModel "studio-booking/models/booking"
	"studio-booking/types"
)

func owner() types.Actor {
	return types.Actor{ID: "owner-1", Role: constants.RoleOwner}
}

func TestChangePaymentStatusUnpaidRewindsBooking(t *testing.T) {
	// Admin undo path: a SHOOT_DONE/PAID booking marked UNPAID goes back
	// to BOOKED, paidAt is cleared, and the audit order is PAYMENT_UPDATED
	// then STATUS_CHANGED.
	delivered := testClock().Add(-2 * time.Hour)
	b := testBooking(bookingModel.StatusShootDone, bookingModel.PaymentPaid)
	b.DeliveredAt = &delivered
	repo := &fakeRepo{booking: b}
	engine := newTestEngine(repo)

	out, entries, err := engine.ChangePaymentStatus(1, bookingModel.PaymentUnpaid, owner())
	if err != nil {
		t.Fatalf("ChangePaymentStatus returned error: %v", err)
	}
	if out.Status != bookingModel.StatusBooked {
		t.Errorf("status = %s, want BOOKED", out.Status)
	}
	if out.PaymentStatus != bookingModel.PaymentUnpaid {
		t.Errorf("payment status = %s, want UNPAID", out.PaymentStatus)
	}
	if out.PaidAt != nil {
		t.Error("paidAt not cleared")
	}
	if out.DeliveredAt == nil {
		t.Error("deliveredAt must survive a payment rewind")
	}
	if len(entries) != 2 {
		t.Fatalf("got %d history entries, want 2", len(entries))
	}
	if entries[0].Action != bookingModel.ActionPaymentUpdated || entries[1].Action != bookingModel.ActionStatusChanged {
		t.Errorf("history order = %s, %s; want PAYMENT_UPDATED, STATUS_CHANGED", entries[0].Action, entries[1].Action)
	}
	if entries[1].OldValue != "SHOOT_DONE" || entries[1].NewValue != "BOOKED" {
		t.Errorf("status entry values = %s -> %s", entries[1].OldValue, entries[1].NewValue)
	}
}

func TestChangePaymentStatusPaidPromotesBooked(t *testing.T) {
	repo := &fakeRepo{booking: testBooking(bookingModel.StatusBooked, bookingModel.PaymentUnpaid)}
	engine := newTestEngine(repo)

	out, entries, err := engine.ChangePaymentStatus(1, bookingModel.PaymentPaid, owner())
	if err != nil {
		t.Fatalf("ChangePaymentStatus returned error: %v", err)
	}
	if out.Status != bookingModel.StatusPaid {
		t.Errorf("status = %s, want PAID", out.Status)
	}
	if out.PaidAt == nil {
		t.Error("paidAt not stamped")
	}
	if len(entries) != 2 {
		t.Errorf("got %d history entries, want 2", len(entries))
	}
}

func TestChangePaymentStatusPaidLeavesLaterStatusAlone(t *testing.T) {
	// Only BOOKED is promoted. A SHOOT_DONE booking stays SHOOT_DONE.
	b := testBooking(bookingModel.StatusShootDone, bookingModel.PaymentPartiallyPaid)
	repo := &fakeRepo{booking: b}
	engine := newTestEngine(repo)

	out, entries, err := engine.ChangePaymentStatus(1, bookingModel.PaymentPaid, owner())
	if err != nil {
		t.Fatalf("ChangePaymentStatus returned error: %v", err)
	}
	if out.Status != bookingModel.StatusShootDone {
		t.Errorf("status = %s, want SHOOT_DONE", out.Status)
	}
	if len(entries) != 1 {
		t.Errorf("got %d history entries, want 1", len(entries))
	}
}

func TestChangePaymentStatusPartiallyPaid(t *testing.T) {
	repo := &fakeRepo{booking: testBooking(bookingModel.StatusPaid, bookingModel.PaymentPaid)}
	engine := newTestEngine(repo)

	out, entries, err := engine.ChangePaymentStatus(1, bookingModel.PaymentPartiallyPaid, owner())
	if err != nil {
		t.Fatalf("ChangePaymentStatus returned error: %v", err)
	}
	if out.Status != bookingModel.StatusPaid {
		t.Errorf("status = %s, want PAID (no status side effect)", out.Status)
	}
	if out.PaidAt != nil {
		t.Error("paidAt must be nil unless payment status is PAID")
	}
	if len(entries) != 1 {
		t.Errorf("got %d history entries, want 1", len(entries))
	}
}

func TestChangePaymentStatusRoleLaw(t *testing.T) {
	// Payment edits are management-only. Every other role fails closed,
	// even before the booking is looked up.
	for _, role := range []string{constants.RolePhotographer, constants.RolePackagingStaff, "CLIENT", ""} {
		t.Run(role, func(t *testing.T) {
			repo := &fakeRepo{booking: testBooking(bookingModel.StatusBooked, bookingModel.PaymentUnpaid)}
			engine := newTestEngine(repo)

			_, _, err := engine.ChangePaymentStatus(1, bookingModel.PaymentPaid, types.Actor{ID: "x", Role: role})
			if !errors.Is(err, types.ErrForbidden) {
				t.Fatalf("role %q: err = %v, want ErrForbidden", role, err)
			}
			if repo.commits != 0 {
				t.Error("forbidden change was committed")
			}
		})
	}
}

func TestChangePaymentStatusIdempotent(t *testing.T) {
	repo := &fakeRepo{booking: testBooking(bookingModel.StatusPaid, bookingModel.PaymentPaid)}
	engine := newTestEngine(repo)

	_, entries, err := engine.ChangePaymentStatus(1, bookingModel.PaymentPaid, owner())
	if err != nil {
		t.Fatalf("ChangePaymentStatus returned error: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("no-op recorded %d history entries", len(entries))
	}
	if repo.commits != 0 {
		t.Errorf("no-op committed %d times", repo.commits)
	}
}

func TestChangePaymentStatusCancelledIsImmutable(t *testing.T) {
	repo := &fakeRepo{booking: testBooking(bookingModel.StatusCancelled, bookingModel.PaymentUnpaid)}
	engine := newTestEngine(repo)

	_, _, err := engine.ChangePaymentStatus(1, bookingModel.PaymentPaid, owner())
	if !errors.Is(err, types.ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
}

func TestChangePaymentStatusUnknownValue(t *testing.T) {
	repo := &fakeRepo{booking: testBooking(bookingModel.StatusBooked, bookingModel.PaymentUnpaid)}
	engine := newTestEngine(repo)

	_, _, err := engine.ChangePaymentStatus(1, "REFUNDED", owner())
	if !errors.Is(err, types.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestPaidAtTracksPaidPaymentState(t *testing.T) {
	// paidAt is non-nil exactly while the payment status is PAID.
	repo := &fakeRepo{booking: testBooking(bookingModel.StatusBooked, bookingModel.PaymentUnpaid)}
	engine := newTestEngine(repo)

	steps := []bookingModel.PaymentStatus{
		bookingModel.PaymentPartiallyPaid,
		bookingModel.PaymentPaid,
		bookingModel.PaymentUnpaid,
		bookingModel.PaymentPaid,
	}
	for _, target := range steps {
		out, _, err := engine.ChangePaymentStatus(1, target, owner())
		if err != nil {
			t.Fatalf("step %s: %v", target, err)
		}
		wantSet := target == bookingModel.PaymentPaid
		if (out.PaidAt != nil) != wantSet {
			t.Errorf("after %s: paidAt set = %v, want %v", target, out.PaidAt != nil, wantSet)
		}
	}
}
