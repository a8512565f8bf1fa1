package transition

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"studio-booking/constants"
	bookingModel "studio-booking/models/booking"
	printModel "studio-booking/models/printorder"
	"studio-booking/types"
)

// fakeRepo is an in-memory BookingRepository. FindByID hands out copies;
// Commit swaps the stored row, so a failed commit leaves the original
// untouched, mirroring transactional rollback.
type fakeRepo struct {
	booking    *bookingModel.Booking
	printOrder *printModel.PrintOrder

	commitErr error
	commits   int
	entries   []bookingModel.BookingHistory
}

func (f *fakeRepo) FindByID(id uint) (*bookingModel.Booking, error) {
	if f.booking == nil || f.booking.ID != id {
		return nil, fmt.Errorf("booking %d: %w", id, types.ErrNotFound)
	}
	cp := *f.booking
	return &cp, nil
}

func (f *fakeRepo) FindPrintOrder(bookingID uint) (*printModel.PrintOrder, error) {
	if f.printOrder == nil || f.printOrder.BookingID != bookingID {
		return nil, nil
	}
	cp := *f.printOrder
	return &cp, nil
}

func (f *fakeRepo) Commit(b *bookingModel.Booking, po *printModel.PrintOrder, entries []bookingModel.BookingHistory) error {
	if f.commitErr != nil {
		return f.commitErr
	}
	f.commits++
	cp := *b
	f.booking = &cp
	if po != nil {
		poCp := *po
		f.printOrder = &poCp
	}
	f.entries = append(f.entries, entries...)
	return nil
}

var testClock = func() time.Time {
	return time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
}

func newTestEngine(repo *fakeRepo) *Engine {
	return NewEngine(repo, testClock, Config{DefaultPaymentStatus: bookingModel.PaymentUnpaid})
}

func testBooking(status bookingModel.BookingStatus, payment bookingModel.PaymentStatus) *bookingModel.Booking {
	b := &bookingModel.Booking{
		ID:            1,
		BookingCode:   "YJ-20260829-001",
		Status:        status,
		PaymentStatus: payment,
	}
	if payment == bookingModel.PaymentPaid {
		t := testClock().Add(-24 * time.Hour)
		b.PaidAt = &t
	}
	return b
}

func admin() types.Actor {
	return types.Actor{ID: "admin-1", Role: constants.RoleAdmin}
}

func TestChangeStatusPromotesPayment(t *testing.T) {
	// Booking BOOKED/UNPAID moved to PAID by an admin: payment follows,
	// paidAt is stamped, history holds STATUS_CHANGED then PAYMENT_UPDATED.
	repo := &fakeRepo{booking: testBooking(bookingModel.StatusBooked, bookingModel.PaymentUnpaid)}
	engine := newTestEngine(repo)

	b, entries, err := engine.ChangeStatus(1, bookingModel.StatusPaid, admin(), nil)
	if err != nil {
		t.Fatalf("ChangeStatus returned error: %v", err)
	}
	if b.Status != bookingModel.StatusPaid {
		t.Errorf("status = %s, want PAID", b.Status)
	}
	if b.PaymentStatus != bookingModel.PaymentPaid {
		t.Errorf("payment status = %s, want PAID", b.PaymentStatus)
	}
	if b.PaidAt == nil {
		t.Error("paidAt not stamped")
	}
	if len(entries) != 2 {
		t.Fatalf("got %d history entries, want 2", len(entries))
	}
	if entries[0].Action != bookingModel.ActionStatusChanged || entries[1].Action != bookingModel.ActionPaymentUpdated {
		t.Errorf("history order = %s, %s; want STATUS_CHANGED, PAYMENT_UPDATED", entries[0].Action, entries[1].Action)
	}
	if entries[0].OldValue != "BOOKED" || entries[0].NewValue != "PAID" {
		t.Errorf("status entry values = %s -> %s", entries[0].OldValue, entries[0].NewValue)
	}
}

func TestChangeStatusIdempotent(t *testing.T) {
	repo := &fakeRepo{booking: testBooking(bookingModel.StatusPaid, bookingModel.PaymentPaid)}
	engine := newTestEngine(repo)

	b, entries, err := engine.ChangeStatus(1, bookingModel.StatusPaid, admin(), nil)
	if err != nil {
		t.Fatalf("ChangeStatus returned error: %v", err)
	}
	if b.Status != bookingModel.StatusPaid {
		t.Errorf("status = %s, want PAID", b.Status)
	}
	if len(entries) != 0 {
		t.Errorf("no-op recorded %d history entries", len(entries))
	}
	if repo.commits != 0 {
		t.Errorf("no-op committed %d times", repo.commits)
	}
}

func TestChangeStatusCancelledIsImmutable(t *testing.T) {
	repo := &fakeRepo{booking: testBooking(bookingModel.StatusCancelled, bookingModel.PaymentUnpaid)}
	engine := newTestEngine(repo)

	_, _, err := engine.ChangeStatus(1, bookingModel.StatusBooked, admin(), nil)
	if !errors.Is(err, types.ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
	if repo.commits != 0 {
		t.Error("cancelled booking was mutated")
	}
}

func TestChangeStatusRolePolicy(t *testing.T) {
	tests := []struct {
		name    string
		role    string
		current bookingModel.BookingStatus
		target  bookingModel.BookingStatus
		wantErr bool
	}{
		{"photographer blocked once paid", constants.RolePhotographer, bookingModel.StatusPaid, bookingModel.StatusShootDone, true},
		{"photographer delivers photos", constants.RolePhotographer, bookingModel.StatusShootDone, bookingModel.StatusPhotosDelivered, false},
		{"photographer cannot close", constants.RolePhotographer, bookingModel.StatusPhotosDelivered, bookingModel.StatusClosed, true},
		{"packaging staff delivers photos", constants.RolePackagingStaff, bookingModel.StatusShootDone, bookingModel.StatusPhotosDelivered, false},
		{"packaging staff cannot mark paid", constants.RolePackagingStaff, bookingModel.StatusBooked, bookingModel.StatusPaid, true},
		{"owner unrestricted", constants.RoleOwner, bookingModel.StatusBooked, bookingModel.StatusClosed, false},
		{"admin may cancel", constants.RoleAdmin, bookingModel.StatusShootDone, bookingModel.StatusCancelled, false},
		{"unknown role rejected", "RECEPTIONIST", bookingModel.StatusBooked, bookingModel.StatusPaid, true},
		{"empty role rejected", "", bookingModel.StatusBooked, bookingModel.StatusPaid, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeRepo{booking: testBooking(tt.current, bookingModel.PaymentPaid)}
			engine := newTestEngine(repo)

			_, _, err := engine.ChangeStatus(1, tt.target, types.Actor{ID: "actor", Role: tt.role}, nil)
			if tt.wantErr {
				if !errors.Is(err, types.ErrForbidden) {
					t.Fatalf("err = %v, want ErrForbidden", err)
				}
				if repo.commits != 0 {
					t.Error("forbidden change was committed")
				}
			} else if err != nil {
				t.Fatalf("ChangeStatus returned error: %v", err)
			}
		})
	}
}

func TestPhotographerForbiddenLeavesNoTrace(t *testing.T) {
	// The scenario from the role table: a PAID booking freezes the
	// photographer out entirely, even for otherwise-allowed targets.
	repo := &fakeRepo{booking: testBooking(bookingModel.StatusPaid, bookingModel.PaymentPaid)}
	engine := newTestEngine(repo)

	_, _, err := engine.ChangeStatus(1, bookingModel.StatusShootDone, types.Actor{ID: "ph-1", Role: constants.RolePhotographer}, nil)
	if !errors.Is(err, types.ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
	if repo.booking.Status != bookingModel.StatusPaid {
		t.Error("booking mutated despite rejection")
	}
	if len(repo.entries) != 0 {
		t.Error("history written despite rejection")
	}
}

func TestChangeStatusClosedCascadesPrintOrder(t *testing.T) {
	repo := &fakeRepo{
		booking:    testBooking(bookingModel.StatusPhotosDelivered, bookingModel.PaymentPaid),
		printOrder: &printModel.PrintOrder{ID: 7, BookingID: 1, Status: printModel.PrintShipped},
	}
	engine := newTestEngine(repo)

	_, entries, err := engine.ChangeStatus(1, bookingModel.StatusClosed, admin(), nil)
	if err != nil {
		t.Fatalf("ChangeStatus returned error: %v", err)
	}
	if repo.printOrder.Status != printModel.PrintCompleted {
		t.Errorf("print order status = %s, want COMPLETED", repo.printOrder.Status)
	}

	var found bool
	for _, e := range entries {
		if e.Field == "print_order_status" && e.NewValue == "COMPLETED" {
			found = true
		}
	}
	if !found {
		t.Error("cascade did not record a print_order_status history entry")
	}
}

func TestChangeStatusClosedCascadeJumpsFromEarlyState(t *testing.T) {
	// The closure cascade bypasses the linear ordering of the print
	// workflow entirely.
	repo := &fakeRepo{
		booking:    testBooking(bookingModel.StatusPhotosDelivered, bookingModel.PaymentPaid),
		printOrder: &printModel.PrintOrder{ID: 7, BookingID: 1, Status: printModel.PrintWaitingClientSelection},
	}
	engine := newTestEngine(repo)

	if _, _, err := engine.ChangeStatus(1, bookingModel.StatusClosed, admin(), nil); err != nil {
		t.Fatalf("ChangeStatus returned error: %v", err)
	}
	if repo.printOrder.Status != printModel.PrintCompleted {
		t.Errorf("print order status = %s, want COMPLETED", repo.printOrder.Status)
	}
}

func TestChangeStatusDeliveredTimestamp(t *testing.T) {
	repo := &fakeRepo{booking: testBooking(bookingModel.StatusShootDone, bookingModel.PaymentPaid)}
	engine := newTestEngine(repo)

	b, _, err := engine.ChangeStatus(1, bookingModel.StatusPhotosDelivered, admin(), nil)
	if err != nil {
		t.Fatalf("ChangeStatus returned error: %v", err)
	}
	if b.DeliveredAt == nil {
		t.Fatal("deliveredAt not stamped on PHOTOS_DELIVERED")
	}

	// Reverting before PHOTOS_DELIVERED clears the timestamp again.
	b, _, err = engine.ChangeStatus(1, bookingModel.StatusShootDone, admin(), nil)
	if err != nil {
		t.Fatalf("ChangeStatus returned error: %v", err)
	}
	if b.DeliveredAt != nil {
		t.Error("deliveredAt not cleared after reverting")
	}
}

func TestChangeStatusCommitFailureLeavesBookingUntouched(t *testing.T) {
	repo := &fakeRepo{
		booking:   testBooking(bookingModel.StatusBooked, bookingModel.PaymentUnpaid),
		commitErr: errors.New("db down"),
	}
	engine := newTestEngine(repo)

	_, _, err := engine.ChangeStatus(1, bookingModel.StatusPaid, admin(), nil)
	if err == nil {
		t.Fatal("expected commit error")
	}
	if repo.booking.Status != bookingModel.StatusBooked {
		t.Error("booking mutated despite failed commit")
	}
	if len(repo.entries) != 0 {
		t.Error("history written despite failed commit")
	}
}

func TestChangeStatusUnknownStatus(t *testing.T) {
	repo := &fakeRepo{booking: testBooking(bookingModel.StatusBooked, bookingModel.PaymentUnpaid)}
	engine := newTestEngine(repo)

	_, _, err := engine.ChangeStatus(1, "SHIPPED_TO_MARS", admin(), nil)
	if !errors.Is(err, types.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestChangeStatusNotFound(t *testing.T) {
	repo := &fakeRepo{}
	engine := newTestEngine(repo)

	_, _, err := engine.ChangeStatus(99, bookingModel.StatusPaid, admin(), nil)
	if !errors.Is(err, types.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestDefaultPaymentState(t *testing.T) {
	// A PAID default must carry its timestamp: paidAt is non-nil exactly
	// when the payment status is PAID, including on freshly created
	// bookings.
	engine := NewEngine(&fakeRepo{}, testClock, Config{DefaultPaymentStatus: bookingModel.PaymentPaid})
	status, paidAt := engine.DefaultPaymentState()
	if status != bookingModel.PaymentPaid {
		t.Errorf("status = %s, want PAID", status)
	}
	if paidAt == nil || !paidAt.Equal(testClock()) {
		t.Error("PAID default did not stamp paidAt with the clock time")
	}

	engine = newTestEngine(&fakeRepo{})
	status, paidAt = engine.DefaultPaymentState()
	if status != bookingModel.PaymentUnpaid {
		t.Errorf("status = %s, want UNPAID", status)
	}
	if paidAt != nil {
		t.Error("UNPAID default must not carry paidAt")
	}
}

func TestChangeStatusAttachesPhotoLink(t *testing.T) {
	repo := &fakeRepo{booking: testBooking(bookingModel.StatusShootDone, bookingModel.PaymentPaid)}
	engine := newTestEngine(repo)

	link := "https://drive.example.com/album/abc"
	b, entries, err := engine.ChangeStatus(1, bookingModel.StatusPhotosDelivered, admin(), &StatusChangeExtra{PhotoLink: &link})
	if err != nil {
		t.Fatalf("ChangeStatus returned error: %v", err)
	}
	if b.PhotoLink == nil || *b.PhotoLink != link {
		t.Error("photo link not stored")
	}

	var found bool
	for _, e := range entries {
		if e.Action == bookingModel.ActionPhotoLinkUpdated && e.NewValue == link {
			found = true
		}
	}
	if !found {
		t.Error("photo link change not audited")
	}
}
