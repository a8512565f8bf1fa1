package printorder

import (
	"encoding/json"
	"fmt"
	"time"

	"studio-booking/logger"
	bookingModel "studio-booking/models/booking"
	printModel "studio-booking/models/printorder"
	"studio-booking/services/history"
	"studio-booking/types"

	"gorm.io/datatypes"
)

// Repository is the persistence contract for the print-order workflow.
// Save must write the print order and its history entries atomically.
// RecordBestEffort is for ancillary audit rows whose failure should not
// fail the operation (it logs instead).
type Repository interface {
	FindBooking(id uint) (*bookingModel.Booking, error)
	FindByBookingID(bookingID uint) (*printModel.PrintOrder, error)
	Create(po *printModel.PrintOrder) error
	Save(po *printModel.PrintOrder, entries []bookingModel.BookingHistory) error
	RecordBestEffort(entry bookingModel.BookingHistory)
}

// Workflow drives the strictly linear print fulfillment sub-state-machine
// attached to a booking. The role model mirrors the parent booking's
// staff model: management everywhere, packaging staff for the terminal
// packaging/shipping stretch.
type Workflow struct {
	repo  Repository
	clock func() time.Time
}

func NewWorkflow(repo Repository, clock func() time.Time) *Workflow {
	if clock == nil {
		clock = time.Now
	}
	return &Workflow{repo: repo, clock: clock}
}

// Create lazily creates the single print order for a booking. A second
// creation for the same booking is a Conflict.
func (w *Workflow) Create(bookingID uint, actor types.Actor) (*printModel.PrintOrder, error) {
	policy, ok := rolePermissions[actor.Role]
	if !ok || !policy.canCreate {
		return nil, fmt.Errorf("role %q may not create a print order: %w", actor.Role, types.ErrForbidden)
	}

	b, err := w.repo.FindBooking(bookingID)
	if err != nil {
		return nil, err
	}

	existing, err := w.repo.FindByBookingID(b.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("booking %s already has a print order: %w", b.BookingCode, types.ErrConflict)
	}

	po := &printModel.PrintOrder{
		BookingID: b.ID,
		Status:    printModel.PrintWaitingClientSelection,
	}
	if err := w.repo.Create(po); err != nil {
		return nil, fmt.Errorf("failed to create print order: %w", err)
	}

	// Creation is ancillary audit: log on failure instead of rolling the
	// order back.
	w.repo.RecordBestEffort(
		history.NewEntry(b.ID, bookingModel.ActionPrintOrderUpdated, "print_order", "", printModel.PrintWaitingClientSelection.String(), actor.ID))

	return po, nil
}

// Advance moves the print order one step along the linear path. Skipping
// states is rejected; only the parent booking's closure cascade may jump
// (handled by the transition engine, not here).
func (w *Workflow) Advance(bookingID uint, target printModel.PrintOrderStatus, actor types.Actor) (*printModel.PrintOrder, error) {
	return w.Apply(bookingID, FieldUpdates{}, &target, actor)
}

// FieldUpdates carries the free-text side fields that may change without
// a status transition. Nil pointers leave a field untouched.
type FieldUpdates struct {
	SelectedPhotos  []string
	VendorName      *string
	VendorNotes     *string
	ShippingAddress *string
	Courier         *string
	TrackingNumber  *string
}

// shippingFieldsOnly reports whether the update touches nothing beyond
// the shipping-stage fields packaging staff may edit.
func (u FieldUpdates) shippingFieldsOnly() bool {
	return u.SelectedPhotos == nil && u.VendorName == nil && u.VendorNotes == nil
}

// UpdateFields applies side-field changes, each emitting its own audit
// entry, without requiring a status transition.
func (w *Workflow) UpdateFields(bookingID uint, updates FieldUpdates, actor types.Actor) (*printModel.PrintOrder, error) {
	return w.Apply(bookingID, updates, nil, actor)
}

// Apply performs a combined update: side-field edits plus an optional
// status move, validated together and committed in one atomic write. A
// rejection anywhere leaves nothing persisted, so a request that pairs
// valid fields with an out-of-order status change does not half-apply.
func (w *Workflow) Apply(bookingID uint, updates FieldUpdates, target *printModel.PrintOrderStatus, actor types.Actor) (*printModel.PrintOrder, error) {
	policy, ok := rolePermissions[actor.Role]
	if !ok {
		return nil, fmt.Errorf("role %q may not update print orders: %w", actor.Role, types.ErrForbidden)
	}
	if !policy.anyStatus && !updates.shippingFieldsOnly() {
		return nil, fmt.Errorf("role %q may only edit shipping fields: %w", actor.Role, types.ErrForbidden)
	}
	if target != nil {
		if !target.IsValid() {
			return nil, fmt.Errorf("unknown print order status %q: %w", *target, types.ErrValidation)
		}
		if !policy.anyStatus && !target.IsPackagingStage() {
			return nil, fmt.Errorf("role %q may only drive packaging and shipping updates: %w", actor.Role, types.ErrForbidden)
		}
	}

	po, err := w.findExisting(bookingID)
	if err != nil {
		return nil, err
	}

	var entries []bookingModel.BookingHistory
	record := func(field, oldValue, newValue string) {
		entries = append(entries,
			history.NewEntry(po.BookingID, bookingModel.ActionPrintOrderUpdated, field, oldValue, newValue, actor.ID))
	}

	if updates.SelectedPhotos != nil {
		raw, err := json.Marshal(updates.SelectedPhotos)
		if err != nil {
			return nil, fmt.Errorf("invalid photo selection: %w", types.ErrValidation)
		}
		record("selected_photos", string(po.SelectedPhotos), string(raw))
		po.SelectedPhotos = datatypes.JSON(raw)
	}
	if updates.VendorName != nil {
		record("vendor_name", strOrEmpty(po.VendorName), *updates.VendorName)
		po.VendorName = updates.VendorName
	}
	if updates.VendorNotes != nil {
		record("vendor_notes", strOrEmpty(po.VendorNotes), *updates.VendorNotes)
		po.VendorNotes = updates.VendorNotes
	}
	if updates.ShippingAddress != nil {
		record("shipping_address", strOrEmpty(po.ShippingAddress), *updates.ShippingAddress)
		po.ShippingAddress = updates.ShippingAddress
	}
	if updates.Courier != nil {
		record("courier", strOrEmpty(po.Courier), *updates.Courier)
		po.Courier = updates.Courier
	}
	if updates.TrackingNumber != nil {
		record("tracking_number", strOrEmpty(po.TrackingNumber), *updates.TrackingNumber)
		po.TrackingNumber = updates.TrackingNumber
	}

	var moved bool
	var oldStatus printModel.PrintOrderStatus
	if target != nil && *target != po.Status {
		next, hasNext := po.Status.Next()
		if !hasNext || *target != next {
			return nil, fmt.Errorf("print order cannot move from %s to %s: %w", po.Status, *target, types.ErrValidation)
		}

		oldStatus = po.Status
		po.Status = *target
		if *target == printModel.PrintShipped {
			now := w.clock()
			po.ShippedAt = &now
		}
		entries = append(entries,
			history.NewEntry(po.BookingID, bookingModel.ActionStatusChanged, "print_order_status", oldStatus.String(), target.String(), actor.ID))
		moved = true
	}

	if len(entries) == 0 {
		return po, nil
	}

	if err := w.repo.Save(po, entries); err != nil {
		return nil, fmt.Errorf("failed to commit print order update: %w", err)
	}

	if moved {
		logger.Info(fmt.Sprintf("Print order for booking %d moved %s -> %s", po.BookingID, oldStatus, po.Status))
	}
	return po, nil
}

// Get returns the booking's print order.
func (w *Workflow) Get(bookingID uint) (*printModel.PrintOrder, error) {
	return w.findExisting(bookingID)
}

func (w *Workflow) findExisting(bookingID uint) (*printModel.PrintOrder, error) {
	po, err := w.repo.FindByBookingID(bookingID)
	if err != nil {
		return nil, err
	}
	if po == nil {
		return nil, fmt.Errorf("booking %d has no print order: %w", bookingID, types.ErrNotFound)
	}
	return po, nil
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
