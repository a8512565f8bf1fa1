package booking

import (
	"strings"
	"time"

	"studio-booking/models/user"

	"gorm.io/gorm"
)

// Booking is the aggregate root for one studio session. It exclusively
// owns its add-ons, history entries and (if present) its print order.
type Booking struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	// BookingCode is sequential per calendar day, format YJ-YYYYMMDD-NNN.
	BookingCode string `gorm:"type:varchar(50);not null;uniqueIndex" json:"booking_code"`
	// PublicSlug is the opaque token for unauthenticated status lookup.
	PublicSlug string `gorm:"type:varchar(64);not null;uniqueIndex" json:"public_slug"`

	CustomerName  string `gorm:"type:varchar(255);not null" json:"customer_name"`
	CustomerPhone string `gorm:"type:varchar(20);not null" json:"customer_phone"`
	PackageName   string `gorm:"type:varchar(255);not null" json:"package_name"`

	// Schedule. MuaStartTime is derived from the add-ons: present iff the
	// booking carries an MUA add-on, always exactly one hour before the
	// session start.
	Date         time.Time  `gorm:"type:date;not null;index" json:"date"`
	StartTime    time.Time  `gorm:"not null" json:"start_time"`
	EndTime      time.Time  `gorm:"not null" json:"end_time"`
	MuaStartTime *time.Time `json:"mua_start_time,omitempty"`

	// Amounts are stored in the smallest currency unit. TotalAmount is
	// always recomputed from its inputs via RecalculateTotal, never
	// written independently.
	PackagePrice   int64 `gorm:"not null" json:"package_price"`
	DiscountAmount int64 `gorm:"default:0" json:"discount_amount"`
	TotalAmount    int64 `gorm:"not null" json:"total_amount"`

	Status        BookingStatus `gorm:"type:varchar(30);not null;default:BOOKED" json:"status"`
	PaymentStatus PaymentStatus `gorm:"type:varchar(30);not null;default:UNPAID" json:"payment_status"`

	// Each timestamp is set iff the corresponding state was entered and
	// cleared again when that state is reverted.
	PaidAt      *time.Time `json:"paid_at,omitempty"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
	RemindedAt  *time.Time `json:"reminded_at,omitempty"`

	// Free-form fields. Changes are audit-worthy but do not participate in
	// the state machine.
	PhotoLink    *string `gorm:"type:text" json:"photo_link,omitempty"`
	PaymentProof *string `gorm:"type:text" json:"payment_proof,omitempty"`
	Notes        *string `gorm:"type:text" json:"notes,omitempty"`

	CreatedByID uint      `gorm:"not null" json:"created_by_id"`
	CreatedBy   user.User `gorm:"foreignKey:CreatedByID" json:"created_by"`

	AddOns []AddOn `gorm:"foreignKey:BookingID" json:"add_ons"`

	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt *time.Time `gorm:"index" json:"deleted_at,omitempty"`
}

// AddOn is an extra service item attached to a booking. Its payment state
// is independent of the parent booking's: an add-on can stay unpaid after
// the booking is marked paid.
type AddOn struct {
	ID        uint `gorm:"primaryKey;autoIncrement" json:"id"`
	BookingID uint `gorm:"not null;index" json:"booking_id"`

	ItemName  string `gorm:"type:varchar(255);not null" json:"item_name"`
	Quantity  int    `gorm:"not null;default:1" json:"quantity"`
	UnitPrice int64  `gorm:"not null" json:"unit_price"`
	Subtotal  int64  `gorm:"not null" json:"subtotal"`

	PaymentStatus PaymentStatus `gorm:"type:varchar(30);not null;default:UNPAID" json:"payment_status"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// NotDeleted excludes soft-deleted bookings. Every lookup that serves
// live data applies this scope; soft-deleted rows are only reachable
// through explicit archive queries.
func NotDeleted(db *gorm.DB) *gorm.DB {
	return db.Where("deleted_at IS NULL")
}

// muaKeywords mark an add-on as a make-up-artist service. Matching is
// case-insensitive substring.
var muaKeywords = []string{"mua", "makeup", "make up"}

// IsMUA reports whether the add-on is a make-up-artist service.
func (a AddOn) IsMUA() bool {
	name := strings.ToLower(a.ItemName)
	for _, kw := range muaKeywords {
		if strings.Contains(name, kw) {
			return true
		}
	}
	return false
}

// HasMUA reports whether the booking carries at least one MUA add-on.
func (b *Booking) HasMUA() bool {
	for _, a := range b.AddOns {
		if a.IsMUA() {
			return true
		}
	}
	return false
}

// MUAWindow returns the make-up preparation window [start-1h, start), or
// ok=false when the booking has no MUA add-on. The window never extends
// into the session itself.
func (b *Booking) MUAWindow() (start, end time.Time, ok bool) {
	if !b.HasMUA() {
		return time.Time{}, time.Time{}, false
	}
	return b.StartTime.Add(-time.Hour), b.StartTime, true
}

// SyncMuaStartTime refreshes the derived MuaStartTime field from the
// current add-ons and session start. Call after any add-on or schedule
// change.
func (b *Booking) SyncMuaStartTime() {
	if start, _, ok := b.MUAWindow(); ok {
		b.MuaStartTime = &start
	} else {
		b.MuaStartTime = nil
	}
}

// RecalculateTotal re-derives TotalAmount from the package price, add-on
// subtotals and discount. Every mutating operation that touches one of the
// inputs must call this before saving.
func (b *Booking) RecalculateTotal() {
	total := b.PackagePrice
	for _, a := range b.AddOns {
		total += a.Subtotal
	}
	total -= b.DiscountAmount
	b.TotalAmount = total
}
