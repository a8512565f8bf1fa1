package printorder

import (
	"time"

	"gorm.io/datatypes"
)

// PrintOrder is the physical-print fulfillment sub-order. At most one
// exists per booking; it is created lazily the first time the client
// requests physical prints.
type PrintOrder struct {
	ID        uint `gorm:"primaryKey;autoIncrement" json:"id"`
	BookingID uint `gorm:"not null;uniqueIndex" json:"booking_id"`

	Status PrintOrderStatus `gorm:"type:varchar(40);not null;default:WAITING_CLIENT_SELECTION" json:"status"`

	// SelectedPhotos holds the client's photo picks as a JSON array of
	// file references.
	SelectedPhotos datatypes.JSON `gorm:"type:jsonb" json:"selected_photos,omitempty"`

	VendorName      *string `gorm:"type:varchar(255)" json:"vendor_name,omitempty"`
	VendorNotes     *string `gorm:"type:text" json:"vendor_notes,omitempty"`
	ShippingAddress *string `gorm:"type:text" json:"shipping_address,omitempty"`
	Courier         *string `gorm:"type:varchar(100)" json:"courier,omitempty"`
	TrackingNumber  *string `gorm:"type:varchar(100)" json:"tracking_number,omitempty"`

	ShippedAt *time.Time `json:"shipped_at,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// PrintOrderStatus is the strictly linear fulfillment state of a print
// order. COMPLETED is additionally reachable from any state as a cascade
// when the parent booking closes.
type PrintOrderStatus string

const (
	PrintWaitingClientSelection PrintOrderStatus = "WAITING_CLIENT_SELECTION"
	PrintSentToVendor           PrintOrderStatus = "SENT_TO_VENDOR"
	PrintPrintingInProgress     PrintOrderStatus = "PRINTING_IN_PROGRESS"
	PrintPrintReceived          PrintOrderStatus = "PRINT_RECEIVED"
	PrintPackaging              PrintOrderStatus = "PACKAGING"
	PrintShipped                PrintOrderStatus = "SHIPPED"
	PrintCompleted              PrintOrderStatus = "COMPLETED"
)

func (ps PrintOrderStatus) String() string {
	return string(ps)
}

func (ps PrintOrderStatus) IsValid() bool {
	switch ps {
	case PrintWaitingClientSelection, PrintSentToVendor, PrintPrintingInProgress,
		PrintPrintReceived, PrintPackaging, PrintShipped, PrintCompleted:
		return true
	default:
		return false
	}
}

// Rank returns the position of the status on the linear path.
func (ps PrintOrderStatus) Rank() int {
	switch ps {
	case PrintWaitingClientSelection:
		return 0
	case PrintSentToVendor:
		return 1
	case PrintPrintingInProgress:
		return 2
	case PrintPrintReceived:
		return 3
	case PrintPackaging:
		return 4
	case PrintShipped:
		return 5
	case PrintCompleted:
		return 6
	default:
		return -1
	}
}

// Next returns the immediate successor on the linear path, or ok=false at
// the terminal state.
func (ps PrintOrderStatus) Next() (PrintOrderStatus, bool) {
	order := []PrintOrderStatus{
		PrintWaitingClientSelection,
		PrintSentToVendor,
		PrintPrintingInProgress,
		PrintPrintReceived,
		PrintPackaging,
		PrintShipped,
		PrintCompleted,
	}
	r := ps.Rank()
	if r < 0 || r >= len(order)-1 {
		return "", false
	}
	return order[r+1], true
}

// IsPackagingStage reports whether the status belongs to the terminal
// packaging/shipping stretch that packaging staff may drive.
func (ps PrintOrderStatus) IsPackagingStage() bool {
	return ps == PrintPackaging || ps == PrintShipped || ps == PrintCompleted
}

// TableName sets the table name for the PrintOrder model
func (PrintOrder) TableName() string {
	return "print_orders"
}
