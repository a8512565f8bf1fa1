package booking

import (
	"time"
)

// BookingHistory is one immutable audit record of an observed field
// transition. Rows are only ever inserted (never updated or deleted) and
// are read back in insertion order, so the booking row itself is just a
// derived current-state cache over this table.
type BookingHistory struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	BookingID uint `gorm:"not null;index" json:"booking_id"`

	Action   HistoryAction `gorm:"type:varchar(50);not null;index" json:"action"`
	Field    string        `gorm:"type:varchar(100);not null" json:"field"`
	OldValue string        `gorm:"type:text" json:"old_value"`
	NewValue string        `gorm:"type:text" json:"new_value"`

	ChangedBy string    `gorm:"type:varchar(255);not null" json:"changed_by"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName sets the table name for the BookingHistory model
func (BookingHistory) TableName() string {
	return "booking_histories"
}
