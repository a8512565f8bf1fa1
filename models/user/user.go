package user

import (
	"time"
)

// User is the minimal staff account this service keeps locally. Identity
// and role claims arrive on the JWT produced by the external auth layer;
// this row exists so bookings and audit entries can reference a stable id.
type User struct {
	ID       uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	Uuid     string  `gorm:"type:varchar(255);not null;unique" json:"uuid"`
	Username string  `gorm:"type:varchar(255);not null;unique" json:"username"`
	Name     string  `gorm:"type:varchar(255);not null" json:"name"`
	Phone    string  `gorm:"type:varchar(20)" json:"phone"`
	Email    *string `gorm:"type:varchar(255);unique" json:"email,omitempty"`

	Role   string `gorm:"type:varchar(50);not null" json:"role"`
	Active bool   `gorm:"default:true" json:"active"`

	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt *time.Time `gorm:"index" json:"deleted_at,omitempty"`
}
