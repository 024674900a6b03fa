package models

import (
	"time"

	"gorm.io/datatypes"
)

// Notification is a persisted, per-user record created as a side effect of
// booking and listing state changes. Only the read flag ever mutates; rows
// are never deleted by the system.
type Notification struct {
	ID     uint `json:"id" gorm:"primaryKey"`
	UserID uint `json:"userID" gorm:"not null;index"`
	User   User `json:"user" gorm:"foreignKey:UserID"`

	Type     string         `json:"type" gorm:"size:32;index"` // booking_status, booking_request, listing_status, ...
	Title    string         `json:"title" gorm:"size:100"`
	Message  string         `json:"message" gorm:"size:500"`
	Data     datatypes.JSON `json:"data"`
	Priority string         `json:"priority" gorm:"size:16;default:'normal'"`

	IsRead    bool       `json:"isRead" gorm:"default:false;index"`
	CreatedAt time.Time  `json:"createdAt"`
	ReadAt    *time.Time `json:"readAt"`
}
