package models

import (
	"time"

	"gorm.io/datatypes"
)

// AuditLog records every moderation action an admin takes against a user,
// listing or booking, with the target document before and after the change.
// Rows are append-only.
type AuditLog struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	AdminID    uint           `json:"adminID" gorm:"index"`
	Action     string         `json:"action" gorm:"size:64;index"` // user.block, listing.approve, booking.status_update, ...
	TargetType string         `json:"targetType" gorm:"size:32;index"`
	TargetID   uint           `json:"targetID" gorm:"index"`
	Before     datatypes.JSON `json:"before"`
	After      datatypes.JSON `json:"after"`
	Reason     string         `json:"reason" gorm:"type:text"` // moderation reason, when the action carries one
	IP         string         `json:"ip" gorm:"size:64"`
	CreatedAt  time.Time      `json:"createdAt"`
}
