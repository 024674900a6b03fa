package models

import (
	"time"

	"gorm.io/gorm"
)

// Booking is a reservation request made by a guest against a listing.
// HostID is denormalized from the listing at creation time so the status
// handlers can authorize without a join.
type Booking struct {
	gorm.Model
	ListingID    uint      `json:"listingID" gorm:"index"`
	UserID       uint      `json:"userID" gorm:"index"` // guest
	HostID       uint      `json:"hostID" gorm:"index"`
	CheckIn      time.Time `json:"checkIn"`
	CheckOut     time.Time `json:"checkOut"`
	Guests       int       `json:"guests"`
	TotalPrice   float32   `json:"totalPrice"`
	Status       string    `json:"status" gorm:"type:varchar(20);default:'pending';index"` // pending, approved, confirmed, rejected, cancelled, paused, completed
	Note         string    `json:"note"`
	StatusReason string    `json:"statusReason" gorm:"type:text"`

	Listing *Listing `json:"listing,omitempty" gorm:"foreignKey:ListingID"`
	Guest   *User    `json:"guest,omitempty" gorm:"foreignKey:UserID"`
}
