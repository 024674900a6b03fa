package models

import (
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Listing struct {
	gorm.Model
	HostID       uint           `json:"hostID" gorm:"index"`
	Title        string         `json:"title"`
	Description  string         `json:"description" gorm:"type:text"`
	Location     string         `json:"location" gorm:"index"`
	City         string         `json:"city"`
	Country      string         `json:"country"`
	Lat          float32        `json:"lat"`
	Lng          float32        `json:"lng"`
	Price        float32        `json:"price"` // nightly price
	Currency     string         `json:"currency"`
	Capacity     int            `json:"capacity"`
	Bedrooms     int            `json:"bedrooms"`
	Beds         int            `json:"beds"`
	Bathrooms    float32        `json:"bathrooms"`
	Category     string         `json:"category" gorm:"index"`
	Amenities    datatypes.JSON `json:"amenities"`
	Images       datatypes.JSON `json:"images"`
	Rating       float32        `json:"rating"`
	Views        int64          `json:"views" gorm:"default:0"`
	Status       string         `json:"status" gorm:"type:varchar(20);default:'pending';index"` // pending, live, paused, rejected
	RejectReason string         `json:"rejectReason" gorm:"type:text"`

	Host     User      `json:"host" gorm:"foreignKey:HostID;references:ID"`
	Bookings []Booking `json:"bookings,omitempty" gorm:"foreignKey:ListingID"`
}

func (l *Listing) MarshalJSON() ([]byte, error) {
	type Alias Listing
	aux := &struct {
		Amenities []string `json:"amenities"`
		Images    []string `json:"images"`
		Host      *User    `json:"host,omitempty"`
		*Alias
	}{
		Amenities: []string{},
		Images:    []string{},
		Host:      nil,
		Alias:     (*Alias)(l),
	}

	if l.Amenities != nil {
		var amenities []string
		if err := json.Unmarshal(l.Amenities, &amenities); err == nil {
			aux.Amenities = amenities
		}
	}

	if l.Images != nil {
		var images []string
		if err := json.Unmarshal(l.Images, &images); err == nil {
			aux.Images = images
		}
	}

	// Only include host when it was preloaded, and strip its listings to
	// avoid a circular reference
	if l.Host.ID > 0 {
		hostCopy := l.Host
		hostCopy.Listings = nil
		aux.Host = &hostCopy
	}

	return json.Marshal(aux)
}
