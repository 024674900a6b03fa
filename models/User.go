package models

import (
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Name                string         `json:"name"`
	Email               string         `json:"email" gorm:"uniqueIndex"`
	Password            string         `json:"-"`
	SocialLogin         bool           `json:"socialLogin"`
	SocialProvider      string         `json:"socialProvider"`
	AvatarURL           string         `json:"avatarURL"`
	Bio                 string         `json:"bio"`
	Role                string         `json:"role" gorm:"type:varchar(20);default:user;index"` // user, host, admin, super_admin
	Blocked             *bool          `json:"blocked"`
	WishList            datatypes.JSON `json:"wishList"`
	PushTokens          datatypes.JSON `json:"pushTokens"`
	AllowsNotifications *bool          `json:"allowsNotifications"`
	Listings            []Listing      `json:"listings" gorm:"foreignKey:HostID;references:ID"`
}

// Custom JSON marshaling so the JSON columns come out as arrays, not raw
// bytes. Marshals a copy; the receiver is never touched. Preloaded listings
// stay in the output, their own marshaler strips the back-reference.
func (u *User) MarshalJSON() ([]byte, error) {
	type Alias User
	cp := *u
	aux := &struct {
		WishList   []uint   `json:"wishList"`
		PushTokens []string `json:"pushTokens,omitempty"`
		*Alias
	}{
		WishList:   []uint{},
		PushTokens: []string{},
		Alias:      (*Alias)(&cp),
	}

	if u.WishList != nil {
		var wishList []uint
		if err := json.Unmarshal(u.WishList, &wishList); err == nil {
			aux.WishList = wishList
		}
	}

	if u.PushTokens != nil {
		var pushTokens []string
		if err := json.Unmarshal(u.PushTokens, &pushTokens); err == nil {
			aux.PushTokens = pushTokens
		}
	}

	return json.Marshal(aux)
}
