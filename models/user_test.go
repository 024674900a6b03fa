package models

import (
	"encoding/json"
	"strings"
	"testing"

	"gorm.io/datatypes"
)

func TestUserMarshalKeepsPreloadedListings(t *testing.T) {
	u := User{
		Name:     "Ana",
		Email:    "ana@example.com",
		Listings: []Listing{{Title: "Cabin", Location: "Lisbon"}},
	}

	raw, err := json.Marshal(&u)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	if !strings.Contains(string(raw), "Cabin") {
		t.Fatalf("preloaded listing missing from output: %s", raw)
	}

	if len(u.Listings) != 1 {
		t.Fatalf("marshal mutated the receiver, listings = %v", u.Listings)
	}
}

func TestUserMarshalJSONColumnsAsArrays(t *testing.T) {
	u := User{
		WishList:   datatypes.JSON(`[1,2]`),
		PushTokens: datatypes.JSON(`["tok-a"]`),
	}

	raw, err := json.Marshal(&u)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	if !strings.Contains(string(raw), `"wishList":[1,2]`) {
		t.Fatalf("wishList not an array: %s", raw)
	}
	if !strings.Contains(string(raw), `"pushTokens":["tok-a"]`) {
		t.Fatalf("pushTokens not an array: %s", raw)
	}
}

func TestUserMarshalEmptyWishListIsEmptyArray(t *testing.T) {
	u := User{Name: "Ben"}

	raw, err := json.Marshal(&u)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	if !strings.Contains(string(raw), `"wishList":[]`) {
		t.Fatalf("nil wishList should serialize as [], got: %s", raw)
	}
}
