package services

import (
	"strings"
	"testing"
)

func TestGuestBookingStatusMessage(t *testing.T) {
	msg := GuestBookingStatusMessage("approved", "Beach House")
	if msg != `Your booking for "Beach House" has been approved` {
		t.Fatalf("unexpected guest message: %s", msg)
	}
}

func TestHostBookingStatusMessage(t *testing.T) {
	msg := HostBookingStatusMessage("paused", "City Loft")
	if msg != `A booking for "City Loft" has been paused` {
		t.Fatalf("unexpected host message: %s", msg)
	}
}

func TestListingStatusMessage(t *testing.T) {
	cases := []struct {
		action   string
		reason   string
		contains string
	}{
		{"approved", "", "approved and is now live"},
		{"activated", "", "approved and is now live"},
		{"rejected", "bad photos", "bad photos"},
		{"rejected", "", "does not meet our standards"},
		{"paused", "", "paused by admin"},
		{"deleted", "", "deleted by admin"},
	}

	for _, c := range cases {
		msg := ListingStatusMessage(c.action, "Cabin", c.reason)
		if msg == "" {
			t.Errorf("ListingStatusMessage(%q) returned empty", c.action)
			continue
		}
		if !strings.Contains(msg, c.contains) {
			t.Errorf("ListingStatusMessage(%q) = %q, want substring %q", c.action, msg, c.contains)
		}
	}
}

func TestListingStatusMessageUnknownAction(t *testing.T) {
	if msg := ListingStatusMessage("flagged", "Cabin", ""); msg != "" {
		t.Fatalf("expected empty message for unknown action, got %q", msg)
	}
}

func TestTitleForStatus(t *testing.T) {
	cases := map[string]string{
		"approved":  "Approved",
		"confirmed": "Approved",
		"rejected":  "Rejected",
		"paused":    "Paused",
		"cancelled": "Cancelled",
		"deleted":   "Deleted",
		"whatever":  "Updated",
	}

	for status, want := range cases {
		if got := titleForStatus(status); got != want {
			t.Errorf("titleForStatus(%q) = %q, want %q", status, got, want)
		}
	}
}
