package services

import (
	"encoding/json"
	"fmt"
	"log"

	"stayfinder-server/models"
	"stayfinder-server/storage"
)

// NotificationService persists per-user notification records. Records are
// advisory: a failed insert is logged and swallowed so the state change that
// triggered it stays authoritative.
type NotificationService struct{}

func NewNotificationService() *NotificationService {
	return &NotificationService{}
}

// CreateNotificationInput carries everything needed to address one record.
type CreateNotificationInput struct {
	UserID   uint
	Type     string
	Title    string
	Message  string
	Data     map[string]interface{}
	Priority string
}

// CreateNotification writes one record. No deduplication: two identical
// calls create two rows.
func (ns *NotificationService) CreateNotification(input CreateNotificationInput) (*models.Notification, error) {
	notification := models.Notification{
		UserID:   input.UserID,
		Type:     input.Type,
		Title:    input.Title,
		Message:  input.Message,
		Priority: input.Priority,
		IsRead:   false,
	}
	if notification.Priority == "" {
		notification.Priority = "normal"
	}

	if input.Data != nil {
		if raw, err := json.Marshal(input.Data); err == nil {
			notification.Data = raw
		}
	}

	if err := storage.DB.Create(&notification).Error; err != nil {
		log.Printf("notification create failed for user %d: %v", input.UserID, err)
		return nil, err
	}

	return &notification, nil
}

// NotifyBookingStatusChange creates the guest-facing and host-facing records
// for a booking status transition. Exactly two rows on success.
func (ns *NotificationService) NotifyBookingStatusChange(booking *models.Booking, oldStatus, newStatus string, guestID, hostID uint, listingTitle string) {
	data := map[string]interface{}{
		"bookingId": booking.ID,
		"oldStatus": oldStatus,
		"newStatus": newStatus,
	}

	ns.CreateNotification(CreateNotificationInput{
		UserID:   guestID,
		Type:     "booking_status",
		Title:    "Booking " + titleForStatus(newStatus),
		Message:  GuestBookingStatusMessage(newStatus, listingTitle),
		Data:     data,
		Priority: "high",
	})

	ns.CreateNotification(CreateNotificationInput{
		UserID:  hostID,
		Type:    "booking_status",
		Title:   "Booking " + titleForStatus(newStatus),
		Message: HostBookingStatusMessage(newStatus, listingTitle),
		Data:    data,
	})
}

// NotifyBookingRequest tells the host a new booking request came in.
func (ns *NotificationService) NotifyBookingRequest(booking *models.Booking, guestName, listingTitle string) {
	ns.CreateNotification(CreateNotificationInput{
		UserID:  booking.HostID,
		Type:    "booking_request",
		Title:   "New Booking Request",
		Message: fmt.Sprintf("%s requested to book %s from %s to %s", guestName, listingTitle, booking.CheckIn.Format("Jan 2, 2006"), booking.CheckOut.Format("Jan 2, 2006")),
		Data: map[string]interface{}{
			"bookingId": booking.ID,
			"listingId": booking.ListingID,
		},
		Priority: "high",
	})
}

// NotifyListingStatusChange tells the host their listing was moderated.
func (ns *NotificationService) NotifyListingStatusChange(listing *models.Listing, action, reason string) {
	message := ListingStatusMessage(action, listing.Title, reason)
	if message == "" {
		return
	}

	ns.CreateNotification(CreateNotificationInput{
		UserID:  listing.HostID,
		Type:    "listing_" + action,
		Title:   "Listing " + titleForStatus(action),
		Message: message,
		Data: map[string]interface{}{
			"listingId": listing.ID,
		},
	})
}

// GuestBookingStatusMessage is the human-readable line the guest sees.
func GuestBookingStatusMessage(status, listingTitle string) string {
	return fmt.Sprintf("Your booking for %q has been %s", listingTitle, status)
}

// HostBookingStatusMessage is the human-readable line the host sees.
func HostBookingStatusMessage(status, listingTitle string) string {
	return fmt.Sprintf("A booking for %q has been %s", listingTitle, status)
}

// ListingStatusMessage maps a moderation action to the host-facing message.
// Returns "" for unknown actions.
func ListingStatusMessage(action, title, reason string) string {
	switch action {
	case "approved", "activated":
		return fmt.Sprintf("Your listing %q has been approved and is now live.", title)
	case "rejected":
		if reason == "" {
			reason = "Listing does not meet our standards"
		}
		return fmt.Sprintf("Your listing %q has been rejected. Reason: %s", title, reason)
	case "paused":
		return fmt.Sprintf("Your listing %q has been paused by admin.", title)
	case "deleted":
		return fmt.Sprintf("Your listing %q has been deleted by admin.", title)
	default:
		return ""
	}
}

func titleForStatus(status string) string {
	switch status {
	case "approved", "confirmed", "activated":
		return "Approved"
	case "rejected":
		return "Rejected"
	case "paused":
		return "Paused"
	case "cancelled":
		return "Cancelled"
	case "deleted":
		return "Deleted"
	default:
		return "Updated"
	}
}

// Global notification service instance
var NotificationServiceInstance = NewNotificationService()
