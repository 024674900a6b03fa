package routes

import (
	"fmt"
	"log"
	"strconv"
	"time"

	"stayfinder-server/models"
	"stayfinder-server/services"
	"stayfinder-server/socket"
	"stayfinder-server/storage"
	"stayfinder-server/utils"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

type ApproveBookingInput struct {
	BookingID uint   `json:"bookingId" validate:"required"`
	Status    string `json:"status" validate:"required"`
	UserID    uint   `json:"userId" validate:"required"`
}

// validApprovalTarget reports whether the host-facing status endpoint
// accepts the requested target. There is no transition table: any of these
// may be applied regardless of the booking's current status.
func validApprovalTarget(status string) bool {
	switch status {
	case "approved", "rejected", "paused":
		return true
	}
	return false
}

// ApproveBooking lets the booking's host set it to approved, rejected or
// paused. A missing booking and a booking owned by someone else both answer
// 403; the two cases are indistinguishable to the caller.
func ApproveBooking(ctx iris.Context) {
	var input ApproveBookingInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var booking models.Booking
	res := storage.DB.First(&booking, input.BookingID)
	if res.Error != nil || booking.HostID != input.UserID {
		ctx.StatusCode(iris.StatusForbidden)
		ctx.JSON(iris.Map{"message": "Not authorized"})
		return
	}

	if !validApprovalTarget(input.Status) {
		ctx.StatusCode(iris.StatusBadRequest)
		ctx.JSON(iris.Map{"message": "Invalid status"})
		return
	}

	oldStatus := booking.Status
	booking.Status = input.Status

	// Push to the guest's live connection first; the event is advisory and
	// the persisted record below is what the client can always rely on.
	socket.EmitBookingUpdated(booking.UserID, socket.BookingUpdatedEvent{
		Status:    booking.Status,
		BookingID: booking.ID,
		UserID:    input.UserID,
		Message:   fmt.Sprintf("Your booking has been %s", booking.Status),
	})

	if err := storage.DB.Save(&booking).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	// Fan out the two notification records. A booking whose listing is gone
	// skips this step entirely; the status change above still stands.
	var listing models.Listing
	if err := storage.DB.First(&listing, booking.ListingID).Error; err == nil {
		services.NotificationServiceInstance.NotifyBookingStatusChange(
			&booking, oldStatus, booking.Status, booking.UserID, listing.HostID, listing.Title)
	} else {
		log.Printf("listing %d not found for booking %d, skipping notifications", booking.ListingID, booking.ID)
	}

	ctx.JSON(iris.Map{
		"success":        true,
		"message":        fmt.Sprintf("Booking %s", input.Status),
		"updatedBooking": booking,
	})
}

type PauseBookingInput struct {
	BookingID uint `json:"bookingId" validate:"required"`
	UserID    uint `json:"userId" validate:"required"`
}

// PauseBooking is the fixed-target variant of ApproveBooking. It does not
// emit a realtime event, only the persisted records.
func PauseBooking(ctx iris.Context) {
	var input PauseBookingInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var booking models.Booking
	res := storage.DB.First(&booking, input.BookingID)
	if res.Error != nil || booking.HostID != input.UserID {
		ctx.StatusCode(iris.StatusForbidden)
		ctx.JSON(iris.Map{"message": "Not authorized"})
		return
	}

	oldStatus := booking.Status
	booking.Status = "paused"

	if err := storage.DB.Save(&booking).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	var listing models.Listing
	if err := storage.DB.First(&listing, booking.ListingID).Error; err == nil {
		services.NotificationServiceInstance.NotifyBookingStatusChange(
			&booking, oldStatus, booking.Status, booking.UserID, listing.HostID, listing.Title)
	}

	ctx.JSON(iris.Map{
		"success":        true,
		"message":        "Booking paused",
		"updatedBooking": booking,
	})
}

type CreateBookingInput struct {
	CheckIn  time.Time `json:"checkIn" validate:"required"`
	CheckOut time.Time `json:"checkOut" validate:"required"`
	Guests   int       `json:"guests" validate:"required,gte=1,lte=16"`
	Note     string    `json:"note"`
}

// CreateBooking records a pending booking request from the authenticated
// guest against the listing in the URL.
func CreateBooking(ctx iris.Context) {
	listingID := ctx.Params().Get("id")

	claims := jwt.Get(ctx).(*utils.AccessToken)

	var input CreateBookingInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	if !input.CheckIn.Before(input.CheckOut) {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "checkIn must be before checkOut", ctx)
		return
	}

	var listing models.Listing
	if err := storage.DB.First(&listing, listingID).Error; err != nil {
		utils.CreateError(iris.StatusNotFound, "Not Found", "Listing not found", ctx)
		return
	}

	nights := int(input.CheckOut.Sub(input.CheckIn).Hours() / 24)
	if nights < 1 {
		nights = 1
	}

	var booking models.Booking
	parsedID, _ := strconv.ParseUint(listingID, 10, 64)
	booking.ListingID = uint(parsedID)
	booking.UserID = claims.ID
	booking.HostID = listing.HostID
	booking.CheckIn = input.CheckIn
	booking.CheckOut = input.CheckOut
	booking.Guests = input.Guests
	booking.TotalPrice = listing.Price * float32(nights)
	booking.Status = "pending"
	booking.Note = input.Note

	if err := storage.DB.Create(&booking).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	// Reload with relationships for the response
	storage.DB.Preload("Listing").Preload("Guest").First(&booking, booking.ID)

	guestName := "A guest"
	var guest models.User
	if err := storage.DB.First(&guest, claims.ID).Error; err == nil {
		guestName = guest.Name
	}
	services.NotificationServiceInstance.NotifyBookingRequest(&booking, guestName, listing.Title)

	ctx.JSON(booking)
}

// GetUserBookings returns the authenticated guest's bookings, newest first.
func GetUserBookings(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var bookings []models.Booking
	res := storage.DB.Preload("Listing").Preload("Listing.Host").
		Where("user_id = ?", claims.ID).
		Order("created_at DESC").
		Find(&bookings)

	if res.Error != nil {
		utils.CreateError(iris.StatusInternalServerError, "Error", res.Error.Error(), ctx)
		return
	}

	ctx.JSON(bookings)
}

// GetHostBookings returns bookings against all of the host's listings.
func GetHostBookings(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var bookings []models.Booking
	res := storage.DB.Preload("Listing").Preload("Guest").
		Where("host_id = ?", claims.ID).
		Order("created_at DESC").
		Find(&bookings)

	if res.Error != nil {
		utils.CreateError(iris.StatusInternalServerError, "Error", res.Error.Error(), ctx)
		return
	}

	ctx.JSON(bookings)
}

type CancelBookingInput struct {
	BookingID uint `json:"bookingId" validate:"required"`
}

// CancelBooking lets the guest who made a booking cancel it. Approved and
// completed stays cannot be cancelled from the app.
func CancelBooking(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var input CancelBookingInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var booking models.Booking
	if err := storage.DB.Where("id = ? AND user_id = ?", input.BookingID, claims.ID).First(&booking).Error; err != nil {
		ctx.StatusCode(iris.StatusNotFound)
		ctx.JSON(iris.Map{"message": "Booking not found"})
		return
	}

	if booking.Status == "approved" || booking.Status == "confirmed" || booking.Status == "completed" {
		ctx.StatusCode(iris.StatusBadRequest)
		ctx.JSON(iris.Map{"message": "Cannot cancel an approved or completed booking"})
		return
	}

	if booking.Status == "cancelled" {
		ctx.StatusCode(iris.StatusBadRequest)
		ctx.JSON(iris.Map{"message": "Booking is already cancelled"})
		return
	}

	booking.Status = "cancelled"
	if err := storage.DB.Save(&booking).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	var listing models.Listing
	if err := storage.DB.First(&listing, booking.ListingID).Error; err == nil {
		services.NotificationServiceInstance.CreateNotification(services.CreateNotificationInput{
			UserID:  booking.HostID,
			Type:    "booking_cancelled",
			Title:   "Booking Cancelled",
			Message: fmt.Sprintf("A guest cancelled their booking for %q", listing.Title),
			Data:    map[string]interface{}{"bookingId": booking.ID},
		})
	}

	ctx.JSON(iris.Map{
		"success":        true,
		"message":        "Booking cancelled",
		"updatedBooking": booking,
	})
}
