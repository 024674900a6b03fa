package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"stayfinder-server/models"
	"stayfinder-server/storage"

	"github.com/go-playground/validator/v10"
	"github.com/kataras/iris/v12"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB points the shared handle at a fresh in-memory database.
func setupTestDB(t *testing.T) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Listing{}, &models.Booking{}, &models.Notification{}, &models.AuditLog{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	storage.DB = db
}

func buildBookingTestApp(t *testing.T) *iris.Application {
	t.Helper()
	app := iris.New()
	app.Validator = validator.New()
	app.Post("/api/bookings/approve-booking", ApproveBooking)
	app.Post("/api/bookings/pause-booking", PauseBooking)
	if err := app.Build(); err != nil {
		t.Fatalf("build app: %v", err)
	}
	return app
}

func postJSON(t *testing.T, app *iris.Application, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)
	return resp
}

func notificationCount(t *testing.T) int64 {
	t.Helper()
	var count int64
	storage.DB.Model(&models.Notification{}).Count(&count)
	return count
}

func TestApproveBookingWrongHostMutatesNothing(t *testing.T) {
	setupTestDB(t)
	app := buildBookingTestApp(t)

	listing := models.Listing{HostID: 1, Title: "Beach House"}
	storage.DB.Create(&listing)
	booking := models.Booking{ListingID: listing.ID, UserID: 2, HostID: 1, Status: "pending"}
	storage.DB.Create(&booking)

	resp := postJSON(t, app, "/api/bookings/approve-booking",
		iris.Map{"bookingId": booking.ID, "status": "approved", "userId": 999})
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for wrong host, got %d: %s", resp.Code, resp.Body)
	}

	var reloaded models.Booking
	storage.DB.First(&reloaded, booking.ID)
	if reloaded.Status != "pending" {
		t.Fatalf("booking mutated despite 403, status = %q", reloaded.Status)
	}
	if n := notificationCount(t); n != 0 {
		t.Fatalf("expected 0 notifications, got %d", n)
	}
}

func TestApproveBookingMissingBookingIsForbidden(t *testing.T) {
	setupTestDB(t)
	app := buildBookingTestApp(t)

	resp := postJSON(t, app, "/api/bookings/approve-booking",
		iris.Map{"bookingId": 4242, "status": "approved", "userId": 1})
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for missing booking, got %d", resp.Code)
	}
}

func TestApproveBookingCreatesTwoNotifications(t *testing.T) {
	setupTestDB(t)
	app := buildBookingTestApp(t)

	listing := models.Listing{HostID: 1, Title: "Beach House"}
	storage.DB.Create(&listing)
	booking := models.Booking{ListingID: listing.ID, UserID: 2, HostID: 1, Status: "pending"}
	storage.DB.Create(&booking)

	resp := postJSON(t, app, "/api/bookings/approve-booking",
		iris.Map{"bookingId": booking.ID, "status": "approved", "userId": 1})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body)
	}

	var reloaded models.Booking
	storage.DB.First(&reloaded, booking.ID)
	if reloaded.Status != "approved" {
		t.Fatalf("expected status approved, got %q", reloaded.Status)
	}

	var notes []models.Notification
	storage.DB.Order("id").Find(&notes)
	if len(notes) != 2 {
		t.Fatalf("expected exactly 2 notifications, got %d", len(notes))
	}
	if notes[0].UserID != 2 {
		t.Errorf("first notification should address the guest, got user %d", notes[0].UserID)
	}
	if notes[1].UserID != 1 {
		t.Errorf("second notification should address the host, got user %d", notes[1].UserID)
	}
}

func TestApproveBookingMissingListingSkipsFanOut(t *testing.T) {
	setupTestDB(t)
	app := buildBookingTestApp(t)

	booking := models.Booking{ListingID: 4242, UserID: 2, HostID: 1, Status: "pending"}
	storage.DB.Create(&booking)

	resp := postJSON(t, app, "/api/bookings/approve-booking",
		iris.Map{"bookingId": booking.ID, "status": "rejected", "userId": 1})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 despite missing listing, got %d: %s", resp.Code, resp.Body)
	}

	var reloaded models.Booking
	storage.DB.First(&reloaded, booking.ID)
	if reloaded.Status != "rejected" {
		t.Fatalf("expected status rejected, got %q", reloaded.Status)
	}
	if n := notificationCount(t); n != 0 {
		t.Fatalf("expected fan-out skipped, got %d notifications", n)
	}
}

func TestApproveBookingInvalidStatus(t *testing.T) {
	setupTestDB(t)
	app := buildBookingTestApp(t)

	booking := models.Booking{ListingID: 1, UserID: 2, HostID: 1, Status: "pending"}
	storage.DB.Create(&booking)

	resp := postJSON(t, app, "/api/bookings/approve-booking",
		iris.Map{"bookingId": booking.ID, "status": "cancelled", "userId": 1})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid target status, got %d", resp.Code)
	}

	var reloaded models.Booking
	storage.DB.First(&reloaded, booking.ID)
	if reloaded.Status != "pending" {
		t.Fatalf("booking mutated despite invalid status, got %q", reloaded.Status)
	}
}

func TestPauseBookingSetsPausedAndNotifies(t *testing.T) {
	setupTestDB(t)
	app := buildBookingTestApp(t)

	listing := models.Listing{HostID: 1, Title: "City Loft"}
	storage.DB.Create(&listing)
	booking := models.Booking{ListingID: listing.ID, UserID: 2, HostID: 1, Status: "approved"}
	storage.DB.Create(&booking)

	resp := postJSON(t, app, "/api/bookings/pause-booking",
		iris.Map{"bookingId": booking.ID, "userId": 1})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body)
	}

	var reloaded models.Booking
	storage.DB.First(&reloaded, booking.ID)
	if reloaded.Status != "paused" {
		t.Fatalf("expected status paused, got %q", reloaded.Status)
	}
	if n := notificationCount(t); n != 2 {
		t.Fatalf("expected 2 notifications, got %d", n)
	}
}
