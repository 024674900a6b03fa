package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"stayfinder-server/models"
	"stayfinder-server/storage"

	"github.com/kataras/iris/v12"
)

func buildAdminTestApp(t *testing.T) *iris.Application {
	t.Helper()
	app := iris.New()
	app.Get("/api/admin/users/{id:uint}", AdminGetUser)
	app.Get("/api/admin/users", AdminListUsers)
	app.Patch("/api/admin/listings/{id:uint}/reject", AdminRejectListing)
	if err := app.Build(); err != nil {
		t.Fatalf("build app: %v", err)
	}
	return app
}

func TestAdminGetUserIncludesCounts(t *testing.T) {
	setupTestDB(t)
	app := buildAdminTestApp(t)

	user := models.User{Name: "Ana", Email: "ana@example.com"}
	storage.DB.Create(&user)
	storage.DB.Create(&models.Listing{HostID: user.ID, Title: "Cabin"})
	storage.DB.Create(&models.Listing{HostID: user.ID, Title: "Loft"})
	storage.DB.Create(&models.Booking{UserID: user.ID, ListingID: 1, HostID: 2, Status: "pending"})

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/admin/users/%d", user.ID), nil)
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("parse body: %v", err)
	}
	if body["listingCount"].(float64) != 2 {
		t.Errorf("expected listingCount 2, got %v", body["listingCount"])
	}
	if body["bookingCount"].(float64) != 1 {
		t.Errorf("expected bookingCount 1, got %v", body["bookingCount"])
	}
}

func TestAdminListUsersIncludesCounts(t *testing.T) {
	setupTestDB(t)
	app := buildAdminTestApp(t)

	host := models.User{Name: "Ana", Email: "ana@example.com"}
	storage.DB.Create(&host)
	guest := models.User{Name: "Ben", Email: "ben@example.com"}
	storage.DB.Create(&guest)
	storage.DB.Create(&models.Listing{HostID: host.ID, Title: "Cabin"})
	storage.DB.Create(&models.Booking{UserID: guest.ID, ListingID: 1, HostID: host.ID, Status: "pending"})

	req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body)
	}

	var body struct {
		Data []struct {
			User         models.User `json:"user"`
			ListingCount int64       `json:"listingCount"`
			BookingCount int64       `json:"bookingCount"`
		} `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("parse body: %v", err)
	}
	if len(body.Data) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(body.Data))
	}

	counts := map[string][2]int64{}
	for _, row := range body.Data {
		counts[row.User.Email] = [2]int64{row.ListingCount, row.BookingCount}
	}
	if counts["ana@example.com"] != [2]int64{1, 0} {
		t.Errorf("unexpected counts for host: %v", counts["ana@example.com"])
	}
	if counts["ben@example.com"] != [2]int64{0, 1} {
		t.Errorf("unexpected counts for guest: %v", counts["ben@example.com"])
	}
}

func TestAdminRejectListingAuditsReason(t *testing.T) {
	setupTestDB(t)
	app := buildAdminTestApp(t)

	listing := models.Listing{HostID: 3, Title: "Cabin", Status: "pending"}
	storage.DB.Create(&listing)

	payload, _ := json.Marshal(iris.Map{"reason": "blurry photos"})
	req := httptest.NewRequest(http.MethodPatch, fmt.Sprintf("/api/admin/listings/%d/reject", listing.ID), bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body)
	}

	var reloaded models.Listing
	storage.DB.First(&reloaded, listing.ID)
	if reloaded.Status != "rejected" || reloaded.RejectReason != "blurry photos" {
		t.Fatalf("unexpected listing state: status=%q reason=%q", reloaded.Status, reloaded.RejectReason)
	}

	var audit models.AuditLog
	if err := storage.DB.Where("action = ?", "listing.reject").First(&audit).Error; err != nil {
		t.Fatalf("audit row missing: %v", err)
	}
	if audit.TargetType != "listing" || audit.TargetID != listing.ID {
		t.Errorf("audit target mismatch: %+v", audit)
	}
	if audit.Reason != "blurry photos" {
		t.Errorf("expected audit reason recorded, got %q", audit.Reason)
	}

	// Rejection also notifies the host with the reason
	var note models.Notification
	if err := storage.DB.Where("user_id = ?", 3).First(&note).Error; err != nil {
		t.Fatalf("host notification missing: %v", err)
	}
}
