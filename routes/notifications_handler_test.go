package routes

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"stayfinder-server/models"
	"stayfinder-server/storage"
	"stayfinder-server/utils"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

func buildNotificationsTestApp(t *testing.T) *iris.Application {
	t.Helper()
	os.Setenv("ACCESS_TOKEN_SECRET", "testsecret")
	app := iris.New()

	accessTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("ACCESS_TOKEN_SECRET")))
	accessTokenVerifierMiddleware := accessTokenVerifier.Verify(func() interface{} { return new(utils.AccessToken) })

	notifications := app.Party("/api/notifications", accessTokenVerifierMiddleware)
	{
		notifications.Get("/unread-count", GetUnreadCount)
		notifications.Patch("/{id:uint}/read", MarkNotificationRead)
	}

	if err := app.Build(); err != nil {
		t.Fatalf("build app: %v", err)
	}
	return app
}

func signUserToken(t *testing.T, id uint) string {
	t.Helper()
	signer := jwt.NewSigner(jwt.HS256, os.Getenv("ACCESS_TOKEN_SECRET"), 0)
	token, err := signer.Sign(utils.AccessToken{ID: id, Role: "user"})
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return string(token)
}

func doAuthRequest(t *testing.T, app *iris.Application, method, path string, userID uint) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("Authorization", "Bearer "+signUserToken(t, userID))
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)
	return resp
}

func TestMarkNotificationReadWrongAddressee(t *testing.T) {
	setupTestDB(t)
	app := buildNotificationsTestApp(t)

	note := models.Notification{UserID: 5, Type: "booking_status", Title: "Booking Approved"}
	storage.DB.Create(&note)

	resp := doAuthRequest(t, app, http.MethodPatch, fmt.Sprintf("/api/notifications/%d/read", note.ID), 6)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-addressee, got %d", resp.Code)
	}

	var reloaded models.Notification
	storage.DB.First(&reloaded, note.ID)
	if reloaded.IsRead {
		t.Fatal("notification marked read despite 403")
	}
}

func TestMarkNotificationReadIdempotentOnFlag(t *testing.T) {
	setupTestDB(t)
	app := buildNotificationsTestApp(t)

	note := models.Notification{UserID: 5, Type: "booking_status", Title: "Booking Approved"}
	storage.DB.Create(&note)

	path := fmt.Sprintf("/api/notifications/%d/read", note.ID)

	resp := doAuthRequest(t, app, http.MethodPatch, path, 5)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for addressee, got %d: %s", resp.Code, resp.Body)
	}

	var reloaded models.Notification
	storage.DB.First(&reloaded, note.ID)
	if !reloaded.IsRead || reloaded.ReadAt == nil {
		t.Fatalf("expected read flag and timestamp set, got %+v", reloaded)
	}

	// Second call still succeeds and the flag stays true
	resp = doAuthRequest(t, app, http.MethodPatch, path, 5)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 on repeat, got %d", resp.Code)
	}
	storage.DB.First(&reloaded, note.ID)
	if !reloaded.IsRead {
		t.Fatal("read flag flipped back on repeat call")
	}
}

func TestUnreadCountComputedFresh(t *testing.T) {
	setupTestDB(t)
	app := buildNotificationsTestApp(t)

	storage.DB.Create(&models.Notification{UserID: 5, Type: "booking_status"})
	storage.DB.Create(&models.Notification{UserID: 5, Type: "booking_status"})
	storage.DB.Create(&models.Notification{UserID: 5, Type: "booking_status", IsRead: true})
	storage.DB.Create(&models.Notification{UserID: 9, Type: "booking_status"})

	readCount := func() float64 {
		resp := doAuthRequest(t, app, http.MethodGet, "/api/notifications/unread-count", 5)
		if resp.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.Code)
		}
		var body map[string]interface{}
		if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
			t.Fatalf("parse body: %v", err)
		}
		return body["count"].(float64)
	}

	if count := readCount(); count != 2 {
		t.Fatalf("expected 2 unread, got %v", count)
	}

	// Mark one read; the next count reflects it immediately
	var note models.Notification
	storage.DB.Where("user_id = ? AND is_read = ?", 5, false).First(&note)
	doAuthRequest(t, app, http.MethodPatch, fmt.Sprintf("/api/notifications/%d/read", note.ID), 5)

	if count := readCount(); count != 1 {
		t.Fatalf("expected 1 unread after mark-read, got %v", count)
	}
}
