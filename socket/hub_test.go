package socket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dialTestServer(t *testing.T, server *httptest.Server, userID string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?userId=" + userID
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	return conn
}

func waitForConnection(t *testing.T, userID uint) {
	t.Helper()
	for i := 0; i < 50; i++ {
		if IsConnected(userID) {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("user %d never registered", userID)
}

func TestWebSocketRegisterAndEmit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(HandleWebSocket))
	defer server.Close()

	conn := dialTestServer(t, server, "42")
	defer conn.Close()

	waitForConnection(t, 42)

	EmitBookingUpdated(42, BookingUpdatedEvent{
		Status:    "approved",
		BookingID: 7,
		UserID:    3,
		Message:   "Your booking has been approved",
	})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var received BookingUpdatedEvent
	if err := conn.ReadJSON(&received); err != nil {
		t.Fatalf("read failed: %v", err)
	}

	if received.Event != "booking-updated" {
		t.Errorf("expected event booking-updated, got %q", received.Event)
	}
	if received.Status != "approved" {
		t.Errorf("expected status approved, got %q", received.Status)
	}
	if received.BookingID != 7 {
		t.Errorf("expected bookingId 7, got %d", received.BookingID)
	}
}

func TestWebSocketRejectsMissingUserID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(HandleWebSocket))
	defer server.Close()

	resp, err := http.Get(server.URL)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 without userId, got %d", resp.StatusCode)
	}
}

func TestEmitToDisconnectedUserIsNoOp(t *testing.T) {
	// No connection registered for this user; must not panic
	EmitBookingUpdated(99999, BookingUpdatedEvent{Status: "approved"})
}

func TestWebSocketUnregisterOnClose(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(HandleWebSocket))
	defer server.Close()

	conn := dialTestServer(t, server, "77")
	waitForConnection(t, 77)

	conn.Close()

	for i := 0; i < 50; i++ {
		if !IsConnected(77) {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("user 77 still registered after close")
}

func TestNewConnectionReplacesOld(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(HandleWebSocket))
	defer server.Close()

	first := dialTestServer(t, server, "55")
	waitForConnection(t, 55)

	second := dialTestServer(t, server, "55")
	defer second.Close()

	// Give the second connection time to take over the slot
	time.Sleep(50 * time.Millisecond)

	// Closing the first connection must not tear down the second's registration
	first.Close()
	time.Sleep(50 * time.Millisecond)

	if !IsConnected(55) {
		t.Fatalf("second connection lost registration after first closed")
	}
}
