package socket

import (
	"log"
	"net/http"
	"strconv"
	"sync"

	"github.com/gorilla/websocket"
)

// Process-local registry of userID -> active connection. A user opening a
// second connection replaces the first (last write wins). Not shared across
// server instances; missed pushes are acceptable because every event is also
// persisted as a notification record.
var (
	mu          sync.RWMutex
	connections = make(map[uint]*websocket.Conn)
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// BookingUpdatedEvent is pushed to the guest when a host changes a booking.
type BookingUpdatedEvent struct {
	Event     string `json:"event"`
	Status    string `json:"status"`
	BookingID uint   `json:"bookingId"`
	UserID    uint   `json:"userId"`
	Message   string `json:"message"`
}

// HandleWebSocket upgrades the request and keeps the connection registered
// until the client goes away.
func HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	userIDParam := r.URL.Query().Get("userId")
	userID, err := strconv.ParseUint(userIDParam, 10, 32)
	if err != nil || userID == 0 {
		http.Error(w, "Missing userId", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, "WebSocket upgrade failed", http.StatusInternalServerError)
		return
	}
	defer conn.Close()

	Register(uint(userID), conn)
	log.Println("ws connected:", userID)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			log.Println("ws disconnected:", userID)
			Unregister(uint(userID), conn)
			break
		}
	}
}

func Register(userID uint, conn *websocket.Conn) {
	mu.Lock()
	connections[userID] = conn
	mu.Unlock()
}

// Unregister drops the mapping only if it still points at conn, so a newer
// connection for the same user is not torn down by a stale reader exiting.
func Unregister(userID uint, conn *websocket.Conn) {
	mu.Lock()
	if connections[userID] == conn {
		delete(connections, userID)
	}
	mu.Unlock()
}

// EmitBookingUpdated pushes the event to the user's connection if one is
// registered. A user without an active connection is a silent no-op.
func EmitBookingUpdated(userID uint, event BookingUpdatedEvent) {
	mu.RLock()
	conn := connections[userID]
	mu.RUnlock()

	if conn == nil {
		return
	}

	event.Event = "booking-updated"
	if err := conn.WriteJSON(event); err != nil {
		log.Println("ws write failed for user", userID, ":", err)
	}
}

// IsConnected reports whether the user has a live connection.
func IsConnected(userID uint) bool {
	mu.RLock()
	defer mu.RUnlock()
	return connections[userID] != nil
}
