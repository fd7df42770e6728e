// Package server exposes HTTP handlers: the WebSocket upgrade endpoint, the
// recruit listing endpoint, and the health check.
package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     checkOrigin,
}

// WebSocketHandler handles WebSocket upgrade requests and manages client connections.
// It validates that the request uses the GET method, extracts the declared
// identity from the handshake query (generating one when absent), upgrades the
// HTTP connection to WebSocket, and registers the new Client with the hub.
//
// A reconnecting client is indistinguishable from a new one: no reconnection
// state is kept server-side, and declared-identity collisions between
// connections are not resolved.
func WebSocketHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. WebSocket endpoint only accepts GET requests.", http.StatusMethodNotAllowed)
		return
	}

	userID := r.URL.Query().Get("userId")
	if userID == "" {
		userID = uuid.NewString()
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := NewClient(conn, hub, r.RemoteAddr, userID)

	// Register the client with the hub; the hub will create the presence
	// record and launch the pump goroutines.
	client.hub.register <- client
}

// RecruitsHandler serves the initial recruit listing over plain
// request/response, separate from the persistent connection. It returns the
// catalog snapshot as a JSON array, newest post first.
func RecruitsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. Recruit listing only accepts GET requests.", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(hub.Catalog().Snapshot()); err != nil {
		log.Printf("Error writing recruit listing: %v", err)
	}
}

// HealthHandler provides a simple health check endpoint that returns server status.
// It responds with a plain text message indicating the server is running.
func HealthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = fmt.Fprintf(w, "ridelink server is running!")
}
