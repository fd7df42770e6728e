// Package client owns the single logical server connection: idempotent
// connect, self-perpetuating reconnection, and send/disconnect.
package client

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// defaultReconnectDelay is the fixed pause before a dropped connection is
// re-dialed.
const defaultReconnectDelay = 3 * time.Second

// Handler receives each inbound frame that carries data.
type Handler func(data []byte)

// Controller maintains at most one physical WebSocket connection at a time.
// Transport failures route through a single closed path that schedules
// exactly one reconnection timer; the loop runs until Disconnect is called.
//
// A Controller is safe for concurrent use. Construct one per process and
// inject it where needed.
type Controller struct {
	mu        sync.Mutex
	conn      *websocket.Conn
	writeMu   sync.Mutex
	open      bool
	stopped   bool
	reconnect *time.Timer
	endpoint  string
	handler   Handler

	dialer *websocket.Dialer
	delay  time.Duration
}

// NewController returns a disconnected controller with the default
// reconnection delay.
func NewController() *Controller {
	return &Controller{
		dialer: websocket.DefaultDialer,
		delay:  defaultReconnectDelay,
	}
}

// Connect opens the connection to endpoint and delivers inbound frames to
// handler. It is idempotent: calling it while a connection is open is a
// no-op, so call sites may invoke it on every mount. A dial failure is
// treated like a dropped connection and schedules a reconnection attempt.
func (c *Controller) Connect(endpoint string, handler Handler) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.open {
		return nil
	}

	c.stopped = false
	c.endpoint = endpoint
	c.handler = handler

	conn, _, err := c.dialer.Dial(endpoint, nil)
	if err != nil {
		log.Printf("Socket dial to %s failed: %v", endpoint, err)
		c.scheduleReconnectLocked()
		return err
	}

	log.Printf("Socket connected: %s", endpoint)
	c.conn = conn
	c.open = true
	c.cancelReconnectLocked()

	go c.readLoop(conn)
	return nil
}

// IsConnected reports whether the connection is currently open.
func (c *Controller) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

// Send serializes v and transmits it when the connection is open. While
// disconnected it is a logged no-op: nothing is queued and no error reaches
// the caller.
func (c *Controller) Send(v any) {
	c.mu.Lock()
	conn := c.conn
	open := c.open
	c.mu.Unlock()

	if !open || conn == nil {
		log.Printf("Socket not connected; dropping outbound message")
		return
	}

	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("Error serializing outbound message: %v", err)
		return
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		log.Printf("Socket write failed: %v", err)
	}
}

// Disconnect cancels any pending reconnection timer, closes the connection if
// open, and clears state. It is the only cancellation path for the
// reconnection loop and must be invoked at client-process teardown; a fresh
// Connect afterwards works cleanly.
func (c *Controller) Disconnect() {
	c.mu.Lock()
	c.stopped = true
	c.cancelReconnectLocked()
	conn := c.conn
	c.conn = nil
	c.open = false
	c.mu.Unlock()

	if conn != nil {
		if err := conn.Close(); err != nil {
			log.Printf("Error closing socket: %v", err)
		}
	}
}

// readLoop delivers inbound frames until the connection drops, then routes
// through the single closed path. Read errors and remote closes land here
// uniformly, so there is no separate error-handling branch to keep in sync.
func (c *Controller) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.handleClosed(conn)
			return
		}

		c.mu.Lock()
		handler := c.handler
		c.mu.Unlock()

		if handler != nil && len(data) > 0 {
			handler(data)
		}
	}
}

// handleClosed marks the connection closed and schedules a reconnection
// attempt unless Disconnect stopped the loop or a timer is already pending.
func (c *Controller) handleClosed(conn *websocket.Conn) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// A stale read loop from a previous connection must not touch the
	// current one.
	if c.conn != conn {
		return
	}

	log.Printf("Socket disconnected")
	c.conn = nil
	c.open = false
	c.scheduleReconnectLocked()
}

// scheduleReconnectLocked arms the single reconnection timer. The pending
// check keeps duplicate close events from starting overlapping attempts.
func (c *Controller) scheduleReconnectLocked() {
	if c.stopped || c.reconnect != nil {
		return
	}

	endpoint := c.endpoint
	handler := c.handler
	log.Printf("Retrying connection in %s...", c.delay)
	c.reconnect = time.AfterFunc(c.delay, func() {
		c.mu.Lock()
		c.reconnect = nil
		stopped := c.stopped
		c.mu.Unlock()

		if stopped {
			return
		}
		// Self-perpetuating: a failed dial schedules the next attempt.
		_ = c.Connect(endpoint, handler)
	})
}

// cancelReconnectLocked stops and clears a pending reconnection timer.
func (c *Controller) cancelReconnectLocked() {
	if c.reconnect != nil {
		c.reconnect.Stop()
		c.reconnect = nil
	}
}
