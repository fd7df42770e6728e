// Package client implements the ridelink client-side runtime: the single
// logical WebSocket connection with automatic reconnection, and the local
// participation state machine persisted across restarts.
package client
