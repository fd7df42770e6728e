// Package server implements the real-time coordination core for ridelink:
// live participant presence, the shared recruit catalog, and WebSocket
// broadcast of state deltas to every connected client.
//
// The implementation is organized into specialized files for configuration,
// hub management, presence, the recruit catalog, envelope routing, and HTTP
// handlers to keep the codebase maintainable and testable as the project
// grows.
package server
