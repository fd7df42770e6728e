// Package server tracks live participant presence: one record per open
// connection, owned exclusively by the registry.
package server

import (
	"fmt"
	"math/rand"
	"sync"
)

// PresenceInfo is the wire shape of one located participant in an
// updateUsers broadcast.
type PresenceInfo struct {
	ID    string  `json:"id"`
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
	Color string  `json:"color"`
}

// presence is the per-connection record behind PresenceInfo. Coordinates stay
// nil until the first complete location update from that connection.
type presence struct {
	id    string
	lat   *float64
	lng   *float64
	color string
}

// located reports whether the record carries both coordinates and may appear
// in a presence broadcast.
func (p *presence) located() bool {
	return p.lat != nil && p.lng != nil
}

// presenceRegistry maps each live client connection to its presence record.
// It is the source of truth for who is online. All access is serialized by
// the internal mutex; entries are inserted on register and removed exactly
// once on unregister.
type presenceRegistry struct {
	mu      sync.RWMutex
	records map[*Client]*presence
}

func newPresenceRegistry() *presenceRegistry {
	return &presenceRegistry{records: make(map[*Client]*presence)}
}

// Add inserts a fresh, unlocated record for the client. Identity collisions
// between connections are not resolved; each connection keeps its own record.
func (r *presenceRegistry) Add(client *Client, id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[client] = &presence{id: id, color: randomColor()}
}

// Remove deletes the client's record. Removing an unknown client is a no-op.
func (r *presenceRegistry) Remove(client *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.records, client)
}

// SetLocation replaces the client's coordinates in place. A nil latitude or
// longitude leaves the record unlocated, dropping it from broadcasts until a
// complete update arrives.
func (r *presenceRegistry) SetLocation(client *Client, lat, lng *float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.records[client]
	if !ok {
		return
	}
	record.lat = lat
	record.lng = lng
}

// Located returns the wire-ready list of every record that has both
// coordinates set. Connections that never sent a location are excluded.
func (r *presenceRegistry) Located() []PresenceInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]PresenceInfo, 0, len(r.records))
	for _, record := range r.records {
		if !record.located() {
			continue
		}
		users = append(users, PresenceInfo{
			ID:    record.id,
			Lat:   *record.lat,
			Lng:   *record.lng,
			Color: record.color,
		})
	}
	return users
}

// Len reports the number of live records.
func (r *presenceRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

// randomColor generates a map-marker color, fixed for the connection's
// lifetime.
func randomColor() string {
	return fmt.Sprintf("#%06x", rand.Intn(0x1000000))
}
