package server

import (
	"regexp"
	"testing"
)

func ptr(v float64) *float64 { return &v }

// TestRegistryLocatedFiltersUnlocatedConnections verifies that the presence
// broadcast list excludes any connection lacking coordinates: three
// connections where only two sent a location yield a two-element list.
func TestRegistryLocatedFiltersUnlocatedConnections(t *testing.T) {
	hub := NewHub()
	registry := newPresenceRegistry()

	first := NewClient(nil, hub, "127.0.0.1:1", "user-1")
	second := NewClient(nil, hub, "127.0.0.1:2", "user-2")
	third := NewClient(nil, hub, "127.0.0.1:3", "user-3")

	registry.Add(first, "user-1")
	registry.Add(second, "user-2")
	registry.Add(third, "user-3")

	registry.SetLocation(first, ptr(37.498), ptr(127.027))
	registry.SetLocation(second, ptr(37.555), ptr(126.970))

	located := registry.Located()
	if len(located) != 2 {
		t.Fatalf("Expected 2 located users, got %d", len(located))
	}
	for _, user := range located {
		if user.ID == "user-3" {
			t.Errorf("Unlocated connection %q leaked into presence list", user.ID)
		}
	}
}

// TestRegistryPartialLocationStaysUnlocated verifies that an update missing
// one coordinate keeps the connection out of the presence list.
func TestRegistryPartialLocationStaysUnlocated(t *testing.T) {
	hub := NewHub()
	registry := newPresenceRegistry()
	client := NewClient(nil, hub, "127.0.0.1:1", "user-1")
	registry.Add(client, "user-1")

	registry.SetLocation(client, ptr(37.498), nil)

	if located := registry.Located(); len(located) != 0 {
		t.Errorf("Expected empty presence list, got %d entries", len(located))
	}
}

// TestRegistryRemove verifies that removal drops the record exactly once and
// tolerates unknown clients.
func TestRegistryRemove(t *testing.T) {
	hub := NewHub()
	registry := newPresenceRegistry()
	client := NewClient(nil, hub, "127.0.0.1:1", "user-1")
	registry.Add(client, "user-1")
	registry.SetLocation(client, ptr(1), ptr(2))

	registry.Remove(client)
	if registry.Len() != 0 {
		t.Errorf("Expected empty registry after removal, got %d records", registry.Len())
	}

	// Removing again must be a no-op.
	registry.Remove(client)

	registry.SetLocation(client, ptr(3), ptr(4))
	if located := registry.Located(); len(located) != 0 {
		t.Errorf("Location update after removal resurrected the record: %d entries", len(located))
	}
}

// TestRandomColorFormat verifies the generated marker color shape.
func TestRandomColorFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^#[0-9a-f]{6}$`)
	for i := 0; i < 32; i++ {
		if color := randomColor(); !pattern.MatchString(color) {
			t.Fatalf("Unexpected color format: %q", color)
		}
	}
}
