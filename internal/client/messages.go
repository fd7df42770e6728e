// Package client defines the wire shapes the client exchanges with the
// coordination service.
package client

import (
	"encoding/json"
	"fmt"
)

// Outbound message constructors. Each produces a complete envelope ready for
// Controller.Send.

// LocationMessage shares the local user's coordinates.
type LocationMessage struct {
	Type string  `json:"type"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}

// NewLocationMessage builds a location envelope.
func NewLocationMessage(lat, lng float64) LocationMessage {
	return LocationMessage{Type: "location", Lat: lat, Lng: lng}
}

// RecruitPayload carries the fields of a new recruit post.
type RecruitPayload struct {
	Start string   `json:"start"`
	Dest  string   `json:"dest"`
	Time  string   `json:"time"`
	Desc  string   `json:"desc"`
	Tags  []string `json:"tags"`
	Max   int      `json:"max"`
}

// CreateRecruitMessage opens a new carpool post.
type CreateRecruitMessage struct {
	Type    string         `json:"type"`
	Payload RecruitPayload `json:"payload"`
}

// NewCreateRecruitMessage builds a createRecruit envelope.
func NewCreateRecruitMessage(payload RecruitPayload) CreateRecruitMessage {
	return CreateRecruitMessage{Type: "createRecruit", Payload: payload}
}

// JoinRecruitMessage asks to occupy a seat on an existing post.
type JoinRecruitMessage struct {
	Type      string `json:"type"`
	RecruitID int64  `json:"recruitId"`
}

// NewJoinRecruitMessage builds a joinRecruit envelope.
func NewJoinRecruitMessage(recruitID int64) JoinRecruitMessage {
	return JoinRecruitMessage{Type: "joinRecruit", RecruitID: recruitID}
}

// EventKind discriminates the server-to-client events.
type EventKind string

const (
	EventUpdateUsers   EventKind = "updateUsers"
	EventNewRecruit    EventKind = "newRecruit"
	EventUpdateRecruit EventKind = "updateRecruit"
)

// User is one located participant in an updateUsers event.
type User struct {
	ID    string  `json:"id"`
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
	Color string  `json:"color"`
}

// Recruit mirrors the server's recruit post shape.
type Recruit struct {
	ID    int64    `json:"id"`
	Start string   `json:"start"`
	Dest  string   `json:"dest"`
	Time  string   `json:"time"`
	Desc  string   `json:"desc"`
	Tags  []string `json:"tags"`
	Cur   int      `json:"cur"`
	Max   int      `json:"max"`
}

// ServerEvent is the decoded form of one inbound frame. Exactly one of Users
// or Recruit is populated, matching Kind.
type ServerEvent struct {
	Kind    EventKind
	Users   []User
	Recruit *Recruit
}

// DecodeServerEvent parses an inbound frame into a ServerEvent or fails for
// unrecognized kinds.
func DecodeServerEvent(data []byte) (ServerEvent, error) {
	var frame struct {
		Type    string   `json:"type"`
		Users   []User   `json:"users"`
		Recruit *Recruit `json:"recruit"`
	}
	if err := json.Unmarshal(data, &frame); err != nil {
		return ServerEvent{}, fmt.Errorf("decode server event: %w", err)
	}

	switch EventKind(frame.Type) {
	case EventUpdateUsers:
		return ServerEvent{Kind: EventUpdateUsers, Users: frame.Users}, nil
	case EventNewRecruit, EventUpdateRecruit:
		if frame.Recruit == nil {
			return ServerEvent{}, fmt.Errorf("%s event without recruit body", frame.Type)
		}
		return ServerEvent{Kind: EventKind(frame.Type), Recruit: frame.Recruit}, nil
	default:
		return ServerEvent{}, fmt.Errorf("unknown server event type %q", frame.Type)
	}
}
