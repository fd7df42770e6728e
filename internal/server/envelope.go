// Package server models the JSON envelopes exchanged over the persistent
// connection as a closed set of typed variants.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Inbound envelope discriminators (client -> server).
const (
	typeLocation      = "location"
	typeCreateRecruit = "createRecruit"
	typeJoinRecruit   = "joinRecruit"
)

// Outbound event discriminators (server -> client).
const (
	typeUpdateUsers   = "updateUsers"
	typeNewRecruit    = "newRecruit"
	typeUpdateRecruit = "updateRecruit"
)

// errUnknownEnvelope reports an envelope whose type discriminator is not part
// of the recognized set. The connection is kept open when it occurs.
var errUnknownEnvelope = errors.New("unknown envelope type")

// inboundMessage is the closed union of messages a client may send. Decoding
// yields exactly one of the concrete variants or an error, never a partial
// object.
type inboundMessage interface {
	isInbound()
}

// locationUpdate carries the sender's latest coordinates. Either field may be
// absent, in which case the sender drops out of the presence list until a
// complete update arrives.
type locationUpdate struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

// createRecruitRequest carries the fields of a new recruit post.
type createRecruitRequest struct {
	Payload RecruitDraft `json:"payload"`
}

// joinRecruitRequest targets an existing post by identifier.
type joinRecruitRequest struct {
	RecruitID int64 `json:"recruitId"`
}

func (locationUpdate) isInbound()       {}
func (createRecruitRequest) isInbound() {}
func (joinRecruitRequest) isInbound()   {}

// decodeInbound parses a raw frame into one of the inbound variants. It
// returns errUnknownEnvelope for unrecognized discriminators and a wrapped
// decode error for undecodable bodies.
func decodeInbound(raw []byte) (inboundMessage, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}

	switch head.Type {
	case typeLocation:
		var msg locationUpdate
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, fmt.Errorf("decode location envelope: %w", err)
		}
		return msg, nil
	case typeCreateRecruit:
		var msg createRecruitRequest
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, fmt.Errorf("decode createRecruit envelope: %w", err)
		}
		return msg, nil
	case typeJoinRecruit:
		var msg joinRecruitRequest
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, fmt.Errorf("decode joinRecruit envelope: %w", err)
		}
		return msg, nil
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownEnvelope, head.Type)
	}
}

// updateUsersEvent is the full presence broadcast sent whenever a location
// changes or a connection departs.
type updateUsersEvent struct {
	Type  string         `json:"type"`
	Users []PresenceInfo `json:"users"`
}

// recruitEvent announces a new or updated recruit post to every connection.
type recruitEvent struct {
	Type    string  `json:"type"`
	Recruit Recruit `json:"recruit"`
}

func newUpdateUsersEvent(users []PresenceInfo) updateUsersEvent {
	return updateUsersEvent{Type: typeUpdateUsers, Users: users}
}

func newRecruitEvent(recruit Recruit) recruitEvent {
	return recruitEvent{Type: typeNewRecruit, Recruit: recruit}
}

func updatedRecruitEvent(recruit Recruit) recruitEvent {
	return recruitEvent{Type: typeUpdateRecruit, Recruit: recruit}
}
