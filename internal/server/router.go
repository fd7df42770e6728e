// Package server routes decoded inbound envelopes to the presence registry
// and recruit catalog, then triggers the matching broadcast.
package server

import (
	"errors"
	"log"
)

// route applies one inbound frame from the client to the shared state and
// broadcasts the resulting delta. Malformed or unrecognized envelopes are
// logged and dropped; the connection stays open either way.
//
// No per-user validation happens here: the router does not check whether a
// sender already joined a post or owns it. That is a known scope limit of
// this layer, not a guarantee.
func (h *Hub) route(client *Client, raw []byte) {
	msg, err := decodeInbound(raw)
	if err != nil {
		log.Printf("Ignoring envelope from %s: %v", client.userID, err)
		return
	}

	switch m := msg.(type) {
	case locationUpdate:
		h.registry.SetLocation(client, m.Lat, m.Lng)
		h.broadcastPresence()

	case createRecruitRequest:
		recruit := h.catalog.Create(m.Payload)
		log.Printf("Recruit %d created by %s (%s -> %s)", recruit.ID, client.userID, recruit.Start, recruit.Dest)
		h.broadcastEvent(newRecruitEvent(recruit))

	case joinRecruitRequest:
		recruit, err := h.catalog.Join(m.RecruitID)
		if err != nil {
			// Silently dropped: the requester learns nothing beyond the
			// absence of an updateRecruit broadcast.
			if errors.Is(err, ErrRecruitFull) || errors.Is(err, ErrRecruitNotFound) {
				log.Printf("Dropping join from %s for recruit %d: %v", client.userID, m.RecruitID, err)
				return
			}
			log.Printf("Join from %s for recruit %d failed: %v", client.userID, m.RecruitID, err)
			return
		}
		h.broadcastEvent(updatedRecruitEvent(recruit))
	}
}
