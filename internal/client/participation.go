// Package client tracks whether the local user is idle, owns a recruit, or
// has joined one, persisting the answer so it survives a reload.
package client

import (
	"strconv"
	"sync"
)

// Status enumerates the local user's relationship to the recruit catalog.
type Status string

const (
	StatusIdle   Status = "IDLE"
	StatusOwner  Status = "OWNER"
	StatusJoined Status = "JOINED"
)

// Persisted key names. Kept stable so existing installs keep their state
// across upgrades.
const (
	statusKey  = "myStatus"
	recruitKey = "myRecruitId"
)

// Participation is the client-local state machine over
// IDLE -> OWNER | JOINED -> IDLE. A recruit identifier is present iff the
// status is not IDLE. Every status-affecting mutation persists immediately;
// Clear removes the persisted entries.
//
// The state is advisory only: the server neither enforces nor validates it
// against the recruit catalog.
type Participation struct {
	mu        sync.Mutex
	store     Store
	status    Status
	recruitID int64
}

// NewParticipation loads the persisted state from store. A persisted status
// without a recruit identifier is treated as IDLE so the identifier
// invariant holds from the start.
func NewParticipation(store Store) *Participation {
	p := &Participation{store: store, status: StatusIdle}

	status, ok := store.Get(statusKey)
	if !ok {
		return p
	}

	raw, ok := store.Get(recruitKey)
	if !ok {
		return p
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id == 0 {
		return p
	}

	switch Status(status) {
	case StatusOwner, StatusJoined:
		p.status = Status(status)
		p.recruitID = id
	}
	return p
}

// SetOwner records that the local user created the identified recruit post.
func (p *Participation) SetOwner(recruitID int64) error {
	return p.set(StatusOwner, recruitID)
}

// SetJoined records that the local user joined the identified recruit post.
func (p *Participation) SetJoined(recruitID int64) error {
	return p.set(StatusJoined, recruitID)
}

func (p *Participation) set(status Status, recruitID int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.status = status
	p.recruitID = recruitID

	if err := p.store.Set(statusKey, string(status)); err != nil {
		return err
	}
	return p.store.Set(recruitKey, strconv.FormatInt(recruitID, 10))
}

// Clear resets the state to IDLE and removes both persisted entries.
func (p *Participation) Clear() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.status = StatusIdle
	p.recruitID = 0

	if err := p.store.Delete(statusKey); err != nil {
		return err
	}
	return p.store.Delete(recruitKey)
}

// Current returns the status and, when not IDLE, the associated recruit
// identifier.
func (p *Participation) Current() (Status, int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status, p.recruitID
}
