// Package server maintains the shared recruit catalog: an insertion-ordered,
// capacity-bounded collection of open carpool posts.
package server

import (
	"errors"
	"sync"
	"time"
)

// Recruit is one open carpool post. Cur counts occupied seats, starting at 1
// for the creator; 0 < Cur <= Max holds after every mutation.
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

// RecruitDraft carries the caller-supplied fields of a new post; the catalog
// assigns the identifier and initial occupancy.
type RecruitDraft struct {
	Start string   `json:"start"`
	Dest  string   `json:"dest"`
	Time  string   `json:"time"`
	Desc  string   `json:"desc"`
	Tags  []string `json:"tags"`
	Max   int      `json:"max"`
}

// Join failure modes. Both are silently dropped by the router; callers that
// want to react can test with errors.Is.
var (
	ErrRecruitNotFound = errors.New("recruit not found")
	ErrRecruitFull     = errors.New("recruit already at capacity")
)

// Catalog owns the process-lifetime sequence of recruit posts, newest first.
// All mutation goes through the catalog mutex so concurrent joins can never
// push a post past its capacity. Posts are never deleted.
type Catalog struct {
	mu       sync.Mutex
	recruits []*Recruit
	lastID   int64
	now      func() time.Time
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{now: time.Now}
}

// nextIDLocked assigns a creation-time-based identifier, bumped past the
// previous one when two creates land in the same millisecond.
func (c *Catalog) nextIDLocked() int64 {
	id := c.now().UnixMilli()
	if id <= c.lastID {
		id = c.lastID + 1
	}
	c.lastID = id
	return id
}

// Create inserts a new post at the front of the catalog and returns a copy of
// it. The creator occupies one seat, so Cur starts at 1; a capacity below 1
// is clamped so the occupancy invariant holds from the first mutation.
func (c *Catalog) Create(draft RecruitDraft) Recruit {
	c.mu.Lock()
	defer c.mu.Unlock()

	max := draft.Max
	if max < 1 {
		max = 1
	}

	recruit := &Recruit{
		ID:    c.nextIDLocked(),
		Start: draft.Start,
		Dest:  draft.Dest,
		Time:  draft.Time,
		Desc:  draft.Desc,
		Tags:  append([]string(nil), draft.Tags...),
		Cur:   1,
		Max:   max,
	}
	c.recruits = append([]*Recruit{recruit}, c.recruits...)
	return copyRecruit(recruit)
}

// Join atomically checks and increments the occupancy of the identified post.
// It returns the post-mutation post on success, ErrRecruitNotFound for an
// unknown identifier, and ErrRecruitFull when the post is at capacity.
func (c *Catalog) Join(id int64) (Recruit, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, recruit := range c.recruits {
		if recruit.ID != id {
			continue
		}
		if recruit.Cur >= recruit.Max {
			return Recruit{}, ErrRecruitFull
		}
		recruit.Cur++
		return copyRecruit(recruit), nil
	}
	return Recruit{}, ErrRecruitNotFound
}

// Snapshot returns a defensive copy of the catalog, newest first. It serves
// the initial listing request for newly-loading clients.
func (c *Catalog) Snapshot() []Recruit {
	c.mu.Lock()
	defer c.mu.Unlock()

	recruits := make([]Recruit, 0, len(c.recruits))
	for _, recruit := range c.recruits {
		recruits = append(recruits, copyRecruit(recruit))
	}
	return recruits
}

func copyRecruit(r *Recruit) Recruit {
	out := *r
	out.Tags = append([]string(nil), r.Tags...)
	return out
}
