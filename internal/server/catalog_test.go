package server

import (
	"errors"
	"sync"
	"testing"
	"time"
)

// TestCatalogCreateAssignsFreshIDAndFrontPlacement verifies that every create
// yields cur=1, a previously-unused identifier, and front placement in the
// snapshot taken immediately after.
func TestCatalogCreateAssignsFreshIDAndFrontPlacement(t *testing.T) {
	catalog := NewCatalog()

	first := catalog.Create(RecruitDraft{Start: "Gangnam", Dest: "Pangyo", Time: "Now", Max: 4})
	second := catalog.Create(RecruitDraft{Start: "Seoul Station", Dest: "Hapjeong", Time: "20:30", Max: 3})

	if first.Cur != 1 || second.Cur != 1 {
		t.Errorf("Expected cur=1 for new posts, got %d and %d", first.Cur, second.Cur)
	}
	if first.ID == second.ID {
		t.Errorf("Expected unique identifiers, both were %d", first.ID)
	}
	if second.ID <= first.ID {
		t.Errorf("Expected monotonically increasing ids, got %d then %d", first.ID, second.ID)
	}

	snapshot := catalog.Snapshot()
	if len(snapshot) != 2 {
		t.Fatalf("Expected 2 posts in snapshot, got %d", len(snapshot))
	}
	if snapshot[0].ID != second.ID {
		t.Errorf("Expected newest post %d at the front, found %d", second.ID, snapshot[0].ID)
	}
}

// TestCatalogCreateSameMillisecond verifies identifier uniqueness when two
// creates land inside the same clock millisecond.
func TestCatalogCreateSameMillisecond(t *testing.T) {
	catalog := NewCatalog()
	frozen := time.Now()
	catalog.now = func() time.Time { return frozen }

	first := catalog.Create(RecruitDraft{Start: "A", Dest: "B", Max: 2})
	second := catalog.Create(RecruitDraft{Start: "C", Dest: "D", Max: 2})

	if second.ID != first.ID+1 {
		t.Errorf("Expected id %d after %d, got %d", first.ID+1, first.ID, second.ID)
	}
}

// TestCatalogCreateClampsCapacity verifies that a malformed capacity below 1
// is clamped so the occupancy invariant holds from creation.
func TestCatalogCreateClampsCapacity(t *testing.T) {
	catalog := NewCatalog()

	recruit := catalog.Create(RecruitDraft{Start: "A", Dest: "B", Max: 0})

	if recruit.Max != 1 {
		t.Errorf("Expected capacity clamped to 1, got %d", recruit.Max)
	}
	if recruit.Cur != 1 {
		t.Errorf("Expected cur=1, got %d", recruit.Cur)
	}
}

// TestCatalogJoinIncrementsUntilCapacity verifies that sequential joins fill
// the post and a further join is rejected without mutation.
func TestCatalogJoinIncrementsUntilCapacity(t *testing.T) {
	catalog := NewCatalog()
	recruit := catalog.Create(RecruitDraft{Start: "A", Dest: "B", Max: 4})

	for want := 2; want <= 4; want++ {
		joined, err := catalog.Join(recruit.ID)
		if err != nil {
			t.Fatalf("Join %d failed: %v", want, err)
		}
		if joined.Cur != want {
			t.Errorf("Expected cur=%d after join, got %d", want, joined.Cur)
		}
	}

	if _, err := catalog.Join(recruit.ID); !errors.Is(err, ErrRecruitFull) {
		t.Errorf("Expected ErrRecruitFull on a full post, got %v", err)
	}

	snapshot := catalog.Snapshot()
	if snapshot[0].Cur != 4 {
		t.Errorf("Expected cur unchanged at 4 after rejected join, got %d", snapshot[0].Cur)
	}
}

// TestCatalogJoinUnknownID verifies the not-found failure mode.
func TestCatalogJoinUnknownID(t *testing.T) {
	catalog := NewCatalog()

	if _, err := catalog.Join(12345); !errors.Is(err, ErrRecruitNotFound) {
		t.Errorf("Expected ErrRecruitNotFound, got %v", err)
	}
}

// TestCatalogConcurrentJoinsAdmitExactlyOne verifies that concurrent joins
// against a post with a single free seat admit exactly one of them.
func TestCatalogConcurrentJoinsAdmitExactlyOne(t *testing.T) {
	catalog := NewCatalog()
	recruit := catalog.Create(RecruitDraft{Start: "A", Dest: "B", Max: 2})

	const attempts = 16
	var wg sync.WaitGroup
	results := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := catalog.Join(recruit.ID)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	successes := 0
	for err := range results {
		if err == nil {
			successes++
		} else if !errors.Is(err, ErrRecruitFull) {
			t.Errorf("Unexpected join error: %v", err)
		}
	}
	if successes != 1 {
		t.Errorf("Expected exactly 1 successful join, got %d", successes)
	}

	if cur := catalog.Snapshot()[0].Cur; cur != 2 {
		t.Errorf("Expected cur=2 after concurrent joins, got %d", cur)
	}
}

// TestCatalogSnapshotIsDefensive verifies that mutating a snapshot does not
// leak back into the catalog.
func TestCatalogSnapshotIsDefensive(t *testing.T) {
	catalog := NewCatalog()
	catalog.Create(RecruitDraft{Start: "A", Dest: "B", Tags: []string{"#nonsmoking"}, Max: 3})

	snapshot := catalog.Snapshot()
	snapshot[0].Cur = 99
	snapshot[0].Tags[0] = "#mutated"

	fresh := catalog.Snapshot()
	if fresh[0].Cur != 1 {
		t.Errorf("Snapshot mutation leaked into catalog occupancy: %d", fresh[0].Cur)
	}
	if fresh[0].Tags[0] != "#nonsmoking" {
		t.Errorf("Snapshot mutation leaked into catalog tags: %q", fresh[0].Tags[0])
	}
}
