package state

import (
	"testing"
	"time"
)

func TestStoreAddRecent(t *testing.T) {
	s := NewStore()
	s.Add(PhaseRecord{SlotName: "DSA", Kind: "work", Minutes: 25, At: time.Now()})
	s.Add(PhaseRecord{SlotName: "DSA", Kind: "break", Minutes: 5, At: time.Now()})

	recent := s.Recent()
	if len(recent) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recent))
	}
	if recent[0].Kind != "work" || recent[1].Kind != "break" {
		t.Errorf("unexpected order: %+v", recent)
	}

	// Snapshot is a copy.
	recent[0].SlotName = "mutated"
	if s.Recent()[0].SlotName != "DSA" {
		t.Error("Recent must return a copy")
	}
}

func TestStorePrune(t *testing.T) {
	s := NewStore()
	old := time.Now().Add(-2 * time.Hour)
	s.Add(PhaseRecord{SlotName: "old", At: old})
	s.Add(PhaseRecord{SlotName: "new", At: time.Now()})

	s.Prune(time.Now().Add(-time.Hour))
	recent := s.Recent()
	if len(recent) != 1 || recent[0].SlotName != "new" {
		t.Errorf("unexpected records after prune: %+v", recent)
	}
}
