package state

import (
	"sync"
	"time"
)

// PhaseRecord stores one completed work or break phase.
type PhaseRecord struct {
	SlotName string
	Date     string
	Kind     string // "work" or "break"
	Minutes  int
	At       time.Time
}

// Store keeps in-memory phase history for quick status checks.
type Store struct {
	mu     sync.RWMutex
	recent []PhaseRecord
}

// NewStore creates a scheduler state store.
func NewStore() *Store {
	return &Store{recent: make([]PhaseRecord, 0, 64)}
}

// Add registers a completed phase.
func (s *Store) Add(rec PhaseRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recent = append(s.recent, rec)
}

// Recent returns a snapshot of tracked phases.
func (s *Store) Recent() []PhaseRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]PhaseRecord, len(s.recent))
	copy(out, s.recent)
	return out
}

// Prune removes entries older than cutoff.
func (s *Store) Prune(cutoff time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	filtered := s.recent[:0]
	for _, rec := range s.recent {
		if rec.At.After(cutoff) {
			filtered = append(filtered, rec)
		}
	}
	s.recent = filtered
}
