/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package relay implements the single-slot pending-command mailbox the
// browser extension polls for tab-group commands. A new set overwrites
// any unacknowledged prior command — lost-update semantics by design.
package relay

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/friendsincode/focuspet/internal/events"
)

// Command is one pending relay command.
type Command struct {
	ID        string         `json:"id"`
	Action    string         `json:"action"`
	Payload   map[string]any `json:"payload"`
	CreatedAt float64        `json:"created_at"` // unix seconds
}

// Store holds at most one outstanding command.
type Store struct {
	mu      sync.Mutex
	pending *Command
	bus     *events.Bus
	now     func() time.Time
}

// NewStore creates an empty command store.
func NewStore(bus *events.Bus) *Store {
	return &Store{bus: bus, now: time.Now}
}

// Set replaces any pending command and returns the new one.
func (s *Store) Set(action string, payload map[string]any) Command {
	cmd := Command{
		ID:        uuid.NewString(),
		Action:    action,
		Payload:   payload,
		CreatedAt: float64(s.now().UnixNano()) / float64(time.Second),
	}

	s.mu.Lock()
	s.pending = &cmd
	s.mu.Unlock()

	if s.bus != nil {
		s.bus.Publish(events.EventCommandSet, events.Payload{"id": cmd.ID, "action": cmd.Action})
	}
	return cmd
}

// Get returns the pending command, or nil.
func (s *Store) Get() *Command {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return nil
	}
	cmd := *s.pending
	return &cmd
}

// Ack clears the pending command when id matches (or unconditionally
// for an empty id). It reports whether anything was cleared.
func (s *Store) Ack(id string) bool {
	s.mu.Lock()
	cleared := false
	if s.pending != nil && (id == "" || s.pending.ID == id) {
		s.pending = nil
		cleared = true
	}
	s.mu.Unlock()

	if cleared && s.bus != nil {
		s.bus.Publish(events.EventCommandAcked, events.Payload{"id": id})
	}
	return cleared
}
