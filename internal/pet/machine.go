/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package pet holds the desktop pet's animation state machine as an
// explicit value: position, frame counter and behavior live on the
// Machine, not in package globals, so the transition logic is testable
// without a display. Rendering stays in the external pet front-end.
package pet

import "math/rand"

// State enumerates the animation loops.
type State string

const (
	StateIdle        State = "idle"
	StateIdleToSleep State = "idle_to_sleep"
	StateSleep       State = "sleep"
	StateSleepToIdle State = "sleep_to_idle"
	StateWalkLeft    State = "walk_left"
	StateWalkRight   State = "walk_right"
)

// Behavior is the mood pushed in by classification decisions.
type Behavior string

const (
	BehaviorEncourage Behavior = "encourage"
	BehaviorAlert     Behavior = "alert"
	BehaviorRelax     Behavior = "relax"
)

const (
	defaultFrames = 8  // frames per animation loop
	walkStep      = 3  // x pixels per walking frame
	rollSides     = 18 // weighted event table size
)

// Snapshot is a read-only copy of the machine state for observers.
type Snapshot struct {
	State    State    `json:"state"`
	Frame    int      `json:"frame"`
	X        int      `json:"x"`
	Behavior Behavior `json:"behavior"`
}

// Machine is the pet's full animation state.
type Machine struct {
	State    State
	Frame    int
	X        int
	Behavior Behavior

	frames map[State]int
	rng    *rand.Rand
}

// NewMachine creates a machine at x with the given RNG. A nil rng gets
// a fixed seed, which keeps zero-value usage deterministic.
func NewMachine(x int, rng *rand.Rand) *Machine {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &Machine{
		State:    StateIdle,
		X:        x,
		Behavior: BehaviorRelax,
		frames: map[State]int{
			StateIdle:        defaultFrames,
			StateIdleToSleep: defaultFrames,
			StateSleep:       defaultFrames,
			StateSleepToIdle: defaultFrames,
			StateWalkLeft:    defaultFrames,
			StateWalkRight:   defaultFrames,
		},
		rng: rng,
	}
}

// Snapshot returns a copy of the observable state.
func (m *Machine) Snapshot() Snapshot {
	return Snapshot{State: m.State, Frame: m.Frame, X: m.X, Behavior: m.Behavior}
}

// SetFrameCount overrides the frame count for one animation loop.
func (m *Machine) SetFrameCount(state State, frames int) {
	if frames > 0 {
		m.frames[state] = frames
	}
}

// SetBehavior applies a classification verdict to the pet's mood. An
// alert wakes a sleeping pet immediately.
func (m *Machine) SetBehavior(b Behavior) {
	m.Behavior = b
	if b == BehaviorAlert && (m.State == StateSleep || m.State == StateIdleToSleep) {
		m.State = StateSleepToIdle
		m.Frame = 0
	}
}

// Advance steps one animation frame, moving the pet when walking and
// rolling the next animation when the current loop completes.
func (m *Machine) Advance() {
	switch m.State {
	case StateWalkLeft:
		m.X -= walkStep
	case StateWalkRight:
		m.X += walkStep
	}

	m.Frame++
	if m.Frame < m.frames[m.State] {
		return
	}
	m.Frame = 0
	m.State = m.next()
}

// next picks the following animation. Transitions in and out of sleep
// always pass through their transition loops; otherwise a weighted roll
// decides, shaped by the current behavior.
func (m *Machine) next() State {
	switch m.State {
	case StateIdleToSleep:
		return StateSleep
	case StateSleepToIdle:
		return StateIdle
	}

	candidate := m.roll()
	if m.State == StateSleep && candidate != StateSleep {
		return StateSleepToIdle
	}
	return candidate
}

func (m *Machine) roll() State {
	roll := m.rng.Intn(rollSides) + 1

	switch m.Behavior {
	case BehaviorAlert:
		// Stay awake and restless while the user is off track.
		switch {
		case roll <= 8:
			return StateIdle
		case roll <= 13:
			return StateWalkLeft
		default:
			return StateWalkRight
		}
	case BehaviorEncourage:
		// Awake and calm while the user is working.
		switch {
		case roll <= 12:
			return StateIdle
		case roll <= 15:
			return StateWalkLeft
		default:
			return StateWalkRight
		}
	default:
		// Relaxed: heavily weighted toward sleeping, walking is rare.
		switch {
		case roll <= 3:
			return StateIdle
		case roll <= 6:
			return m.towardSleep()
		case roll <= 11:
			return m.towardSleep()
		case roll <= 14:
			return StateIdle
		case roll <= 16:
			return StateWalkLeft
		default:
			return StateWalkRight
		}
	}
}

func (m *Machine) towardSleep() State {
	if m.State == StateSleep {
		return StateSleep
	}
	return StateIdleToSleep
}
