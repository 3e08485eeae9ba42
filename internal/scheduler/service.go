/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package scheduler drives timed work/break cycles against the
// timetable: locate the active slot, run the pomodoro cycles that fit,
// ask the user for a completion status, and persist progress after
// every phase so a crash never loses logged minutes.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/friendsincode/focuspet/internal/events"
	"github.com/friendsincode/focuspet/internal/mailbox"
	"github.com/friendsincode/focuspet/internal/scheduler/state"
	"github.com/friendsincode/focuspet/internal/telemetry"
	"github.com/friendsincode/focuspet/internal/timetable"
)

// Completion is the user's verdict on a finished slot.
type Completion struct {
	Status  string // "Done" or "Not Done"
	Comment string
}

// Prompter blocks until the user supplies a completion status.
type Prompter interface {
	Ask(ctx context.Context, slotName string) (Completion, error)
}

// PhaseSink receives completed phases for durable history.
type PhaseSink interface {
	RecordPhase(ctx context.Context, rec state.PhaseRecord) error
}

// SlotSink receives finalized slots for durable history.
type SlotSink interface {
	RecordSlot(ctx context.Context, slot timetable.Slot) error
}

// tickOutcome is the explicit per-iteration result of the loop: retry
// and backoff policy is a visible branch, not a catch-all.
type tickOutcome int

const (
	tickIdle tickOutcome = iota
	tickCompleted
	tickSkipped
	tickTransient
)

// Service orchestrates the scheduler loop for a single timetable.
type Service struct {
	path     string
	work     int // minutes
	brk      int // minutes
	poll     time.Duration
	cooldown time.Duration
	backoff  time.Duration

	mailbox  *mailbox.Writer
	prompter Prompter
	bus      *events.Bus
	store    *state.Store
	logger   zerolog.Logger

	phaseSink PhaseSink
	slotSink  SlotSink

	// mu guards the in-memory timetable: the loop holds it for a whole
	// slot lifecycle so a racing "now" check never observes a half
	// finalized row.
	mu sync.Mutex
	tt *timetable.Timetable

	// hooks for tests
	now       func() time.Time
	sleep     func(ctx context.Context, d time.Duration) error
	sleepStep time.Duration
}

// New constructs the scheduler service.
func New(path string, workMin, breakMin int, mb *mailbox.Writer, prompter Prompter, bus *events.Bus, store *state.Store, logger zerolog.Logger) *Service {
	if workMin <= 0 {
		workMin = 25
	}
	if breakMin < 0 {
		breakMin = 5
	}
	s := &Service{
		path:      path,
		work:      workMin,
		brk:       breakMin,
		poll:      15 * time.Second,
		cooldown:  5 * time.Second,
		backoff:   10 * time.Second,
		mailbox:   mb,
		prompter:  prompter,
		bus:       bus,
		store:     store,
		logger:    logger.With().Str("component", "scheduler").Logger(),
		now:       time.Now,
		sleepStep: 5 * time.Second,
	}
	s.sleep = s.sleepFor
	return s
}

// SetIntervals overrides the loop intervals.
func (s *Service) SetIntervals(poll, cooldown, backoff time.Duration) {
	if poll > 0 {
		s.poll = poll
	}
	if cooldown >= 0 {
		s.cooldown = cooldown
	}
	if backoff > 0 {
		s.backoff = backoff
	}
}

// SetPhaseSink sets the durable phase history sink.
func (s *Service) SetPhaseSink(sink PhaseSink) {
	s.phaseSink = sink
}

// SetSlotSink sets the durable slot history sink.
func (s *Service) SetSlotSink(sink SlotSink) {
	s.slotSink = sink
}

// Run loads the timetable and executes the scheduler loop until the
// context is cancelled. A missing timetable is a configuration error
// and fails immediately; everything else is retried with backoff.
func (s *Service) Run(ctx context.Context) error {
	tt, err := timetable.Load(s.path)
	if err != nil {
		return fmt.Errorf("load timetable: %w", err)
	}
	s.mu.Lock()
	s.tt = tt
	s.mu.Unlock()

	s.logger.Info().Str("path", s.path).Int("rows", len(tt.Slots)).Msg("scheduler loop started")

	for {
		if err := ctx.Err(); err != nil {
			s.logger.Info().Msg("scheduler loop stopped")
			return err
		}

		telemetry.SchedulerTicksTotal.Inc()
		outcome := s.tick(ctx)

		var pause time.Duration
		switch outcome {
		case tickIdle, tickSkipped:
			pause = s.poll
		case tickCompleted:
			pause = s.cooldown
		case tickTransient:
			pause = s.backoff
		}
		if err := s.sleep(ctx, pause); err != nil {
			s.logger.Info().Msg("scheduler loop stopped")
			return err
		}
	}
}

// phaseRetention bounds the in-memory phase history; the sqlite sink
// keeps the long tail.
const phaseRetention = 24 * time.Hour

// tick performs one iteration of the IDLE → RUNNING_CYCLES →
// AWAITING_COMPLETION state machine.
func (s *Service) tick(ctx context.Context) tickOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.store.Prune(s.now().Add(-phaseRetention))

	idx, remaining, ok := s.tt.FindActive(s.now())
	if !ok {
		return tickIdle
	}
	slot := &s.tt.Slots[idx]

	s.logger.Info().
		Str("slot", slot.SlotName).
		Float64("remaining_min", remaining).
		Msg("active slot found")
	s.publish(events.EventSlotStart, events.Payload{"slot": slot.SlotName, "date": slot.Date})

	phases, err := s.runCycles(ctx, slot, remaining)
	if err != nil {
		// Cancellation mid-phase: whatever was persisted stays persisted.
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return tickTransient
		}
		s.logger.Warn().Err(err).Str("slot", slot.SlotName).Msg("cycle run failed")
		telemetry.SchedulerErrorsTotal.WithLabelValues("cycles").Inc()
		return tickTransient
	}
	if phases == 0 {
		// Too little time to start anything; never prompt about work
		// that never ran.
		s.logger.Debug().Str("slot", slot.SlotName).Float64("remaining_min", remaining).Msg("slot too short for a pomodoro")
		s.publish(events.EventSlotSkipped, events.Payload{"slot": slot.SlotName})
		return tickSkipped
	}

	completion, err := s.prompter.Ask(ctx, slot.SlotName)
	if err != nil {
		s.logger.Warn().Err(err).Str("slot", slot.SlotName).Msg("completion prompt failed")
		telemetry.SchedulerErrorsTotal.WithLabelValues("prompt").Inc()
		return tickTransient
	}

	if err := s.finalize(ctx, slot, completion); err != nil {
		s.logger.Warn().Err(err).Str("slot", slot.SlotName).Msg("slot finalization failed")
		telemetry.SchedulerErrorsTotal.WithLabelValues("finalize").Inc()
		return tickTransient
	}
	return tickCompleted
}

// runCycles computes how many work+break cycles fit into the remaining
// minutes and runs them sequentially, persisting logged minutes after
// every phase. It returns the number of completed work phases.
func (s *Service) runCycles(ctx context.Context, slot *timetable.Slot, remaining float64) (int, error) {
	cycle := s.work + s.brk
	n := int(math.Floor(remaining / float64(cycle)))
	if remaining-float64(n*cycle) >= float64(s.work) {
		// A final work-only phase still fits after the full cycles;
		// never a break after it.
		n++
	}
	if n == 0 {
		return 0, nil
	}

	s.logger.Info().Str("slot", slot.SlotName).Int("pomodoros", n).Msg("starting pomodoros")

	done := 0
	for i := 0; i < n; i++ {
		s.post(fmt.Sprintf("Start WORK: %s\nPomodoro %d/%d\nFocus for %d minutes", slot.SlotName, i+1, n, s.work))
		s.publish(events.EventPhaseStart, events.Payload{"slot": slot.SlotName, "kind": "work", "index": i + 1, "total": n})

		if err := s.sleep(ctx, time.Duration(s.work)*time.Minute); err != nil {
			return done, err
		}
		done++
		s.logPhase(ctx, slot, "work", s.work)

		if i < n-1 {
			s.post(fmt.Sprintf("Take BREAK: %d minutes", s.brk))
			s.publish(events.EventPhaseStart, events.Payload{"slot": slot.SlotName, "kind": "break"})

			if err := s.sleep(ctx, time.Duration(s.brk)*time.Minute); err != nil {
				return done, err
			}
			s.logPhase(ctx, slot, "break", s.brk)
		}
	}

	slot.PomodorosCompleted += done
	if err := timetable.Save(s.tt, s.path); err != nil {
		return done, fmt.Errorf("save pomodoro counter: %w", err)
	}
	return done, nil
}

// logPhase credits a completed phase: minutes to the slot row (written
// through immediately), the in-memory store, the history sink, metrics,
// and the event bus. A failed write loses nothing permanently — the
// minutes stay on the in-memory row and ride out with the next save.
func (s *Service) logPhase(ctx context.Context, slot *timetable.Slot, kind string, minutes int) {
	slot.LoggedMinutes += minutes
	if err := timetable.Save(s.tt, s.path); err != nil {
		s.logger.Warn().Err(err).Str("slot", slot.SlotName).Msg("phase persistence failed")
		telemetry.SchedulerErrorsTotal.WithLabelValues("persist").Inc()
	}

	rec := state.PhaseRecord{
		SlotName: slot.SlotName,
		Date:     slot.Date,
		Kind:     kind,
		Minutes:  minutes,
		At:       s.now(),
	}
	s.store.Add(rec)
	if s.phaseSink != nil {
		if err := s.phaseSink.RecordPhase(ctx, rec); err != nil {
			s.logger.Warn().Err(err).Msg("phase history write failed")
		}
	}
	telemetry.PhasesCompletedTotal.WithLabelValues(kind).Inc()
	s.publish(events.EventPhaseEnd, events.Payload{"slot": slot.SlotName, "kind": kind, "minutes": minutes})
}

// finalize writes the user's completion verdict to the slot row.
// Revisiting a "Not Done" slot later the same day overwrites Comments
// and LastUpdated; the counters only ever grow.
func (s *Service) finalize(ctx context.Context, slot *timetable.Slot, completion Completion) error {
	slot.Status = completion.Status
	slot.Comments = completion.Comment
	slot.LastUpdated = s.now().Format("2006-01-02T15:04")

	if err := timetable.Save(s.tt, s.path); err != nil {
		return fmt.Errorf("save completion: %w", err)
	}

	telemetry.SlotsCompletedTotal.WithLabelValues(completion.Status).Inc()
	s.publish(events.EventSlotComplete, events.Payload{
		"slot":    slot.SlotName,
		"status":  completion.Status,
		"minutes": slot.LoggedMinutes,
	})
	if s.slotSink != nil {
		if err := s.slotSink.RecordSlot(ctx, *slot); err != nil {
			s.logger.Warn().Err(err).Msg("slot history write failed")
		}
	}

	s.logger.Info().
		Str("slot", slot.SlotName).
		Str("status", completion.Status).
		Int("logged_minutes", slot.LoggedMinutes).
		Msg("slot finalized")
	return nil
}

// post writes a status message to the mailbox file. Delivery is best
// effort; the timer simply shows the next message it sees.
func (s *Service) post(msg string) {
	if s.mailbox == nil {
		return
	}
	if err := s.mailbox.Post(msg); err != nil {
		s.logger.Warn().Err(err).Msg("mailbox write failed")
	}
}

func (s *Service) publish(t events.EventType, p events.Payload) {
	if s.bus != nil {
		s.bus.Publish(t, p)
	}
}

// sleepFor sleeps in short fixed steps so process shutdown is observed
// within seconds rather than at the end of a 25 minute phase.
func (s *Service) sleepFor(ctx context.Context, d time.Duration) error {
	for d > 0 {
		step := s.sleepStep
		if step > d {
			step = d
		}
		timer := time.NewTimer(step)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		d -= step
	}
	return nil
}
