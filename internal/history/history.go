/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package history persists completed phases, finalized slots and
// classification decisions to sqlite so progress survives beyond the
// current timetable file.
package history

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/friendsincode/focuspet/internal/classify"
	"github.com/friendsincode/focuspet/internal/scheduler/state"
	"github.com/friendsincode/focuspet/internal/timetable"
)

// Session is one completed work or break phase.
type Session struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	SlotName string    `gorm:"index" json:"slot_name"`
	Date     string    `gorm:"index" json:"date"`
	Kind     string    `json:"kind"` // "work" or "break"
	Minutes  int       `json:"minutes"`
	EndedAt  time.Time `json:"ended_at"`
}

// SlotResult is one finalized timetable slot.
type SlotResult struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	SlotName      string    `gorm:"index" json:"slot_name"`
	Date          string    `gorm:"index" json:"date"`
	Status        string    `json:"status"`
	Pomodoros     int       `json:"pomodoros"`
	LoggedMinutes int       `json:"logged_minutes"`
	Comments      string    `json:"comments"`
	CreatedAt     time.Time `json:"created_at"`
}

// Decision is one classification outcome.
type Decision struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Domain      string    `gorm:"index" json:"domain"`
	Title       string    `json:"title"`
	Action      string    `json:"action"`
	PetBehavior string    `json:"pet_behavior"`
	Message     string    `json:"message"`
	Source      string    `json:"source"` // rule | model | fallback
	CreatedAt   time.Time `json:"created_at"`
}

// Service wraps the history database.
type Service struct {
	db     *gorm.DB
	logger zerolog.Logger
}

// New migrates the schema and returns the history service.
func New(database *gorm.DB, logger zerolog.Logger) (*Service, error) {
	if err := database.AutoMigrate(&Session{}, &SlotResult{}, &Decision{}); err != nil {
		return nil, err
	}
	return &Service{
		db:     database,
		logger: logger.With().Str("component", "history").Logger(),
	}, nil
}

// RecordPhase stores one completed phase.
func (s *Service) RecordPhase(ctx context.Context, rec state.PhaseRecord) error {
	session := Session{
		SlotName: rec.SlotName,
		Date:     rec.Date,
		Kind:     rec.Kind,
		Minutes:  rec.Minutes,
		EndedAt:  rec.At,
	}
	return s.db.WithContext(ctx).Create(&session).Error
}

// RecordSlot stores one finalized slot.
func (s *Service) RecordSlot(ctx context.Context, slot timetable.Slot) error {
	result := SlotResult{
		SlotName:      slot.SlotName,
		Date:          slot.Date,
		Status:        slot.Status,
		Pomodoros:     slot.PomodorosCompleted,
		LoggedMinutes: slot.LoggedMinutes,
		Comments:      slot.Comments,
	}
	return s.db.WithContext(ctx).Create(&result).Error
}

// RecordDecision stores one classification outcome.
func (s *Service) RecordDecision(ctx context.Context, req classify.Request, dec classify.Decision, source string) error {
	decision := Decision{
		Domain:      req.Domain,
		Title:       req.Title,
		Action:      dec.Action,
		PetBehavior: dec.PetBehavior,
		Message:     dec.Message,
		Source:      source,
	}
	return s.db.WithContext(ctx).Create(&decision).Error
}

// SessionsByDate lists completed phases for an ISO date.
func (s *Service) SessionsByDate(ctx context.Context, date string) ([]Session, error) {
	var sessions []Session
	err := s.db.WithContext(ctx).
		Where("date = ?", date).
		Order("ended_at asc").
		Find(&sessions).Error
	return sessions, err
}

// RecentDecisions lists the newest classification outcomes.
func (s *Service) RecentDecisions(ctx context.Context, limit int) ([]Decision, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	var decisions []Decision
	err := s.db.WithContext(ctx).
		Order("created_at desc").
		Limit(limit).
		Find(&decisions).Error
	return decisions, err
}
