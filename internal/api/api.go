/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/friendsincode/focuspet/internal/classify"
	"github.com/friendsincode/focuspet/internal/history"
	"github.com/friendsincode/focuspet/internal/mailbox"
	"github.com/friendsincode/focuspet/internal/pet"
	"github.com/friendsincode/focuspet/internal/relay"
	"github.com/friendsincode/focuspet/internal/timetable"
)

// API exposes HTTP handlers.
type API struct {
	classifier *classify.Service
	relay      *relay.Store
	historySvc *history.Service
	petState   func() pet.Snapshot

	timetablePath string
	messagePath   string

	logger zerolog.Logger
	now    func() time.Time
}

// New creates the API handler set. historySvc and petState may be nil
// when those features are disabled.
func New(classifier *classify.Service, relayStore *relay.Store, historySvc *history.Service, petState func() pet.Snapshot, timetablePath, messagePath string, logger zerolog.Logger) *API {
	return &API{
		classifier:    classifier,
		relay:         relayStore,
		historySvc:    historySvc,
		petState:      petState,
		timetablePath: timetablePath,
		messagePath:   messagePath,
		logger:        logger.With().Str("component", "api").Logger(),
		now:           time.Now,
	}
}

// Routes mounts all handlers on the router.
func (a *API) Routes(r chi.Router) {
	r.Post("/check", a.handleCheck)

	r.Post("/set_command", a.handleSetCommand)
	r.Get("/command", a.handleGetCommand)
	r.Post("/ack", a.handleAck)

	r.Get("/status", a.handleStatus)
	r.Get("/pet", a.handlePet)

	r.Get("/history/sessions", a.handleSessions)
	r.Get("/history/decisions", a.handleDecisions)
}

// handleCheck classifies one page observation. It always answers 200
// with a decision — upstream failures are resolved inside the
// classifier, never surfaced as a 5xx.
func (a *API) handleCheck(w http.ResponseWriter, r *http.Request) {
	var req classify.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}

	decision := a.classifier.Decide(r.Context(), req)
	writeJSON(w, http.StatusOK, decision)
}

type setCommandRequest struct {
	Action  string         `json:"action"`
	Payload map[string]any `json:"payload"`
}

func (a *API) handleSetCommand(w http.ResponseWriter, r *http.Request) {
	var req setCommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "invalid JSON body"})
		return
	}
	if req.Action == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "missing action"})
		return
	}

	pending := a.relay.Set(req.Action, req.Payload)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "pending": pending})
}

func (a *API) handleGetCommand(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "pending": a.relay.Get()})
}

type ackRequest struct {
	ID string `json:"id"`
}

func (a *API) handleAck(w http.ResponseWriter, r *http.Request) {
	var req ackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "invalid JSON body"})
		return
	}
	if req.ID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "missing id"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": a.relay.Ack(req.ID)})
}

type statusSlot struct {
	SlotName      string `json:"slot_name"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
	Status        string `json:"status"`
	Pomodoros     int    `json:"pomodoros"`
	LoggedMinutes int    `json:"logged_minutes"`
}

type statusActive struct {
	SlotName         string  `json:"slot_name"`
	RemainingSeconds float64 `json:"remaining_seconds"`
}

type statusResponse struct {
	Now     string        `json:"now"`
	Date    string        `json:"date"`
	Slots   []statusSlot  `json:"slots"`
	Active  *statusActive `json:"active"`
	Message string        `json:"message"`
}

// handleStatus is the read-only observer view the timer front-end
// polls: today's slots, the active slot, and the last mailbox message.
// The timetable is re-read on every request; a torn or missing file
// yields an empty status rather than an error, and the caller retries
// on its next poll.
func (a *API) handleStatus(w http.ResponseWriter, r *http.Request) {
	now := a.now()
	resp := statusResponse{
		Now:   now.Format("15:04:05"),
		Date:  now.Format("2006-01-02"),
		Slots: []statusSlot{},
	}

	if msg, err := mailbox.Read(a.messagePath); err == nil {
		resp.Message = msg
	}

	tt, err := timetable.Load(a.timetablePath)
	if err != nil {
		a.logger.Debug().Err(err).Msg("timetable unreadable, returning empty status")
		writeJSON(w, http.StatusOK, resp)
		return
	}

	for _, s := range tt.TodaysSlots(now) {
		resp.Slots = append(resp.Slots, statusSlot{
			SlotName:      s.SlotName,
			StartTime:     s.StartTime,
			EndTime:       s.EndTime,
			Status:        s.Status,
			Pomodoros:     s.PomodorosCompleted,
			LoggedMinutes: s.LoggedMinutes,
		})
	}

	if idx, remaining, ok := tt.FindActive(now); ok {
		resp.Active = &statusActive{
			SlotName:         tt.Slots[idx].SlotName,
			RemainingSeconds: remaining * 60,
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (a *API) handlePet(w http.ResponseWriter, r *http.Request) {
	if a.petState == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "pet state not available"})
		return
	}
	writeJSON(w, http.StatusOK, a.petState())
}

func (a *API) handleSessions(w http.ResponseWriter, r *http.Request) {
	if a.historySvc == nil {
		writeJSON(w, http.StatusOK, []history.Session{})
		return
	}
	date := r.URL.Query().Get("date")
	if date == "" {
		date = a.now().Format("2006-01-02")
	}
	sessions, err := a.historySvc.SessionsByDate(r.Context(), date)
	if err != nil {
		a.logger.Error().Err(err).Msg("session history query failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "history query failed"})
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (a *API) handleDecisions(w http.ResponseWriter, r *http.Request) {
	if a.historySvc == nil {
		writeJSON(w, http.StatusOK, []history.Decision{})
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	decisions, err := a.historySvc.RecentDecisions(r.Context(), limit)
	if err != nil {
		a.logger.Error().Err(err).Msg("decision history query failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "history query failed"})
		return
	}
	writeJSON(w, http.StatusOK, decisions)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
