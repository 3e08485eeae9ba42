/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/friendsincode/focuspet/internal/classify"
	"github.com/friendsincode/focuspet/internal/pet"
	"github.com/friendsincode/focuspet/internal/relay"
)

type fakeModel struct {
	raw string
	err error
}

func (m *fakeModel) Complete(context.Context, string) (string, error) {
	return m.raw, m.err
}

func newTestRouter(t *testing.T, model classify.ModelClient) (*chi.Mux, *relay.Store, string, string) {
	t.Helper()
	dir := t.TempDir()
	timetablePath := filepath.Join(dir, "tt.csv")
	messagePath := filepath.Join(dir, "msg.txt")

	classifier := classify.New(classify.DefaultRules(), model, nil, zerolog.Nop())
	relayStore := relay.NewStore(nil)

	a := New(classifier, relayStore, nil, nil, timetablePath, messagePath, zerolog.Nop())
	a.now = func() time.Time {
		return time.Date(2025, 11, 3, 15, 30, 0, 0, time.Local)
	}

	r := chi.NewRouter()
	a.Routes(r)
	return r, relayStore, timetablePath, messagePath
}

func doJSON(t *testing.T, r http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var parsed map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &parsed); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return rec, parsed
}

func TestCheckBlocklistedDomain(t *testing.T) {
	r, _, _, _ := newTestRouter(t, &fakeModel{})

	rec, body := doJSON(t, r, http.MethodPost, "/check", `{"domain":"netflix.com","title":"Home"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if body["action"] != "block" || body["pet_behavior"] != "alert" {
		t.Errorf("unexpected decision: %+v", body)
	}
}

func TestCheckModelFailureStillAnswers200(t *testing.T) {
	r, _, _, _ := newTestRouter(t, &fakeModel{err: os.ErrDeadlineExceeded})

	rec, body := doJSON(t, r, http.MethodPost, "/check", `{"domain":"go.dev","title":"docs"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, upstream failures must not surface", rec.Code)
	}
	if body["action"] != "allow" {
		t.Errorf("expected fail-open allow, got %+v", body)
	}
}

func TestCheckRejectsBadJSON(t *testing.T) {
	r, _, _, _ := newTestRouter(t, &fakeModel{})
	rec, _ := doJSON(t, r, http.MethodPost, "/check", `{not json`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestRelayRoundTrip(t *testing.T) {
	r, _, _, _ := newTestRouter(t, &fakeModel{})

	rec, body := doJSON(t, r, http.MethodPost, "/set_command", `{"action":"open_group","payload":{"name":"DSA"}}`)
	if rec.Code != http.StatusOK || body["ok"] != true {
		t.Fatalf("set_command failed: %d %+v", rec.Code, body)
	}
	pending := body["pending"].(map[string]any)
	id := pending["id"].(string)
	if id == "" {
		t.Fatal("expected a command id")
	}

	_, body = doJSON(t, r, http.MethodGet, "/command", "")
	got := body["pending"].(map[string]any)
	if got["id"] != id || got["action"] != "open_group" {
		t.Errorf("unexpected pending command: %+v", got)
	}

	_, body = doJSON(t, r, http.MethodPost, "/ack", `{"id":"`+id+`"}`)
	if body["ok"] != true {
		t.Errorf("ack response: %+v", body)
	}

	_, body = doJSON(t, r, http.MethodGet, "/command", "")
	if body["pending"] != nil {
		t.Errorf("command should be cleared: %+v", body)
	}
}

func TestSetCommandRequiresAction(t *testing.T) {
	r, _, _, _ := newTestRouter(t, &fakeModel{})
	rec, body := doJSON(t, r, http.MethodPost, "/set_command", `{"payload":{}}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if body["error"] != "missing action" {
		t.Errorf("body = %+v", body)
	}
}

func TestAckRequiresID(t *testing.T) {
	r, _, _, _ := newTestRouter(t, &fakeModel{})
	rec, body := doJSON(t, r, http.MethodPost, "/ack", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if body["error"] != "missing id" {
		t.Errorf("body = %+v", body)
	}
}

func TestAckStaleIDReportsFalse(t *testing.T) {
	r, relayStore, _, _ := newTestRouter(t, &fakeModel{})
	relayStore.Set("open_group", nil)

	_, body := doJSON(t, r, http.MethodPost, "/ack", `{"id":"stale"}`)
	if body["ok"] != false {
		t.Errorf("stale ack should report ok=false: %+v", body)
	}
}

func TestStatusWithTimetable(t *testing.T) {
	r, _, timetablePath, messagePath := newTestRouter(t, &fakeModel{})

	csv := "Date,DayName,SlotName,StartTime,EndTime,Status,PomodorosCompleted,LoggedMinutes,Comments,LastUpdated\n" +
		"2025-11-03,Mon,DSA,15:00,17:00,,2,50,,\n" +
		"2025-11-03,Mon,Course Module,21:30,22:30,,0,0,,\n" +
		"2025-11-04,Tue,DSA,15:00,17:00,,0,0,,\n"
	if err := os.WriteFile(timetablePath, []byte(csv), 0o644); err != nil {
		t.Fatalf("write timetable: %v", err)
	}
	if err := os.WriteFile(messagePath, []byte("Start WORK: DSA"), 0o644); err != nil {
		t.Fatalf("write message: %v", err)
	}

	rec, body := doJSON(t, r, http.MethodGet, "/status", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if body["date"] != "2025-11-03" {
		t.Errorf("date = %v", body["date"])
	}
	slots := body["slots"].([]any)
	if len(slots) != 2 {
		t.Fatalf("slots = %d, want today's 2", len(slots))
	}
	active := body["active"].(map[string]any)
	if active["slot_name"] != "DSA" {
		t.Errorf("active = %+v", active)
	}
	if active["remaining_seconds"].(float64) != 90*60 {
		t.Errorf("remaining = %v", active["remaining_seconds"])
	}
	if body["message"] != "Start WORK: DSA" {
		t.Errorf("message = %v", body["message"])
	}
}

func TestStatusMissingTimetableIsEmptyNot500(t *testing.T) {
	r, _, _, _ := newTestRouter(t, &fakeModel{})

	rec, body := doJSON(t, r, http.MethodGet, "/status", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, a missing timetable is not an error", rec.Code)
	}
	if len(body["slots"].([]any)) != 0 {
		t.Errorf("slots = %+v, want empty", body["slots"])
	}
	if body["active"] != nil {
		t.Errorf("active = %+v, want null", body["active"])
	}
}

func TestPetEndpoint(t *testing.T) {
	dir := t.TempDir()
	classifier := classify.New(classify.DefaultRules(), &fakeModel{}, nil, zerolog.Nop())
	machine := pet.NewMachine(120, nil)

	a := New(classifier, relay.NewStore(nil), nil, machine.Snapshot, filepath.Join(dir, "tt.csv"), filepath.Join(dir, "msg.txt"), zerolog.Nop())
	r := chi.NewRouter()
	a.Routes(r)

	rec, body := doJSON(t, r, http.MethodGet, "/pet", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if body["state"] != "idle" || body["x"].(float64) != 120 {
		t.Errorf("snapshot = %+v", body)
	}
}

func TestPetEndpointDisabled(t *testing.T) {
	r, _, _, _ := newTestRouter(t, &fakeModel{})
	rec, _ := doJSON(t, r, http.MethodGet, "/pet", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestHistoryEndpointsDisabled(t *testing.T) {
	r, _, _, _ := newTestRouter(t, &fakeModel{})

	for _, path := range []string{"/history/sessions", "/history/decisions"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("%s status = %d", path, rec.Code)
		}
		if strings.TrimSpace(rec.Body.String()) != "[]" {
			t.Errorf("%s body = %q, want empty list", path, rec.Body.String())
		}
	}
}
