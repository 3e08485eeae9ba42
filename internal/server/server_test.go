/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package server

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/friendsincode/focuspet/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		Environment:   "test",
		HTTPBind:      "127.0.0.1",
		HTTPPort:      0,
		MetricsBind:   "127.0.0.1:0",
		StateDir:      dir,
		TimetablePath: filepath.Join(dir, "focus_timetable.csv"),
		MessagePath:   filepath.Join(dir, "focus_ui_message.txt"),
		HistoryDSN:    "", // history disabled
		WorkMinutes:   25,
		BreakMinutes:  5,
		PollInterval:  15 * time.Second,
		Cooldown:      5 * time.Second,
		ErrorBackoff:  10 * time.Second,
	}
}

func TestNewServesHealthz(t *testing.T) {
	srv, err := New(testConfig(t), zerolog.Nop())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer srv.Close()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestCheckRouteBlocksRuleHit(t *testing.T) {
	srv, err := New(testConfig(t), zerolog.Nop())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer srv.Close()

	// Rule-table hits never reach OpenRouter, so no API key is needed.
	req := httptest.NewRequest(http.MethodPost, "/check", strings.NewReader(`{"domain":"reddit.com","title":"front page"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"block"`) {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestPetRouteServesSnapshot(t *testing.T) {
	srv, err := New(testConfig(t), zerolog.Nop())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer srv.Close()

	req := httptest.NewRequest(http.MethodGet, "/pet", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"state"`) {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	srv, err := New(testConfig(t), zerolog.Nop())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := srv.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := srv.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}

func TestNewFailsOnBadRulesPath(t *testing.T) {
	cfg := testConfig(t)
	cfg.RulesPath = filepath.Join(cfg.StateDir, "absent-rules.yaml")
	if _, err := New(cfg, zerolog.Nop()); err == nil {
		t.Fatal("expected error for configured-but-missing rules file")
	}
}
