/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package config

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Environment != "development" {
		t.Errorf("Environment = %q", cfg.Environment)
	}
	if cfg.HTTPBind != "127.0.0.1" || cfg.HTTPPort != 5000 {
		t.Errorf("HTTP bind = %s:%d", cfg.HTTPBind, cfg.HTTPPort)
	}
	if cfg.WorkMinutes != 25 || cfg.BreakMinutes != 5 {
		t.Errorf("cycle = %d/%d", cfg.WorkMinutes, cfg.BreakMinutes)
	}
	if cfg.PollInterval != 15*time.Second || cfg.Cooldown != 5*time.Second || cfg.ErrorBackoff != 10*time.Second {
		t.Errorf("intervals = %v/%v/%v", cfg.PollInterval, cfg.Cooldown, cfg.ErrorBackoff)
	}
	if cfg.TimetablePath != filepath.Join(".", "focus_timetable.csv") {
		t.Errorf("TimetablePath = %q", cfg.TimetablePath)
	}
	if cfg.OpenRouterModel != "google/gemma-2-9b-it" {
		t.Errorf("OpenRouterModel = %q", cfg.OpenRouterModel)
	}
	if cfg.TracingEnabled {
		t.Error("tracing should default off")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("FOCUSPET_STATE_DIR", "/var/lib/focuspet")
	t.Setenv("FOCUSPET_WORK_MINUTES", "50")
	t.Setenv("FOCUSPET_BREAK_MINUTES", "10")
	t.Setenv("FOCUSPET_POLL_INTERVAL", "30s")
	t.Setenv("FOCUSPET_TRACING_ENABLED", "true")
	t.Setenv("FOCUSPET_TRACING_SAMPLE_RATE", "0.25")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.WorkMinutes != 50 || cfg.BreakMinutes != 10 {
		t.Errorf("cycle = %d/%d", cfg.WorkMinutes, cfg.BreakMinutes)
	}
	if cfg.PollInterval != 30*time.Second {
		t.Errorf("PollInterval = %v", cfg.PollInterval)
	}
	if cfg.TimetablePath != "/var/lib/focuspet/focus_timetable.csv" {
		t.Errorf("TimetablePath = %q", cfg.TimetablePath)
	}
	if !cfg.TracingEnabled || cfg.TracingSampleRate != 0.25 {
		t.Errorf("tracing = %v/%v", cfg.TracingEnabled, cfg.TracingSampleRate)
	}
}

func TestLoadShortPrefixFallback(t *testing.T) {
	t.Setenv("FP_WORK_MINUTES", "45")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.WorkMinutes != 45 {
		t.Errorf("WorkMinutes = %d, want 45", cfg.WorkMinutes)
	}
}

func TestLoadLongPrefixWins(t *testing.T) {
	t.Setenv("FOCUSPET_WORK_MINUTES", "50")
	t.Setenv("FP_WORK_MINUTES", "45")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.WorkMinutes != 50 {
		t.Errorf("WorkMinutes = %d, want 50", cfg.WorkMinutes)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "zero work minutes", key: "FOCUSPET_WORK_MINUTES", value: "0"},
		{name: "negative work minutes", key: "FOCUSPET_WORK_MINUTES", value: "-5"},
		{name: "negative break minutes", key: "FOCUSPET_BREAK_MINUTES", value: "-1"},
		{name: "zero poll interval", key: "FOCUSPET_POLL_INTERVAL", value: "0s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestLoadInvalidIntFallsBackToDefault(t *testing.T) {
	t.Setenv("FOCUSPET_WORK_MINUTES", "banana")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.WorkMinutes != 25 {
		t.Errorf("WorkMinutes = %d, want default 25", cfg.WorkMinutes)
	}
}

func TestLegacyEnvWarnings(t *testing.T) {
	t.Setenv("TIMETABLE", "legacy.csv")
	t.Setenv("WORK_MIN", "25")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.LegacyEnvWarnings) != 2 {
		t.Fatalf("warnings = %v, want 2 entries", cfg.LegacyEnvWarnings)
	}
	joined := strings.Join(cfg.LegacyEnvWarnings, "\n")
	if !strings.Contains(joined, "FOCUSPET_TIMETABLE_PATH") || !strings.Contains(joined, "FOCUSPET_WORK_MINUTES") {
		t.Errorf("warnings missing recommendations: %v", cfg.LegacyEnvWarnings)
	}
}
