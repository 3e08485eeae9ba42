/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config covers process level configuration read from environment variables.
type Config struct {
	Environment string
	HTTPBind    string
	HTTPPort    int
	MetricsBind string

	// Shared state directory convention: the scheduler and the read-only
	// front-ends (timer, pet) coordinate exclusively through files here.
	StateDir      string
	TimetablePath string
	MessagePath   string
	HistoryDSN    string // sqlite path for session/decision history; empty disables
	RulesPath     string // optional classification rules override (yaml)

	// Pomodoro cycle lengths and loop intervals.
	WorkMinutes  int
	BreakMinutes int
	PollInterval time.Duration
	Cooldown     time.Duration
	ErrorBackoff time.Duration

	// OpenRouter (hosted text-generation model) configuration
	OpenRouterAPIKey  string
	OpenRouterBaseURL string
	OpenRouterModel   string
	OpenRouterTimeout time.Duration

	// Relay client configuration (open-group command)
	RelayURL string

	// Tracing configuration
	TracingEnabled    bool
	OTLPEndpoint      string
	TracingSampleRate float64

	LegacyEnvWarnings []string
}

// Load reads environment variables, applies defaults, and validates the result.
func Load() (*Config, error) {
	stateDir := getEnvAny([]string{"FOCUSPET_STATE_DIR", "FP_STATE_DIR"}, ".")

	cfg := &Config{
		Environment: getEnvAny([]string{"FOCUSPET_ENV", "FP_ENV"}, "development"),
		HTTPBind:    getEnvAny([]string{"FOCUSPET_HTTP_BIND", "FP_HTTP_BIND"}, "127.0.0.1"),
		HTTPPort:    getEnvIntAny([]string{"FOCUSPET_HTTP_PORT", "FP_HTTP_PORT"}, 5000),
		MetricsBind: getEnvAny([]string{"FOCUSPET_METRICS_BIND", "FP_METRICS_BIND"}, "127.0.0.1:9000"),

		StateDir:      stateDir,
		TimetablePath: getEnvAny([]string{"FOCUSPET_TIMETABLE_PATH", "FP_TIMETABLE_PATH"}, filepath.Join(stateDir, "focus_timetable.csv")),
		MessagePath:   getEnvAny([]string{"FOCUSPET_MESSAGE_PATH", "FP_MESSAGE_PATH"}, filepath.Join(stateDir, "focus_ui_message.txt")),
		HistoryDSN:    getEnvAny([]string{"FOCUSPET_HISTORY_DSN", "FP_HISTORY_DSN"}, filepath.Join(stateDir, "focus_history.db")),
		RulesPath:     getEnvAny([]string{"FOCUSPET_RULES_PATH", "FP_RULES_PATH"}, ""),

		WorkMinutes:  getEnvIntAny([]string{"FOCUSPET_WORK_MINUTES", "FP_WORK_MINUTES"}, 25),
		BreakMinutes: getEnvIntAny([]string{"FOCUSPET_BREAK_MINUTES", "FP_BREAK_MINUTES"}, 5),
		PollInterval: getEnvDurationAny([]string{"FOCUSPET_POLL_INTERVAL", "FP_POLL_INTERVAL"}, 15*time.Second),
		Cooldown:     getEnvDurationAny([]string{"FOCUSPET_COOLDOWN", "FP_COOLDOWN"}, 5*time.Second),
		ErrorBackoff: getEnvDurationAny([]string{"FOCUSPET_ERROR_BACKOFF", "FP_ERROR_BACKOFF"}, 10*time.Second),

		OpenRouterAPIKey:  getEnvAny([]string{"FOCUSPET_OPENROUTER_API_KEY", "OPENROUTER_API_KEY"}, ""),
		OpenRouterBaseURL: getEnvAny([]string{"FOCUSPET_OPENROUTER_BASE_URL", "FP_OPENROUTER_BASE_URL"}, "https://openrouter.ai/api/v1"),
		OpenRouterModel:   getEnvAny([]string{"FOCUSPET_OPENROUTER_MODEL", "FP_OPENROUTER_MODEL"}, "google/gemma-2-9b-it"),
		OpenRouterTimeout: getEnvDurationAny([]string{"FOCUSPET_OPENROUTER_TIMEOUT", "FP_OPENROUTER_TIMEOUT"}, 20*time.Second),

		RelayURL: getEnvAny([]string{"FOCUSPET_RELAY_URL", "FP_RELAY_URL"}, "http://127.0.0.1:5000"),

		TracingEnabled:    getEnvBoolAny([]string{"FOCUSPET_TRACING_ENABLED", "FP_TRACING_ENABLED"}, false),
		OTLPEndpoint:      getEnvAny([]string{"FOCUSPET_OTLP_ENDPOINT", "FP_OTLP_ENDPOINT"}, "localhost:4317"),
		TracingSampleRate: getEnvFloatAny([]string{"FOCUSPET_TRACING_SAMPLE_RATE", "FP_TRACING_SAMPLE_RATE"}, 1.0),
	}

	if cfg.WorkMinutes <= 0 {
		return nil, fmt.Errorf("FOCUSPET_WORK_MINUTES must be positive, got %d", cfg.WorkMinutes)
	}
	if cfg.BreakMinutes < 0 {
		return nil, fmt.Errorf("FOCUSPET_BREAK_MINUTES must not be negative, got %d", cfg.BreakMinutes)
	}
	if cfg.PollInterval <= 0 || cfg.Cooldown < 0 || cfg.ErrorBackoff <= 0 {
		return nil, fmt.Errorf("loop intervals must be positive")
	}

	cfg.LegacyEnvWarnings = detectLegacyEnvWarnings()

	return cfg, nil
}

func detectLegacyEnvWarnings() []string {
	legacy := map[string]string{
		"TIMETABLE":           "use FOCUSPET_TIMETABLE_PATH (or FP_TIMETABLE_PATH)",
		"WORK_MIN":            "use FOCUSPET_WORK_MINUTES (or FP_WORK_MINUTES)",
		"BREAK_MIN":           "use FOCUSPET_BREAK_MINUTES (or FP_BREAK_MINUTES)",
		"CHECK_INTERVAL":      "use FOCUSPET_POLL_INTERVAL (or FP_POLL_INTERVAL)",
		"TRACING_ENABLED":     "use FOCUSPET_TRACING_ENABLED (or FP_TRACING_ENABLED)",
		"OTLP_ENDPOINT":       "use FOCUSPET_OTLP_ENDPOINT (or FP_OTLP_ENDPOINT)",
		"TRACING_SAMPLE_RATE": "use FOCUSPET_TRACING_SAMPLE_RATE (or FP_TRACING_SAMPLE_RATE)",
	}

	warnings := make([]string, 0, len(legacy))
	for key, recommendation := range legacy {
		if os.Getenv(key) != "" {
			warnings = append(warnings, fmt.Sprintf("legacy env key %s is set; %s", key, recommendation))
		}
	}
	return warnings
}

// getEnvAny returns the first non-empty environment variable value from keys, or def if none set.
func getEnvAny(keys []string, def string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return def
}

// getEnvIntAny returns the first set integer environment variable value from keys, or def.
func getEnvIntAny(keys []string, def int) int {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			if parsed, err := strconv.Atoi(v); err == nil {
				return parsed
			}
		}
	}
	return def
}

// getEnvBoolAny returns the first set boolean environment variable value from keys, or def.
func getEnvBoolAny(keys []string, def bool) bool {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			v = strings.ToLower(strings.TrimSpace(v))
			if v == "true" || v == "1" || v == "yes" {
				return true
			}
			if v == "false" || v == "0" || v == "no" {
				return false
			}
		}
	}
	return def
}

// getEnvFloatAny returns the first set float environment variable value from keys, or def.
func getEnvFloatAny(keys []string, def float64) float64 {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			if parsed, err := strconv.ParseFloat(v, 64); err == nil {
				return parsed
			}
		}
	}
	return def
}

// getEnvDurationAny returns the first parseable duration environment variable value from keys, or def.
func getEnvDurationAny(keys []string, def time.Duration) time.Duration {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			if parsed, err := time.ParseDuration(v); err == nil {
				return parsed
			}
		}
	}
	return def
}
