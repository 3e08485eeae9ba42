/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// API metrics
	APIRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "focuspet_api_requests_total",
		Help: "Total HTTP requests handled, by method, endpoint and status.",
	}, []string{"method", "endpoint", "status"})

	APIRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "focuspet_api_request_duration_seconds",
		Help:    "HTTP request duration in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "endpoint", "status"})

	APIActiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "focuspet_api_active_connections",
		Help: "In-flight HTTP requests.",
	})

	// Scheduler metrics
	SchedulerTicksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "focuspet_scheduler_ticks_total",
		Help: "Scheduler loop iterations.",
	})

	SchedulerErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "focuspet_scheduler_errors_total",
		Help: "Transient scheduler errors, by stage.",
	}, []string{"stage"})

	PhasesCompletedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "focuspet_phases_completed_total",
		Help: "Completed pomodoro phases, by kind (work or break).",
	}, []string{"kind"})

	SlotsCompletedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "focuspet_slots_completed_total",
		Help: "Finalized timetable slots, by status.",
	}, []string{"status"})

	// Classification metrics
	ClassificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "focuspet_classifications_total",
		Help: "Classification decisions, by action and source (rule, model, fallback).",
	}, []string{"action", "source"})

	ClassificationFallbacksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "focuspet_classification_fallbacks_total",
		Help: "Classifier fallbacks, by reason (malformed, upstream).",
	}, []string{"reason"})
)

// Handler exposes the Prometheus metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
