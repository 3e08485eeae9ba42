/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/friendsincode/focuspet/internal/api"
	"github.com/friendsincode/focuspet/internal/classify"
	"github.com/friendsincode/focuspet/internal/config"
	"github.com/friendsincode/focuspet/internal/db"
	"github.com/friendsincode/focuspet/internal/events"
	"github.com/friendsincode/focuspet/internal/history"
	"github.com/friendsincode/focuspet/internal/pet"
	"github.com/friendsincode/focuspet/internal/relay"
	"github.com/friendsincode/focuspet/internal/telemetry"
)

// petTickInterval paces the pet animation state machine.
const petTickInterval = 500 * time.Millisecond

// Server bundles the HTTP services: classification, command relay, and
// the read-only status API for the timer and pet front-ends.
type Server struct {
	cfg           *config.Config
	logger        zerolog.Logger
	router        chi.Router
	httpServer    *http.Server
	metricsServer *http.Server
	closers       []func() error

	database   *gorm.DB
	historySvc *history.Service
	classifier *classify.Service
	relayStore *relay.Store
	apiHandler *api.API
	bus        *events.Bus

	petMu      sync.Mutex
	petMachine *pet.Machine

	bgCancel context.CancelFunc
	bgWG     sync.WaitGroup
}

// New constructs the server and wires dependencies.
func New(cfg *config.Config, logger zerolog.Logger) (*Server, error) {
	for _, warn := range cfg.LegacyEnvWarnings {
		logger.Warn().Msg(warn)
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(telemetry.TracingMiddleware("focuspet-api"))
	router.Use(telemetry.MetricsMiddleware)
	router.Use(middleware.Timeout(60 * time.Second))

	srv := &Server{
		cfg:    cfg,
		logger: logger,
		router: router,
		bus:    events.NewBus(),
	}

	if err := srv.initDependencies(); err != nil {
		return nil, err
	}

	srv.configureRoutes()
	srv.startBackgroundWorkers()

	srv.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTPBind, cfg.HTTPPort),
		Handler:           srv.router,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", telemetry.Handler())
	srv.metricsServer = &http.Server{
		Addr:              cfg.MetricsBind,
		Handler:           metricsMux,
		ReadHeaderTimeout: 15 * time.Second,
	}

	return srv, nil
}

func (s *Server) initDependencies() error {
	rules, err := classify.LoadRules(s.cfg.RulesPath)
	if err != nil {
		return fmt.Errorf("load classification rules: %w", err)
	}

	modelClient := classify.NewOpenRouterClient(classify.OpenRouterConfig{
		APIKey:  s.cfg.OpenRouterAPIKey,
		BaseURL: s.cfg.OpenRouterBaseURL,
		Model:   s.cfg.OpenRouterModel,
		Timeout: s.cfg.OpenRouterTimeout,
	})
	if s.cfg.OpenRouterAPIKey == "" {
		s.logger.Warn().Msg("OpenRouter API key not set; classifications beyond the rule table will fail open to allow")
	}

	s.classifier = classify.New(rules, modelClient, s.bus, s.logger)
	s.relayStore = relay.NewStore(s.bus)
	s.petMachine = pet.NewMachine(0, nil)

	// History is best effort: a broken database disables it but never
	// blocks classification or relay traffic.
	if s.cfg.HistoryDSN != "" {
		database, err := db.Connect(s.cfg.HistoryDSN)
		if err != nil {
			s.logger.Warn().Err(err).Msg("history database unavailable, continuing without history")
		} else {
			historySvc, err := history.New(database, s.logger)
			if err != nil {
				s.logger.Warn().Err(err).Msg("history migration failed, continuing without history")
				_ = db.Close(database)
			} else {
				s.database = database
				s.historySvc = historySvc
				s.classifier.SetDecisionSink(historySvc)
				s.DeferClose(func() error { return db.Close(database) })
			}
		}
	}

	s.apiHandler = api.New(
		s.classifier,
		s.relayStore,
		s.historySvc,
		s.petSnapshot,
		s.cfg.TimetablePath,
		s.cfg.MessagePath,
		s.logger,
	)
	return nil
}

func (s *Server) configureRoutes() {
	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	s.apiHandler.Routes(s.router)
}

// startBackgroundWorkers runs the pet animation loop: advance one frame
// per tick and absorb classification verdicts into the pet's mood.
func (s *Server) startBackgroundWorkers() {
	ctx, cancel := context.WithCancel(context.Background())
	s.bgCancel = cancel

	classifications := s.bus.Subscribe(events.EventClassification)

	s.bgWG.Add(1)
	go func() {
		defer s.bgWG.Done()
		defer s.bus.Unsubscribe(events.EventClassification, classifications)

		ticker := time.NewTicker(petTickInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case payload := <-classifications:
				if behavior, ok := payload["behavior"].(string); ok {
					s.petMu.Lock()
					s.petMachine.SetBehavior(pet.Behavior(behavior))
					s.petMu.Unlock()
				}
			case <-ticker.C:
				s.petMu.Lock()
				s.petMachine.Advance()
				s.petMu.Unlock()
			}
		}
	}()
}

func (s *Server) petSnapshot() pet.Snapshot {
	s.petMu.Lock()
	defer s.petMu.Unlock()
	return s.petMachine.Snapshot()
}

// HTTPServer returns the main API server.
func (s *Server) HTTPServer() *http.Server {
	return s.httpServer
}

// MetricsServer returns the Prometheus metrics server.
func (s *Server) MetricsServer() *http.Server {
	return s.metricsServer
}

// Router exposes the chi router, mainly for tests.
func (s *Server) Router() chi.Router {
	return s.router
}

// DeferClose registers a cleanup function run on Close.
func (s *Server) DeferClose(fn func() error) {
	s.closers = append(s.closers, fn)
}

// Close stops background workers and runs registered cleanups.
func (s *Server) Close() error {
	if s.bgCancel != nil {
		s.bgCancel()
		s.bgWG.Wait()
		s.bgCancel = nil
	}

	var firstErr error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
