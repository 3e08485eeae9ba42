/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/friendsincode/focuspet/internal/events"
	"github.com/friendsincode/focuspet/internal/telemetry"
)

// Request is one page observation from the browser extension.
type Request struct {
	Domain  string `json:"domain"`
	Title   string `json:"title"`
	Snippet string `json:"snippet,omitempty"`
}

// Decision is the action contract consumed by the extension and the pet.
type Decision struct {
	Action      string `json:"action"`       // allow | warn | block
	PetBehavior string `json:"pet_behavior"` // encourage | alert | relax
	Message     string `json:"message"`
}

// Decision sources, for metrics and history.
const (
	SourceRule     = "rule"
	SourceModel    = "model"
	SourceFallback = "fallback"
)

// Fixed fallbacks. Malformed model output degrades to a warn (the
// model was reachable but broke contract); a transport failure fails
// open to allow so the extension always gets a decision.
var (
	malformedFallback = Decision{Action: "warn", PetBehavior: "alert", Message: "AI output malformed—defaulting to warn."}
	upstreamFallback  = Decision{Action: "allow", PetBehavior: "relax", Message: "AI unavailable. Defaulting to allow."}
)

// DecisionSink receives classification outcomes for durable history.
type DecisionSink interface {
	RecordDecision(ctx context.Context, req Request, dec Decision, source string) error
}

// Service is the stateless classification decision procedure.
type Service struct {
	rules  Rules
	client ModelClient
	bus    *events.Bus
	sink   DecisionSink
	logger zerolog.Logger
}

// New constructs the classification service.
func New(rules Rules, client ModelClient, bus *events.Bus, logger zerolog.Logger) *Service {
	return &Service{
		rules:  rules,
		client: client,
		bus:    bus,
		logger: logger.With().Str("component", "classify").Logger(),
	}
}

// SetDecisionSink sets the durable decision history sink.
func (s *Service) SetDecisionSink(sink DecisionSink) {
	s.sink = sink
}

// Decide runs the decision procedure: rule table, then model call,
// then contract enforcement. It never returns an error — every failure
// mode resolves to a fixed safe decision.
func (s *Service) Decide(ctx context.Context, req Request) Decision {
	req.Domain = strings.ToLower(strings.TrimSpace(req.Domain))
	req.Title = strings.ToLower(strings.TrimSpace(req.Title))

	dec, source := s.decide(ctx, req)

	telemetry.ClassificationsTotal.WithLabelValues(dec.Action, source).Inc()
	if s.bus != nil {
		s.bus.Publish(events.EventClassification, events.Payload{
			"domain":   req.Domain,
			"action":   dec.Action,
			"behavior": dec.PetBehavior,
		})
	}
	if s.sink != nil {
		if err := s.sink.RecordDecision(ctx, req, dec, source); err != nil {
			s.logger.Warn().Err(err).Msg("decision history write failed")
		}
	}
	return dec
}

func (s *Service) decide(ctx context.Context, req Request) (Decision, string) {
	if s.rules.MatchDomain(req.Domain) {
		s.logger.Debug().Str("domain", req.Domain).Msg("domain blocklisted")
		return Decision{
			Action:      "block",
			PetBehavior: "alert",
			Message:     fmt.Sprintf("Blocked distracting site: %s", req.Domain),
		}, SourceRule
	}

	prompt := buildPrompt(req.Domain, req.Title, CleanSnippet(req.Snippet))

	raw, err := s.client.Complete(ctx, prompt)
	if err != nil {
		s.logger.Warn().Err(err).Str("domain", req.Domain).Msg("model call failed, failing open")
		telemetry.ClassificationFallbacksTotal.WithLabelValues("upstream").Inc()
		return upstreamFallback, SourceFallback
	}

	dec, ok := parseDecision(raw)
	if !ok {
		s.logger.Warn().Str("domain", req.Domain).Str("raw", truncate(raw, 200)).Msg("model output malformed")
		telemetry.ClassificationFallbacksTotal.WithLabelValues("malformed").Inc()
		return malformedFallback, SourceFallback
	}
	return dec, SourceModel
}

// parseDecision enforces the output contract: valid JSON with exactly
// the expected enum values. Anything else counts as malformed.
func parseDecision(raw string) (Decision, bool) {
	raw = strings.TrimSpace(raw)
	raw = strings.ReplaceAll(raw, "<s>", "")
	raw = strings.ReplaceAll(raw, "</s>", "")
	raw = strings.TrimSpace(raw)

	var dec Decision
	if err := json.Unmarshal([]byte(raw), &dec); err != nil {
		return Decision{}, false
	}

	switch dec.Action {
	case "allow", "warn", "block":
	default:
		return Decision{}, false
	}
	switch dec.PetBehavior {
	case "encourage", "alert", "relax":
	default:
		return Decision{}, false
	}
	return dec, true
}
