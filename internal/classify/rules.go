/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package classify decides whether a browser page is work-relevant or
// distracting: a fixed rule table first, then a hosted text-generation
// model with strict output-contract enforcement and conservative
// fallbacks.
package classify

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Rules is the fast local rule table applied before any model call.
type Rules struct {
	// BlockedDomains are substring-matched against the lowercased
	// request domain; any hit short-circuits to an immediate block.
	BlockedDomains []string `yaml:"blocked_domains"`
}

// DefaultRules returns the built-in blocklist.
func DefaultRules() Rules {
	return Rules{
		BlockedDomains: []string{"netflix", "instagram", "reddit", "hotstar", "spotify"},
	}
}

// LoadRules reads a rules file, or returns the defaults when path is
// empty. A present-but-unreadable file is a configuration error.
func LoadRules(path string) (Rules, error) {
	if path == "" {
		return DefaultRules(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, fmt.Errorf("read rules file: %w", err)
	}
	var rules Rules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return Rules{}, fmt.Errorf("parse rules file: %w", err)
	}
	if len(rules.BlockedDomains) == 0 {
		rules.BlockedDomains = DefaultRules().BlockedDomains
	}
	return rules, nil
}

// MatchDomain reports whether domain hits the blocklist.
func (r Rules) MatchDomain(domain string) bool {
	domain = strings.ToLower(domain)
	for _, blocked := range r.BlockedDomains {
		if blocked != "" && strings.Contains(domain, blocked) {
			return true
		}
	}
	return false
}
