/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package classify

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadRulesEmptyPathUsesDefaults(t *testing.T) {
	rules, err := LoadRules("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !rules.MatchDomain("netflix.com") {
		t.Error("defaults should block netflix")
	}
}

func TestLoadRulesFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	content := "blocked_domains:\n  - ycombinator\n  - twitch\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write rules: %v", err)
	}

	rules, err := LoadRules(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !rules.MatchDomain("news.ycombinator.com") {
		t.Error("expected custom entry to match")
	}
	if rules.MatchDomain("netflix.com") {
		t.Error("custom file replaces the defaults")
	}
}

func TestLoadRulesMissingFileFails(t *testing.T) {
	if _, err := LoadRules(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for configured-but-missing rules file")
	}
}

func TestLoadRulesEmptyListFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, []byte("blocked_domains: []\n"), 0o644); err != nil {
		t.Fatalf("write rules: %v", err)
	}
	rules, err := LoadRules(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !rules.MatchDomain("instagram.com") {
		t.Error("empty list should fall back to defaults")
	}
}

func TestMatchDomain(t *testing.T) {
	rules := DefaultRules()
	tests := []struct {
		domain string
		want   bool
	}{
		{domain: "netflix.com", want: true},
		{domain: "www.NETFLIX.com", want: true},
		{domain: "reddit.co.uk", want: true},
		{domain: "go.dev", want: false},
		{domain: "", want: false},
	}
	for _, tt := range tests {
		if got := rules.MatchDomain(tt.domain); got != tt.want {
			t.Errorf("MatchDomain(%q) = %v, want %v", tt.domain, got, tt.want)
		}
	}
}

func TestCleanSnippet(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "control tokens stripped", in: "<s>binary search tree</s>", want: "binary search tree"},
		{name: "stopwords dropped", in: "this is the best binary search tree", want: "best binary search tree"},
		{name: "non ascii becomes space", in: "café menu", want: "caf menu"},
		{name: "whitespace collapsed", in: "graph   \n\t algorithms", want: "graph algorithms"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanSnippet(tt.in); got != tt.want {
				t.Errorf("CleanSnippet(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCleanSnippetCapsLength(t *testing.T) {
	long := ""
	for i := 0; i < 400; i++ {
		long += "wordsearch "
	}
	got := CleanSnippet(long)
	if len(got) > snippetMaxLen {
		t.Errorf("cleaned length %d exceeds cap %d", len(got), snippetMaxLen)
	}
}
