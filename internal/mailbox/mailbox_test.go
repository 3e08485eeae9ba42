/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package mailbox

import (
	"path/filepath"
	"testing"
)

func TestPostLastWriteWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "msg.txt")
	w := NewWriter(path)

	if err := w.Post("Start WORK: DSA"); err != nil {
		t.Fatalf("post: %v", err)
	}
	if err := w.Post("Take BREAK: 5 minutes"); err != nil {
		t.Fatalf("post: %v", err)
	}

	got, err := Read(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got != "Take BREAK: 5 minutes" {
		t.Errorf("got %q", got)
	}
}

func TestReadMissingFileIsEmpty(t *testing.T) {
	got, err := Read(filepath.Join(t.TempDir(), "absent.txt"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got != "" {
		t.Errorf("got %q, want empty", got)
	}
}

func TestReadTrimsWhitespace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "msg.txt")
	if err := NewWriter(path).Post("  hello\n"); err != nil {
		t.Fatalf("post: %v", err)
	}
	got, err := Read(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got != "hello" {
		t.Errorf("got %q", got)
	}
}
