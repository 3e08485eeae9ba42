/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package mailbox implements the single-slot message file used for
// one-way status notification between the scheduler and the timer
// display. Every write overwrites the previous content; a fast reader
// may miss an intermediate message, which is accepted.
package mailbox

import (
	"fmt"
	"os"
	"strings"
)

// Writer posts status messages to the message file.
type Writer struct {
	path string
}

// NewWriter creates a mailbox writer for path.
func NewWriter(path string) *Writer {
	return &Writer{path: path}
}

// Post overwrites the mailbox with msg. Last write wins.
func (w *Writer) Post(msg string) error {
	if err := os.WriteFile(w.path, []byte(msg), 0o644); err != nil {
		return fmt.Errorf("write message file: %w", err)
	}
	return nil
}

// Read returns the current mailbox content. A missing file reads as
// empty; readers poll and must not treat absence as an error.
func Read(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("read message file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}
