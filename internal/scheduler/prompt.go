/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package scheduler

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

// StdinPrompter asks for a completion verdict on the terminal. The
// blocking read runs on its own goroutine and the caller joins it: a
// deliberate synchronous barrier with no timeout, so the scheduler
// waits indefinitely for an answer while staying cancellable.
type StdinPrompter struct {
	In  io.Reader
	Out io.Writer
}

// NewStdinPrompter creates a prompter bound to the process terminal.
func NewStdinPrompter() *StdinPrompter {
	return &StdinPrompter{In: os.Stdin, Out: os.Stdout}
}

type promptResult struct {
	completion Completion
	err        error
}

// Ask blocks until the user answers or ctx is cancelled.
func (p *StdinPrompter) Ask(ctx context.Context, slotName string) (Completion, error) {
	results := make(chan promptResult, 1)

	go func() {
		reader := bufio.NewReader(p.In)

		fmt.Fprintf(p.Out, "Did you complete: %s ? [y/n]: ", slotName)
		answer, err := reader.ReadString('\n')
		if err != nil {
			results <- promptResult{err: fmt.Errorf("read completion answer: %w", err)}
			return
		}

		completion := Completion{Status: "Not Done"}
		if yes(answer) {
			completion.Status = "Done"
			fmt.Fprint(p.Out, "Optional short comment: ")
		} else {
			fmt.Fprint(p.Out, "Short reason (optional): ")
		}

		comment, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			results <- promptResult{err: fmt.Errorf("read comment: %w", err)}
			return
		}
		completion.Comment = strings.TrimSpace(comment)
		results <- promptResult{completion: completion}
	}()

	select {
	case <-ctx.Done():
		return Completion{}, ctx.Err()
	case res := <-results:
		return res.completion, res.err
	}
}

func yes(answer string) bool {
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}
