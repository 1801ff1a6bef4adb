// Package dialog sequences lines of NPC text. One sequence is open at a
// time; a single "next" signal advances it and the completion callback
// fires exactly once when the last line is acknowledged.
package dialog

import (
	"context"
	"errors"
)

var ErrBusy = errors.New("a dialog is already open")

type Queue struct {
	lines []string
	idx   int
	done  func(context.Context)
}

// Show opens a sequence. An empty sequence completes immediately.
func (q *Queue) Show(ctx context.Context, lines []string, done func(context.Context)) error {
	if q.Active() {
		return ErrBusy
	}
	if len(lines) == 0 {
		if done != nil {
			done(ctx)
		}
		return nil
	}
	q.lines = append([]string(nil), lines...)
	q.idx = 0
	q.done = done
	return nil
}

func (q *Queue) Active() bool { return q.lines != nil }

// Current is the line waiting for acknowledgment.
func (q *Queue) Current() (string, bool) {
	if !q.Active() {
		return "", false
	}
	return q.lines[q.idx], true
}

// Next acknowledges the current line and returns the following one. When
// the sequence runs out the queue closes, the callback runs, and ok is false.
func (q *Queue) Next(ctx context.Context) (line string, ok bool) {
	if !q.Active() {
		return "", false
	}
	q.idx++
	if q.idx < len(q.lines) {
		return q.lines[q.idx], true
	}
	done := q.done
	q.lines, q.done, q.idx = nil, nil, 0
	if done != nil {
		done(ctx)
	}
	return "", false
}
