package dialog

import (
	"context"
	"errors"
	"testing"
)

func TestQueue_Sequence(t *testing.T) {
	ctx := context.Background()
	var q Queue
	calls := 0
	if err := q.Show(ctx, []string{"Welcome!", "Tall grass hides creatures."}, func(context.Context) { calls++ }); err != nil {
		t.Fatalf("Show: %v", err)
	}

	line, ok := q.Current()
	if !ok || line != "Welcome!" {
		t.Errorf("Expected first line, got %q ok=%v", line, ok)
	}

	line, ok = q.Next(ctx)
	if !ok || line != "Tall grass hides creatures." {
		t.Errorf("Expected second line, got %q ok=%v", line, ok)
	}
	if calls != 0 {
		t.Error("Expected completion to wait for the last acknowledgment")
	}

	if _, ok = q.Next(ctx); ok {
		t.Error("Expected sequence to be finished")
	}
	if calls != 1 {
		t.Errorf("Expected completion once, got %d", calls)
	}
	if q.Active() {
		t.Error("Expected queue to be closed")
	}

	q.Next(ctx)
	if calls != 1 {
		t.Errorf("Expected completion to stay single-shot, got %d", calls)
	}
}

func TestQueue_Busy(t *testing.T) {
	ctx := context.Background()
	var q Queue
	if err := q.Show(ctx, []string{"one"}, nil); err != nil {
		t.Fatalf("Show: %v", err)
	}
	if err := q.Show(ctx, []string{"two"}, nil); !errors.Is(err, ErrBusy) {
		t.Errorf("Expected ErrBusy, got %v", err)
	}
	if line, _ := q.Current(); line != "one" {
		t.Errorf("Expected open dialog untouched, got %q", line)
	}
}

func TestQueue_EmptyCompletesImmediately(t *testing.T) {
	ctx := context.Background()
	var q Queue
	done := false
	if err := q.Show(ctx, nil, func(context.Context) { done = true }); err != nil {
		t.Fatalf("Show: %v", err)
	}
	if !done || q.Active() {
		t.Error("Expected empty dialog to complete at once")
	}
}

func TestQueue_CallbackCanOpenAnother(t *testing.T) {
	ctx := context.Background()
	var q Queue
	err := q.Show(ctx, []string{"first"}, func(ctx context.Context) {
		if err := q.Show(ctx, []string{"follow-up"}, nil); err != nil {
			t.Errorf("Show from callback: %v", err)
		}
	})
	if err != nil {
		t.Fatalf("Show: %v", err)
	}
	q.Next(ctx)
	if line, ok := q.Current(); !ok || line != "follow-up" {
		t.Errorf("Expected follow-up dialog, got %q ok=%v", line, ok)
	}
}
