// Package session provides keyed storage: per-browser game sessions and
// the durable save slots behind them.
package session

import "context"

type Store[T any] interface {
	Get(ctx context.Context, id string) (T, bool, error)
	Put(ctx context.Context, id string, v T) error
	Delete(ctx context.Context, id string) error
	NewID() string
}
