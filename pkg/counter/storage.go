package counter

import (
	"context"
	"errors"
)

var ErrConflict = errors.New("counter already exists")
var ErrNotFound = errors.New("counter does not exist")

// Storage holds the counters. Implementations must apply every operation
// atomically per name and report ErrConflict / ErrNotFound unwrapped or
// wrapped so that errors.Is still matches.
type Storage interface {
	Create(ctx context.Context, name string) (int64, error)
	Get(ctx context.Context, name string) (int64, error)
	Increment(ctx context.Context, name string) (int64, error)
	Delete(ctx context.Context, name string) error
	Close() error
}
