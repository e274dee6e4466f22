// Package kvstore is the durable key-value layer behind per-donor UI state.
// Values are JSON documents; keys are plain strings such as "hiddenCitations_<donorId>".
package kvstore

import (
	"context"
	"errors"
)

// ErrConflict is returned when an Update could not be applied after repeated
// concurrent modifications of the same key.
var ErrConflict = errors.New("kvstore: too many concurrent updates")

// UpdateFunc receives the current value (found is false when the key is absent)
// and returns the value to store.
type UpdateFunc func(current []byte, found bool) ([]byte, error)

type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error

	// Update applies fn as one atomic read-modify-write. An error from fn aborts
	// the update and is returned unchanged.
	Update(ctx context.Context, key string, fn UpdateFunc) error
}

const maxUpdateAttempts = 5
