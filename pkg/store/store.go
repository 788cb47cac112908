// Package store defines the destination object store consumed by the sync
// pipeline.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when no object exists at the key.
var ErrNotFound = errors.New("object not found")

// ObjectStore is the narrow surface the pipeline needs from the
// destination: a metadata-only existence probe, a full read, and a full
// write. Implementations must be safe for concurrent use; the pipeline
// only ever touches disjoint keys from different goroutines.
type ObjectStore interface {
	// Exists reports whether an object is present at key without
	// downloading it.
	Exists(ctx context.Context, key string) (bool, error)

	// Get returns the full object bytes at key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put writes the object at key, overwriting any existing object.
	Put(ctx context.Context, key string, data []byte, contentType string) error
}
