// Package kv defines the durable key-value capability the list store persists to.
// Sub packages implement it on top of different storage devices.
package kv

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key was never written.
var ErrNotFound = errors.New("key not found")

// Store reads and writes opaque values under string keys.
type Store interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set replaces the value stored under key.
	Set(ctx context.Context, key string, value []byte) error
}

// Closer is implemented by backends holding connections or handles.
type Closer interface {
	Close() error
}
