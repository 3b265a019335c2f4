// Package kv provides the keyed persistence capability the draft store and
// case repository are built on: atomic per-key get/put/delete plus a prefix
// scan. Backends cover local-first (memory) and remote (redis, postgres)
// deployments.
package kv

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by Get when no value exists for the key.
var ErrKeyNotFound = errors.New("kv: key not found")

// Store is a keyed byte store. Each operation is atomic for its key; no
// multi-key transaction is offered.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, prefix string) ([][]byte, error)
}
