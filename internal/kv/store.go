package kv

import (
	"context"
	"errors"
)

// Store is a durable key-value store for small client state (bearer token,
// serialized user record). Implementations must tolerate concurrent readers
// in other processes.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

var ErrNotFound = errors.New("key not found")
