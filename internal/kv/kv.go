package kv

import "context"

// Store is the persistent key-value collaborator. The whole application
// snapshot is serialized as one value under one fixed key; partial keys are
// not used.
type Store interface {
	// Get returns the value stored under key. found is false when the key
	// has never been written.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	// Set writes value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error
}
