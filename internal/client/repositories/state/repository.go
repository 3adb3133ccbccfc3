// Package state stores the client's durable key/value records, such as the
// persisted session, in a local SQLite database.
package state

import "context"

// Repository is a durable key/value store. Get returns (nil, nil) for an
// absent key; Delete of an absent key is not an error.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	// SetAll writes every pair atomically.
	SetAll(ctx context.Context, values map[string][]byte) error
	Delete(ctx context.Context, key string) error
}
