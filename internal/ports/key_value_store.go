package ports

import (
	"context"
	"errors"
)

var ErrKeyRequired = errors.New("key is required")

// KeyValueStore is the durable get/set/remove-by-key medium behind snapshots.
// Adapters may be backed by SQLite or any other store.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
}
