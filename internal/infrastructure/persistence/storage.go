// Package persistence provides the durable key/value backends the cart is
// saved to. Every backend stores opaque bytes under a single key.
package persistence

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Load when nothing is stored under the key
var ErrNotFound = errors.New("persistence: key not found")

// BlobStorage is implemented by every backend
type BlobStorage interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
}

var (
	_ BlobStorage = (*FileStorage)(nil)
	_ BlobStorage = (*RedisStorage)(nil)
	_ BlobStorage = (*SQLiteStorage)(nil)
	_ BlobStorage = (*MemoryStorage)(nil)
)
