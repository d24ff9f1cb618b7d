// Package store persists cache blobs between process runs. The in-memory
// caches treat it as best-effort: every write is fire-and-forget and a
// failed read just means a cold start.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a key has no stored blob.
var ErrNotFound = errors.New("blob not found")

// BlobStore is a flat key -> blob mapping. Keys are short identifiers
// ("catalog", "catalog_meta", "embeddings"); values are JSON documents
// with no schema versioning.
type BlobStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}
