package catalog

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/modelscout/modelscout/pkg/infra/logger"
	"github.com/modelscout/modelscout/pkg/infra/provider/openrouter"
	"github.com/modelscout/modelscout/pkg/infra/store"
)

// Cache holds the single live catalog snapshot. A refresh replaces the
// snapshot reference atomically (last write wins); concurrent refreshes
// of an expired catalog are an accepted inefficiency, not a hazard,
// because each Set is an idempotent replacement.
type Cache struct {
	mu       sync.RWMutex
	snapshot *Snapshot
	ttl      time.Duration
	blobs    store.BlobStore
	now      func() time.Time
}

type CacheOption func(*Cache)

// WithClock overrides the cache's time source. Tests use it to pin TTL
// boundaries to the millisecond.
func WithClock(now func() time.Time) CacheOption {
	return func(c *Cache) {
		c.now = now
	}
}

func NewCache(ttl time.Duration, blobs store.BlobStore, opts ...CacheOption) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &Cache{
		ttl:   ttl,
		blobs: blobs,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the current snapshot, which may be nil or stale.
func (c *Cache) Get() *Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot
}

// Valid reports whether the snapshot exists and has not expired.
func (c *Cache) Valid(s *Snapshot) bool {
	return s != nil && c.now().Before(s.ExpiresAt)
}

// Set installs a new snapshot and spawns a durable write that is never
// awaited: persistence failure must not fail or block the caller.
func (c *Cache) Set(models []openrouter.Model) *Snapshot {
	fetchedAt := c.now()
	snapshot := &Snapshot{
		Models:    models,
		FetchedAt: fetchedAt,
		ExpiresAt: fetchedAt.Add(c.ttl),
	}

	c.mu.Lock()
	c.snapshot = snapshot
	c.mu.Unlock()

	go c.persist(snapshot)

	return snapshot
}

// Status derives the freshness report for a snapshot.
func (c *Cache) Status(s *Snapshot, source string) Status {
	if s == nil {
		return Status{Source: source}
	}
	return Status{
		FetchedAt:  s.FetchedAt.UnixMilli(),
		CacheAgeMS: c.now().UnixMilli() - s.FetchedAt.UnixMilli(),
		Source:     source,
	}
}

// Ensure is the freshness gate: it returns the cached snapshot when
// valid, otherwise refetches through the provider. force always
// refetches, even mid-TTL.
func (c *Cache) Ensure(ctx context.Context, client Provider, force bool) (*Snapshot, Status, error) {
	if !force {
		if s := c.Get(); c.Valid(s) {
			return s, c.Status(s, SourceCache), nil
		}
	}

	result, err := client.ListModels(ctx)
	if err != nil {
		return nil, Status{}, err
	}

	s := c.Set(result.Models)
	return s, c.Status(s, SourceLive), nil
}

// Hydrate loads the durable copy into memory on process start. An
// expired or unreadable copy is discarded silently; the next request
// will fetch live.
func (c *Cache) Hydrate(ctx context.Context) bool {
	if c.blobs == nil {
		return false
	}

	metaData, err := c.blobs.Get(ctx, blobKeyCatalogMeta)
	if err != nil {
		return false
	}
	var meta catalogMeta
	if err := json.Unmarshal(metaData, &meta); err != nil {
		return false
	}
	if !c.now().Before(time.UnixMilli(meta.ExpiresAt)) {
		return false
	}

	data, err := c.blobs.Get(ctx, blobKeyCatalog)
	if err != nil {
		return false
	}
	var models []openrouter.Model
	if err := json.Unmarshal(data, &models); err != nil {
		return false
	}

	c.mu.Lock()
	c.snapshot = &Snapshot{
		Models:    models,
		FetchedAt: time.UnixMilli(meta.FetchedAt),
		ExpiresAt: time.UnixMilli(meta.ExpiresAt),
	}
	c.mu.Unlock()

	return true
}

func (c *Cache) persist(s *Snapshot) {
	if c.blobs == nil {
		return
	}

	log := logger.Component("catalog-cache")
	ctx := context.Background()

	data, err := json.Marshal(s.Models)
	if err != nil {
		log.Warn("marshal catalog for persistence", "error", err)
		return
	}
	if err := c.blobs.Put(ctx, blobKeyCatalog, data); err != nil {
		log.Warn("persist catalog blob", "error", err)
		return
	}

	meta := catalogMeta{
		FetchedAt:  s.FetchedAt.UnixMilli(),
		ExpiresAt:  s.ExpiresAt.UnixMilli(),
		ModelCount: len(s.Models),
	}
	metaData, err := json.Marshal(meta)
	if err != nil {
		log.Warn("marshal catalog meta", "error", err)
		return
	}
	if err := c.blobs.Put(ctx, blobKeyCatalogMeta, metaData); err != nil {
		log.Warn("persist catalog meta", "error", err)
	}
}

// EmbeddingCache mirrors Cache for text-embedding vectors, with a
// longer TTL and additive merges: entries accumulate until the whole
// map expires. A missing entry is indistinguishable from a failed
// fetch, so misses are simply re-attempted on the next scan.
type EmbeddingCache struct {
	mu        sync.RWMutex
	vectors   map[string][]float64
	fetchedAt time.Time
	ttl       time.Duration
	blobs     store.BlobStore
	now       func() time.Time
}

type EmbeddingCacheOption func(*EmbeddingCache)

func WithEmbeddingClock(now func() time.Time) EmbeddingCacheOption {
	return func(c *EmbeddingCache) {
		c.now = now
	}
}

func NewEmbeddingCache(ttl time.Duration, blobs store.BlobStore, opts ...EmbeddingCacheOption) *EmbeddingCache {
	if ttl <= 0 {
		ttl = DefaultEmbeddingTTL
	}
	c := &EmbeddingCache{
		vectors: make(map[string][]float64),
		ttl:     ttl,
		blobs:   blobs,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached vector for a model identifier, treating the
// whole cache as empty once the TTL has lapsed.
func (c *EmbeddingCache) Get(modelID string) ([]float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.expiredLocked() {
		return nil, false
	}
	v, ok := c.vectors[modelID]
	return v, ok
}

// Merge adds vectors without discarding existing entries. If the cache
// had expired, it is reset first so stale vectors do not outlive their
// TTL.
func (c *EmbeddingCache) Merge(vectors map[string][]float64) {
	c.mu.Lock()

	if c.expiredLocked() {
		c.vectors = make(map[string][]float64)
		c.fetchedAt = c.now()
	}
	if c.fetchedAt.IsZero() {
		c.fetchedAt = c.now()
	}
	for id, v := range vectors {
		if len(v) > 0 {
			c.vectors[id] = v
		}
	}

	snapshot := make(map[string][]float64, len(c.vectors))
	for id, v := range c.vectors {
		snapshot[id] = v
	}
	fetchedAt := c.fetchedAt
	c.mu.Unlock()

	go c.persist(snapshot, fetchedAt)
}

// Size returns the number of cached vectors (0 once expired).
func (c *EmbeddingCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.expiredLocked() {
		return 0
	}
	return len(c.vectors)
}

func (c *EmbeddingCache) expiredLocked() bool {
	return !c.fetchedAt.IsZero() && !c.now().Before(c.fetchedAt.Add(c.ttl))
}

// Hydrate loads the durable embedding map, discarding it if expired.
func (c *EmbeddingCache) Hydrate(ctx context.Context) bool {
	if c.blobs == nil {
		return false
	}

	data, err := c.blobs.Get(ctx, blobKeyEmbeddings)
	if err != nil {
		return false
	}
	var blob embeddingBlob
	if err := json.Unmarshal(data, &blob); err != nil {
		return false
	}

	fetchedAt := time.UnixMilli(blob.FetchedAt)
	if !c.now().Before(fetchedAt.Add(c.ttl)) {
		return false
	}

	c.mu.Lock()
	c.vectors = blob.Embeddings
	if c.vectors == nil {
		c.vectors = make(map[string][]float64)
	}
	c.fetchedAt = fetchedAt
	c.mu.Unlock()

	return true
}

func (c *EmbeddingCache) persist(vectors map[string][]float64, fetchedAt time.Time) {
	if c.blobs == nil {
		return
	}

	log := logger.Component("embedding-cache")

	blob := embeddingBlob{
		Embeddings: vectors,
		FetchedAt:  fetchedAt.UnixMilli(),
		ModelCount: len(vectors),
	}
	data, err := json.Marshal(blob)
	if err != nil {
		log.Warn("marshal embeddings for persistence", "error", err)
		return
	}
	if err := c.blobs.Put(context.Background(), blobKeyEmbeddings, data); err != nil {
		log.Warn("persist embeddings blob", "error", err)
	}
}
