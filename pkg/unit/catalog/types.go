// Package catalog owns the model-catalog snapshot: fetching it through
// the provider client, caching it in memory with a TTL, persisting a
// durable copy, and answering per-model profile lookups.
package catalog

import (
	"context"
	"time"

	"github.com/modelscout/modelscout/pkg/infra/provider/openrouter"
)

const (
	// DefaultTTL is how long a catalog snapshot stays fresh.
	DefaultTTL = 600_000 * time.Millisecond
	// DefaultEmbeddingTTL is the independent, longer expiry for cached
	// embedding vectors.
	DefaultEmbeddingTTL = 86_400_000 * time.Millisecond
)

// Source tags in freshness reports.
const (
	SourceCache = "cache"
	SourceLive  = "live"
	SourceDisk  = "disk"
)

// Provider is the slice of the upstream client the catalog and
// recommendation pipeline depend on.
type Provider interface {
	ListModels(ctx context.Context) (*openrouter.ListModelsResult, error)
	ListEndpoints(ctx context.Context, modelID string) (*openrouter.ListEndpointsResult, error)
	ListParameters(ctx context.Context, modelID string) (*openrouter.ListParametersResult, error)
	Embed(ctx context.Context, texts []string, embeddingModel string) (*openrouter.EmbedResult, error)
	HasAuth() bool
}

// Snapshot is one immutable fetch of the catalog. It is replaced
// wholesale on refresh, never mutated in place.
type Snapshot struct {
	Models    []openrouter.Model
	FetchedAt time.Time
	ExpiresAt time.Time
}

// Status is the freshness/provenance report attached to responses.
type Status struct {
	FetchedAt  int64  `json:"fetched_at"`
	CacheAgeMS int64  `json:"cache_age_ms"`
	Source     string `json:"source"`
}

// Durable blob keys.
const (
	blobKeyCatalog     = "catalog"
	blobKeyCatalogMeta = "catalog_meta"
	blobKeyEmbeddings  = "embeddings"
)

type catalogMeta struct {
	FetchedAt  int64 `json:"fetched_at"`
	ExpiresAt  int64 `json:"expires_at"`
	ModelCount int   `json:"model_count"`
}

type embeddingBlob struct {
	Embeddings map[string][]float64 `json:"embeddings"`
	FetchedAt  int64                `json:"fetched_at"`
	ModelCount int                  `json:"model_count"`
}
