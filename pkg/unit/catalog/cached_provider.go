package catalog

import (
	"context"
	"time"

	"github.com/modelscout/modelscout/pkg/infra/cache"
	"github.com/modelscout/modelscout/pkg/infra/provider/openrouter"
)

// DefaultDetailTTL bounds how long per-model endpoint and parameter
// lookups are memoized. Detail changes upstream far less often than it
// is queried during a single recommendation session.
const DefaultDetailTTL = 5 * time.Minute

// CachedProvider memoizes the per-model detail calls of an underlying
// Provider. Model listing and embedding calls pass through untouched:
// the snapshot cache and embedding cache already own their lifetimes.
type CachedProvider struct {
	inner Provider
	memo  cache.Cache
	ttl   time.Duration
}

func NewCachedProvider(inner Provider) *CachedProvider {
	return &CachedProvider{
		inner: inner,
		memo:  cache.New(cache.WithTTL(DefaultDetailTTL), cache.WithMaxSize(1024)),
		ttl:   DefaultDetailTTL,
	}
}

func (p *CachedProvider) ListModels(ctx context.Context) (*openrouter.ListModelsResult, error) {
	return p.inner.ListModels(ctx)
}

func (p *CachedProvider) ListEndpoints(ctx context.Context, modelID string) (*openrouter.ListEndpointsResult, error) {
	key := "endpoints:" + modelID
	if v, ok := p.memo.Get(ctx, key); ok {
		return v.(*openrouter.ListEndpointsResult), nil
	}
	result, err := p.inner.ListEndpoints(ctx, modelID)
	if err != nil {
		return nil, err
	}
	p.memo.Set(ctx, key, result, p.ttl)
	return result, nil
}

func (p *CachedProvider) ListParameters(ctx context.Context, modelID string) (*openrouter.ListParametersResult, error) {
	key := "parameters:" + modelID
	if v, ok := p.memo.Get(ctx, key); ok {
		return v.(*openrouter.ListParametersResult), nil
	}
	result, err := p.inner.ListParameters(ctx, modelID)
	if err != nil {
		return nil, err
	}
	p.memo.Set(ctx, key, result, p.ttl)
	return result, nil
}

func (p *CachedProvider) Embed(ctx context.Context, texts []string, embeddingModel string) (*openrouter.EmbedResult, error) {
	return p.inner.Embed(ctx, texts, embeddingModel)
}

func (p *CachedProvider) HasAuth() bool {
	return p.inner.HasAuth()
}

var _ Provider = (*CachedProvider)(nil)
