package registry

import (
	"context"
	"testing"
	"time"

	"github.com/modelscout/modelscout/pkg/infra/provider/openrouter"
	"github.com/modelscout/modelscout/pkg/unit"
	"github.com/modelscout/modelscout/pkg/unit/catalog"
)

type stubProvider struct{}

func (stubProvider) ListModels(context.Context) (*openrouter.ListModelsResult, error) {
	return &openrouter.ListModelsResult{}, nil
}

func (stubProvider) ListEndpoints(context.Context, string) (*openrouter.ListEndpointsResult, error) {
	return &openrouter.ListEndpointsResult{}, nil
}

func (stubProvider) ListParameters(context.Context, string) (*openrouter.ListParametersResult, error) {
	return &openrouter.ListParametersResult{}, nil
}

func (stubProvider) Embed(context.Context, []string, string) (*openrouter.EmbedResult, error) {
	return &openrouter.EmbedResult{}, nil
}

func (stubProvider) HasAuth() bool { return false }

func TestRegisterAll(t *testing.T) {
	reg := unit.NewRegistry()
	err := RegisterAll(reg,
		WithCache(catalog.NewCache(10*time.Minute, nil)),
		WithClient(stubProvider{}),
	)
	if err != nil {
		t.Fatal(err)
	}

	if reg.CommandCount() != 1 {
		t.Errorf("expected 1 command, got %d", reg.CommandCount())
	}
	if reg.QueryCount() != 2 {
		t.Errorf("expected 2 queries, got %d", reg.QueryCount())
	}
	if reg.GetCommand("catalog.sync") == nil {
		t.Error("catalog.sync not registered")
	}
	if reg.GetQuery("catalog.profile") == nil {
		t.Error("catalog.profile not registered")
	}
	if reg.GetQuery("recommend.task2model") == nil {
		t.Error("recommend.task2model not registered")
	}
}

func TestRegisterAll_MissingDependencies(t *testing.T) {
	cache := catalog.NewCache(10*time.Minute, nil)

	if err := RegisterAll(nil, WithCache(cache), WithClient(stubProvider{})); err == nil {
		t.Error("nil registry must be rejected")
	}
	if err := RegisterAll(unit.NewRegistry(), WithClient(stubProvider{})); err == nil {
		t.Error("missing cache must be rejected")
	}
	if err := RegisterAll(unit.NewRegistry(), WithCache(cache)); err == nil {
		t.Error("missing client must be rejected")
	}
}

func TestRegisterAll_DuplicateRegistration(t *testing.T) {
	reg := unit.NewRegistry()
	cache := catalog.NewCache(10*time.Minute, nil)

	if err := RegisterAll(reg, WithCache(cache), WithClient(stubProvider{})); err != nil {
		t.Fatal(err)
	}
	if err := RegisterAll(reg, WithCache(cache), WithClient(stubProvider{})); err == nil {
		t.Error("second registration of the same units must fail")
	}
}

func TestRegisterAll_OptionalWiring(t *testing.T) {
	reg := unit.NewRegistry()
	err := RegisterAll(reg,
		WithCache(catalog.NewCache(10*time.Minute, nil)),
		WithClient(stubProvider{}),
		WithEmbeddingCache(catalog.NewEmbeddingCache(24*time.Hour, nil)),
		WithEvents(&unit.NoopEventPublisher{}),
		WithEmbeddingModel("openai/text-embedding-3-large"),
	)
	if err != nil {
		t.Fatal(err)
	}
	if reg.CommandCount()+reg.QueryCount() != 3 {
		t.Errorf("expected 3 units, got %d", reg.CommandCount()+reg.QueryCount())
	}
}
