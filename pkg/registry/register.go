// Package registry wires the catalog and recommendation units into a
// unit.Registry with their shared dependencies.
package registry

import (
	"fmt"

	"github.com/modelscout/modelscout/pkg/unit"
	"github.com/modelscout/modelscout/pkg/unit/catalog"
	"github.com/modelscout/modelscout/pkg/unit/recommend"
)

type Options struct {
	Cache          *catalog.Cache
	EmbeddingCache *catalog.EmbeddingCache
	Client         catalog.Provider
	Events         unit.EventPublisher
	EmbeddingModel string
}

type Option func(*Options)

func WithCache(c *catalog.Cache) Option {
	return func(o *Options) {
		o.Cache = c
	}
}

func WithEmbeddingCache(c *catalog.EmbeddingCache) Option {
	return func(o *Options) {
		o.EmbeddingCache = c
	}
}

func WithClient(p catalog.Provider) Option {
	return func(o *Options) {
		o.Client = p
	}
}

func WithEvents(e unit.EventPublisher) Option {
	return func(o *Options) {
		o.Events = e
	}
}

func WithEmbeddingModel(model string) Option {
	return func(o *Options) {
		o.EmbeddingModel = model
	}
}

// RegisterAll registers every unit. The cache and client are required;
// events default to a no-op publisher.
func RegisterAll(reg *unit.Registry, opts ...Option) error {
	options := &Options{}
	for _, opt := range opts {
		opt(options)
	}

	if reg == nil {
		return fmt.Errorf("registry is nil")
	}
	if options.Cache == nil {
		return fmt.Errorf("catalog cache is required")
	}
	if options.Client == nil {
		return fmt.Errorf("provider client is required")
	}
	if options.Events == nil {
		options.Events = &unit.NoopEventPublisher{}
	}
	if options.EmbeddingCache == nil {
		options.EmbeddingCache = catalog.NewEmbeddingCache(catalog.DefaultEmbeddingTTL, nil)
	}

	sync := catalog.NewSyncCommandWithEvents(options.Cache, options.Client, options.Events)
	if err := reg.RegisterCommand(sync); err != nil {
		return fmt.Errorf("register %s: %w", sync.Name(), err)
	}

	profile := catalog.NewProfileQueryWithEvents(options.Cache, options.Client, options.Events)
	if err := reg.RegisterQuery(profile); err != nil {
		return fmt.Errorf("register %s: %w", profile.Name(), err)
	}

	matcher := recommend.NewMatcher(options.Client, options.EmbeddingCache, options.EmbeddingModel)
	task2model := recommend.NewTask2ModelQueryWithEvents(options.Cache, options.Client, matcher, options.Events)
	if err := reg.RegisterQuery(task2model); err != nil {
		return fmt.Errorf("register %s: %w", task2model.Name(), err)
	}

	return nil
}
