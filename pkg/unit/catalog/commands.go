package catalog

import (
	"context"

	"github.com/modelscout/modelscout/pkg/unit"
)

// SyncCommand refreshes the catalog snapshot through the freshness
// gate. With force it refetches even mid-TTL.
type SyncCommand struct {
	cache  *Cache
	client Provider
	events unit.EventPublisher
}

func NewSyncCommand(cache *Cache, client Provider) *SyncCommand {
	return &SyncCommand{cache: cache, client: client}
}

func NewSyncCommandWithEvents(cache *Cache, client Provider, events unit.EventPublisher) *SyncCommand {
	return &SyncCommand{cache: cache, client: client, events: events}
}

func (c *SyncCommand) Name() string {
	return "catalog.sync"
}

func (c *SyncCommand) Domain() string {
	return "catalog"
}

func (c *SyncCommand) Description() string {
	return "Refresh the model catalog from the upstream provider, honoring the cache TTL unless forced"
}

func (c *SyncCommand) InputSchema() unit.Schema {
	return unit.Schema{
		Type: "object",
		Properties: map[string]unit.Field{
			"force": {
				Name: "force",
				Schema: unit.Schema{
					Type:        "boolean",
					Description: "Refetch even if the cached snapshot is still fresh",
					Default:     false,
				},
			},
		},
	}
}

func (c *SyncCommand) OutputSchema() unit.Schema {
	return unit.Schema{
		Type: "object",
		Properties: map[string]unit.Field{
			"model_count": {Name: "model_count", Schema: unit.Schema{Type: "number"}},
			"fetched_at":  {Name: "fetched_at", Schema: unit.Schema{Type: "number", Description: "Unix milliseconds"}},
			"source":      {Name: "source", Schema: unit.Schema{Type: "string", Enum: []any{SourceCache, SourceLive}}},
			"auth_used":   {Name: "auth_used", Schema: unit.Schema{Type: "boolean"}},
		},
	}
}

func (c *SyncCommand) Examples() []unit.Example {
	return []unit.Example{
		{
			Input:       map[string]any{"force": true},
			Output:      map[string]any{"model_count": 324, "fetched_at": 1756339200000, "source": "live", "auth_used": true},
			Description: "Force a mid-TTL refresh",
		},
	}
}

func (c *SyncCommand) Execute(ctx context.Context, input any) (any, error) {
	ec := unit.NewExecutionContext(c.events, c.Domain(), c.Name())
	ec.PublishStarted(input)

	inputMap, _ := input.(map[string]any)
	if input != nil && inputMap == nil {
		err := unit.Errorf("invalid input type %T", input)
		ec.PublishFailed(err)
		return nil, err
	}
	if err := validateInput(c.InputSchema(), inputMap); err != nil {
		ec.PublishFailed(err)
		return nil, err
	}

	force, _ := inputMap["force"].(bool)

	snapshot, status, err := c.cache.Ensure(ctx, c.client, force)
	if err != nil {
		ec.PublishFailed(err)
		return nil, err
	}

	result := map[string]any{
		"model_count": len(snapshot.Models),
		"fetched_at":  status.FetchedAt,
		"source":      status.Source,
		"auth_used":   c.client.HasAuth(),
	}

	ec.PublishCompleted(result)
	return result, nil
}

// validateInput runs schema validation and wraps failures in the
// INVALID_INPUT envelope. A nil map is treated as an empty object.
func validateInput(schema unit.Schema, input map[string]any) error {
	if input == nil {
		input = map[string]any{}
	}
	if err := schema.Validate(input); err != nil {
		return unit.NewErrorWithDetails(unit.ErrCodeInvalidInput, "input validation failed", err.Error())
	}
	return nil
}
