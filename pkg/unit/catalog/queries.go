package catalog

import (
	"context"

	"github.com/modelscout/modelscout/pkg/infra/provider/openrouter"
	"github.com/modelscout/modelscout/pkg/unit"
)

// ProfileQuery returns one model's full upstream record, optionally
// enriched with its live endpoint and parameter detail.
type ProfileQuery struct {
	cache  *Cache
	client Provider
	events unit.EventPublisher
}

func NewProfileQuery(cache *Cache, client Provider) *ProfileQuery {
	return &ProfileQuery{cache: cache, client: client}
}

func NewProfileQueryWithEvents(cache *Cache, client Provider, events unit.EventPublisher) *ProfileQuery {
	return &ProfileQuery{cache: cache, client: client, events: events}
}

func (q *ProfileQuery) Name() string {
	return "catalog.profile"
}

func (q *ProfileQuery) Domain() string {
	return "catalog"
}

func (q *ProfileQuery) Description() string {
	return "Get the catalog record for one model, optionally with live endpoint and parameter detail"
}

func (q *ProfileQuery) InputSchema() unit.Schema {
	return unit.Schema{
		Type: "object",
		Properties: map[string]unit.Field{
			"model_id": {
				Name: "model_id",
				Schema: unit.Schema{
					Type:        "string",
					Description: "Model identifier (provider/slug[:variant])",
				},
			},
			"include_endpoints": {
				Name: "include_endpoints",
				Schema: unit.Schema{
					Type:        "boolean",
					Description: "Fetch the live endpoint list (requires credentials)",
					Default:     false,
				},
			},
			"include_parameters": {
				Name: "include_parameters",
				Schema: unit.Schema{
					Type:        "boolean",
					Description: "Fetch the supported-parameter detail (requires credentials)",
					Default:     false,
				},
			},
		},
		Required: []string{"model_id"},
	}
}

func (q *ProfileQuery) OutputSchema() unit.Schema {
	return unit.Schema{
		Type: "object",
		Properties: map[string]unit.Field{
			"model":      {Name: "model", Schema: unit.Schema{Type: "object"}},
			"endpoints":  {Name: "endpoints", Schema: unit.Schema{Type: "array"}},
			"parameters": {Name: "parameters", Schema: unit.Schema{Type: "array", Items: unit.StringSchema()}},
			"fetched_at": {Name: "fetched_at", Schema: unit.Schema{Type: "number"}},
			"auth_used":  {Name: "auth_used", Schema: unit.Schema{Type: "boolean"}},
		},
	}
}

func (q *ProfileQuery) Examples() []unit.Example {
	return []unit.Example{
		{
			Input:       map[string]any{"model_id": "anthropic/claude-sonnet-4", "include_endpoints": true},
			Description: "Profile a model with its live endpoint list",
		},
	}
}

func (q *ProfileQuery) Execute(ctx context.Context, input any) (any, error) {
	ec := unit.NewExecutionContext(q.events, q.Domain(), q.Name())
	ec.PublishStarted(input)

	inputMap, ok := input.(map[string]any)
	if !ok {
		err := unit.Errorf("invalid input type %T", input)
		ec.PublishFailed(err)
		return nil, err
	}
	if err := validateInput(q.InputSchema(), inputMap); err != nil {
		ec.PublishFailed(err)
		return nil, err
	}

	modelID, _ := inputMap["model_id"].(string)
	if modelID == "" {
		err := unit.Errorf("model_id must be a non-empty string")
		ec.PublishFailed(err)
		return nil, err
	}
	includeEndpoints, _ := inputMap["include_endpoints"].(bool)
	includeParameters, _ := inputMap["include_parameters"].(bool)

	snapshot, status, err := q.cache.Ensure(ctx, q.client, false)
	if err != nil {
		ec.PublishFailed(err)
		return nil, err
	}

	model := findModel(snapshot, modelID)
	if model == nil {
		err := unit.NewErrorWithDetails(unit.ErrCodeInvalidInput,
			"model not found in catalog", map[string]any{"model_id": modelID})
		ec.PublishFailed(err)
		return nil, err
	}

	authUsed := q.client.HasAuth()
	result := map[string]any{
		"model":      model,
		"fetched_at": status.FetchedAt,
		"auth_used":  authUsed,
	}

	if includeEndpoints {
		endpoints, err := q.client.ListEndpoints(ctx, modelID)
		if err != nil {
			ec.PublishFailed(err)
			return nil, err
		}
		result["endpoints"] = endpoints.Endpoints
	}

	if includeParameters {
		parameters, err := q.client.ListParameters(ctx, modelID)
		if err != nil {
			ec.PublishFailed(err)
			return nil, err
		}
		result["parameters"] = parameters.Parameters
	}

	ec.PublishCompleted(result)
	return result, nil
}

// findModel resolves an identifier against the snapshot, first exactly,
// then by base ID so a variant-qualified request still matches.
func findModel(s *Snapshot, modelID string) *openrouter.Model {
	for i := range s.Models {
		if s.Models[i].ID == modelID {
			return &s.Models[i]
		}
	}
	base := BaseID(modelID)
	if base == modelID {
		return nil
	}
	for i := range s.Models {
		if s.Models[i].ID == base {
			return &s.Models[i]
		}
	}
	return nil
}
