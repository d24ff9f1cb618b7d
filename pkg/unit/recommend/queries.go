package recommend

import (
	"context"

	"github.com/modelscout/modelscout/pkg/unit"
	"github.com/modelscout/modelscout/pkg/unit/catalog"
)

// Task2ModelQuery is the recommendation entry point: describe a task
// in natural language plus hard constraints and soft preferences, get
// back a ranked shortlist with an exclusion tally.
type Task2ModelQuery struct {
	cache     *catalog.Cache
	client    catalog.Provider
	matcher   *Matcher
	assembler *Assembler
	events    unit.EventPublisher
}

func NewTask2ModelQuery(cache *catalog.Cache, client catalog.Provider, matcher *Matcher) *Task2ModelQuery {
	return &Task2ModelQuery{
		cache:     cache,
		client:    client,
		matcher:   matcher,
		assembler: NewAssembler(client),
	}
}

func NewTask2ModelQueryWithEvents(cache *catalog.Cache, client catalog.Provider, matcher *Matcher, events unit.EventPublisher) *Task2ModelQuery {
	q := NewTask2ModelQuery(cache, client, matcher)
	q.events = events
	return q
}

func (q *Task2ModelQuery) Name() string {
	return "recommend.task2model"
}

func (q *Task2ModelQuery) Domain() string {
	return "recommend"
}

func (q *Task2ModelQuery) Description() string {
	return "Recommend models for a task described in natural language, honoring hard constraints and ranking preferences"
}

func (q *Task2ModelQuery) InputSchema() unit.Schema {
	return unit.Schema{
		Type: "object",
		Properties: map[string]unit.Field{
			"task": {
				Name: "task",
				Schema: unit.Schema{
					Type:        "string",
					Description: "Natural-language description of the work the model will do",
				},
			},
			"constraints": {
				Name: "constraints",
				Schema: unit.Schema{
					Type:        "object",
					Description: "Hard dealbreakers: min_context, input/output_modalities, price ceilings, required_parameters, age bounds, exclude_free, providers",
				},
			},
			"preferences": {
				Name: "preferences",
				Schema: unit.Schema{
					Type:        "object",
					Description: "Soft ranking preferences: strategy, routing, prefer_newer, weights, target_context, target_price, prefer_exacto_for_tools",
				},
			},
			"options": {
				Name: "options",
				Schema: unit.Schema{
					Type:        "object",
					Description: "Response shaping: limit, verbosity, force_refresh, check_endpoints, include_skeleton",
				},
			},
		},
		Required: []string{"task"},
	}
}

func (q *Task2ModelQuery) OutputSchema() unit.Schema {
	return unit.Schema{
		Type: "object",
		Properties: map[string]unit.Field{
			"models":     {Name: "models", Schema: unit.Schema{Type: "array"}},
			"exclusions": {Name: "exclusions", Schema: unit.Schema{Type: "object"}},
			"status":     {Name: "status", Schema: unit.Schema{Type: "object"}},
			"total":      {Name: "total", Schema: unit.Schema{Type: "number"}},
			"note":       {Name: "note", Schema: *unit.StringSchema()},
		},
	}
}

func (q *Task2ModelQuery) Examples() []unit.Example {
	return []unit.Example{
		{
			Input: map[string]any{
				"task": "summarize long legal contracts",
				"constraints": map[string]any{
					"min_context":         200000,
					"required_parameters": []string{"tools"},
				},
				"preferences": map[string]any{"routing": "price"},
			},
			Description: "Cheap tool-capable models with a large context window",
		},
		{
			Input: map[string]any{
				"task":    "quick chat replies",
				"options": map[string]any{"verbosity": "ids", "limit": 3},
			},
			Description: "Just the top three IDs",
		},
	}
}

func (q *Task2ModelQuery) Execute(ctx context.Context, input any) (any, error) {
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

	spec, err := ParseTaskSpec(inputMap)
	if err != nil {
		ec.PublishFailed(err)
		return nil, err
	}

	snapshot, status, err := q.cache.Ensure(ctx, q.client, spec.Options.ForceRefresh)
	if err != nil {
		ec.PublishFailed(err)
		return nil, err
	}

	constraints := spec.Constraints
	if spec.Preferences.Strategy == StrategyWeighted && constraints.MaxAgeDays == nil {
		// Only the semantic strategy assumes stale models are poor
		// matches; ordinal callers see the whole catalog.
		ceiling := DefaultMaxAgeDays
		constraints.MaxAgeDays = &ceiling
	}

	survivors, tally := Filter(snapshot.Models, &constraints, snapshot.FetchedAt)

	var (
		ranked []Ranked
		note   string
	)
	switch spec.Preferences.Strategy {
	case StrategyOrdinal:
		ranked = RankOrdinal(survivors, spec)
	default:
		var sims map[string]float64
		sims, note = q.matcher.Similarities(ctx, spec.Task, survivors)
		ranked = RankWeighted(survivors, spec, sims, snapshot.FetchedAt)
	}

	result, err := q.assembler.Assemble(ctx, ranked, spec, snapshot, status, tally, note)
	if err != nil {
		ec.PublishFailed(err)
		return nil, err
	}

	ec.PublishCompleted(result)
	return result, nil
}

// validateInput mirrors the catalog units: schema failures come back
// in the INVALID_INPUT envelope.
func validateInput(schema unit.Schema, input map[string]any) error {
	if input == nil {
		input = map[string]any{}
	}
	if err := schema.Validate(input); err != nil {
		return unit.NewErrorWithDetails(unit.ErrCodeInvalidInput, "input validation failed", err.Error())
	}
	return nil
}
