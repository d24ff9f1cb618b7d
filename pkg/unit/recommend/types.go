// Package recommend implements the recommendation pipeline: hard
// constraint filtering, ranking (ordinal or weighted), semantic
// matching over description embeddings, and shortlist assembly.
package recommend

import (
	"fmt"

	"github.com/modelscout/modelscout/pkg/unit"
)

// Ranking strategies.
const (
	StrategyOrdinal  = "ordinal"
	StrategyWeighted = "weighted"
)

// Routing preferences for provider sort hints.
const (
	RoutingPrice      = "price"
	RoutingThroughput = "throughput"
	RoutingLatency    = "latency"
)

// Verbosity shapes. Exactly one applies per response.
const (
	VerbosityIDs      = "ids"
	VerbosityCompact  = "compact"
	VerbosityStandard = "standard"
	VerbosityRaw      = "raw"
)

const (
	DefaultLimit      = 5
	DefaultMaxAgeDays = 365
)

// Constraints are hard dealbreakers: violating any active one removes
// the model from consideration. Nil pointer fields are inactive.
type Constraints struct {
	MinContext         int
	InputModalities    []string
	OutputModalities   []string
	MaxPromptPrice     *float64 // per 1M tokens
	MaxCompletionPrice *float64 // per 1M tokens
	MaxRequestPrice    *float64 // absolute per request
	RequiredParameters []string
	MinAgeDays         *int
	MaxAgeDays         *int
	ExcludeFree        bool
	Providers          []string
}

// Weights of the weighted-composite strategy, normalized sub-scores in
// [0,1] each.
type Weights struct {
	Semantic   float64 `json:"semantic"`
	Price      float64 `json:"price"`
	Parameters float64 `json:"parameters"`
	Recency    float64 `json:"recency"`
	Context    float64 `json:"context"`
}

func DefaultWeights() Weights {
	return Weights{
		Semantic:   0.35,
		Price:      0.20,
		Parameters: 0.25,
		Recency:    0.10,
		Context:    0.10,
	}
}

// Preferences shift ranking without excluding models.
type Preferences struct {
	Strategy             string
	Routing              string
	PreferNewer          bool
	MinAgeDays           int // soft preference, distinct from the hard constraint
	TargetContext        int
	TargetPrice          float64 // per-1M blended target; 0 derives from the catalog
	Weights              Weights
	PreferExactoForTools bool
}

// Options shape the response.
type Options struct {
	Limit          int
	Verbosity      string
	ForceRefresh   bool
	CheckEndpoints bool
	SkipSkeleton   bool
}

// TaskSpec is the full recommendation request.
type TaskSpec struct {
	Task        string
	Constraints Constraints
	Preferences Preferences
	Options     Options
}

// ParseTaskSpec builds a TaskSpec from the tool-call input map,
// applying every default. Schema validation has already rejected
// unknown fields and type mismatches by the time this runs.
func ParseTaskSpec(input map[string]any) (*TaskSpec, error) {
	task, _ := input["task"].(string)
	if task == "" {
		return nil, unit.Errorf("task must be a non-empty string")
	}

	spec := &TaskSpec{
		Task: task,
		Preferences: Preferences{
			Strategy: StrategyWeighted,
			Routing:  RoutingPrice,
			Weights:  DefaultWeights(),
		},
		Options: Options{
			Limit:     DefaultLimit,
			Verbosity: VerbosityCompact,
		},
	}

	if raw, ok := input["constraints"]; ok {
		m, ok := raw.(map[string]any)
		if !ok {
			return nil, unit.Errorf("constraints must be an object")
		}
		if err := parseConstraints(m, &spec.Constraints); err != nil {
			return nil, err
		}
	}

	if raw, ok := input["preferences"]; ok {
		m, ok := raw.(map[string]any)
		if !ok {
			return nil, unit.Errorf("preferences must be an object")
		}
		if err := parsePreferences(m, &spec.Preferences); err != nil {
			return nil, err
		}
	}

	if raw, ok := input["options"]; ok {
		m, ok := raw.(map[string]any)
		if !ok {
			return nil, unit.Errorf("options must be an object")
		}
		if err := parseOptions(m, &spec.Options); err != nil {
			return nil, err
		}
	}

	return spec, nil
}

func parseConstraints(m map[string]any, c *Constraints) error {
	c.MinContext = intField(m, "min_context")
	c.InputModalities = stringsField(m, "input_modalities")
	c.OutputModalities = stringsField(m, "output_modalities")
	c.MaxPromptPrice = floatPtrField(m, "max_prompt_price")
	c.MaxCompletionPrice = floatPtrField(m, "max_completion_price")
	c.MaxRequestPrice = floatPtrField(m, "max_request_price")
	c.RequiredParameters = stringsField(m, "required_parameters")
	c.MinAgeDays = intPtrField(m, "min_age_days")
	c.MaxAgeDays = intPtrField(m, "max_age_days")
	c.ExcludeFree, _ = m["exclude_free"].(bool)
	c.Providers = stringsField(m, "providers")
	return nil
}

func parsePreferences(m map[string]any, p *Preferences) error {
	if v, ok := m["strategy"].(string); ok && v != "" {
		switch v {
		case StrategyOrdinal, StrategyWeighted:
			p.Strategy = v
		default:
			return unit.Errorf("unknown strategy %q", v)
		}
	}
	if v, ok := m["routing"].(string); ok && v != "" {
		switch v {
		case RoutingPrice, RoutingThroughput, RoutingLatency:
			p.Routing = v
		default:
			return unit.Errorf("unknown routing preference %q", v)
		}
	}
	p.PreferNewer, _ = m["prefer_newer"].(bool)
	p.MinAgeDays = intField(m, "min_age_days")
	p.TargetContext = intField(m, "target_context")
	p.TargetPrice = floatField(m, "target_price")
	p.PreferExactoForTools, _ = m["prefer_exacto_for_tools"].(bool)

	if raw, ok := m["weights"]; ok {
		wm, ok := raw.(map[string]any)
		if !ok {
			return unit.Errorf("weights must be an object")
		}
		if v, ok := numeric(wm["semantic"]); ok {
			p.Weights.Semantic = v
		}
		if v, ok := numeric(wm["price"]); ok {
			p.Weights.Price = v
		}
		if v, ok := numeric(wm["parameters"]); ok {
			p.Weights.Parameters = v
		}
		if v, ok := numeric(wm["recency"]); ok {
			p.Weights.Recency = v
		}
		if v, ok := numeric(wm["context"]); ok {
			p.Weights.Context = v
		}
	}
	return nil
}

func parseOptions(m map[string]any, o *Options) error {
	if v := intField(m, "limit"); v > 0 {
		o.Limit = v
	}
	if v, ok := m["verbosity"].(string); ok && v != "" {
		switch v {
		case VerbosityIDs, VerbosityCompact, VerbosityStandard, VerbosityRaw:
			o.Verbosity = v
		default:
			return unit.Errorf("unknown verbosity %q", v)
		}
	}
	o.ForceRefresh, _ = m["force_refresh"].(bool)
	o.CheckEndpoints, _ = m["check_endpoints"].(bool)
	if v, ok := m["include_skeleton"].(bool); ok {
		o.SkipSkeleton = !v
	}
	return nil
}

// numeric coerces JSON numbers (and Go ints from in-process callers).
func numeric(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func intField(m map[string]any, key string) int {
	if v, ok := numeric(m[key]); ok {
		return int(v)
	}
	return 0
}

func intPtrField(m map[string]any, key string) *int {
	if v, ok := numeric(m[key]); ok {
		i := int(v)
		return &i
	}
	return nil
}

func floatField(m map[string]any, key string) float64 {
	if v, ok := numeric(m[key]); ok {
		return v
	}
	return 0
}

func floatPtrField(m map[string]any, key string) *float64 {
	if v, ok := numeric(m[key]); ok {
		return &v
	}
	return nil
}

func stringsField(m map[string]any, key string) []string {
	raw, ok := m[key]
	if !ok {
		return nil
	}
	switch vs := raw.(type) {
	case []string:
		return vs
	case []any:
		out := make([]string, 0, len(vs))
		for _, v := range vs {
			if s, ok := v.(string); ok {
				out = append(out, s)
			} else {
				out = append(out, fmt.Sprint(v))
			}
		}
		return out
	default:
		return nil
	}
}
