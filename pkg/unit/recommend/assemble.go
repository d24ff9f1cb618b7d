package recommend

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/modelscout/modelscout/pkg/infra/provider/openrouter"
	"github.com/modelscout/modelscout/pkg/unit/catalog"
)

// Assembler turns a ranked shortlist into the response envelope at the
// requested verbosity, optionally enriched with a ready-to-send request
// skeleton and a per-endpoint parameter risk check.
type Assembler struct {
	client catalog.Provider
}

func NewAssembler(client catalog.Provider) *Assembler {
	return &Assembler{client: client}
}

// Assemble builds the full task2model response. snapshot is the
// catalog the shortlist was drawn from; it supplies variant lookups
// for skeleton substitution.
func (a *Assembler) Assemble(ctx context.Context, ranked []Ranked, spec *TaskSpec, snapshot *catalog.Snapshot, status catalog.Status, tally Tally, note string) (map[string]any, error) {
	limit := spec.Options.Limit
	if limit > len(ranked) {
		limit = len(ranked)
	}
	top := ranked[:limit]

	var risks map[string][]map[string]any
	if spec.Options.CheckEndpoints && spec.Options.Verbosity != VerbosityIDs {
		var err error
		risks, err = a.endpointRisks(ctx, top, spec.Constraints.RequiredParameters)
		if err != nil {
			return nil, err
		}
	}

	models := make([]any, 0, len(top))
	for i := range top {
		models = append(models, a.shapeModel(&top[i], spec, snapshot, risks))
	}

	out := map[string]any{
		"models":     models,
		"exclusions": tallyMap(tally),
		"status":     status,
		"total":      len(ranked),
	}
	if spec.Options.Verbosity == VerbosityIDs {
		out["price_range"] = priceRange(top)
	}
	if note != "" {
		out["note"] = note
	}
	return out, nil
}

func (a *Assembler) shapeModel(r *Ranked, spec *TaskSpec, snapshot *catalog.Snapshot, risks map[string][]map[string]any) any {
	m := r.Model

	switch spec.Options.Verbosity {
	case VerbosityIDs:
		return m.ID
	case VerbosityRaw:
		return m
	}

	entry := map[string]any{
		"id":         m.ID,
		"context":    m.ContextLength,
		"parameters": m.SupportedParameters,
	}
	if p, ok := catalog.PromptPricePerM(m); ok {
		entry["prompt_per_1m"] = p
	}
	if p, ok := catalog.CompletionPricePerM(m); ok {
		entry["completion_per_1m"] = p
	}
	if age, ok := catalog.AgeDays(m, snapshot.FetchedAt); ok {
		entry["age_days"] = age
	}
	if r.Breakdown != nil {
		entry["score"] = round3(r.Breakdown.Total)
	}

	if spec.Options.Verbosity == VerbosityCompact {
		return entry
	}

	// standard
	entry["name"] = m.Name
	inMods, outMods := catalog.ModalitySplit(m.Architecture.Modality)
	entry["modalities"] = map[string]any{"input": inMods, "output": outMods}
	if len(r.Justifications) > 0 {
		entry["justifications"] = r.Justifications
	}
	if r.Breakdown != nil {
		entry["score_breakdown"] = r.Breakdown
	}
	if !spec.Options.SkipSkeleton {
		entry["request_skeleton"] = buildSkeleton(m, spec, snapshot)
	}
	if risks != nil {
		if risky, ok := risks[m.ID]; ok {
			entry["endpoint_risks"] = risky
		}
	}
	return entry
}

// RequestSkeleton is a copy-pasteable chat-completions request body
// pre-filled with the chosen model and provider routing hints.
type RequestSkeleton struct {
	Model    string            `json:"model"`
	Provider ProviderRouting   `json:"provider"`
	Messages []SkeletonMessage `json:"messages"`
}

type ProviderRouting struct {
	RequireParameters bool   `json:"require_parameters"`
	AllowFallbacks    bool   `json:"allow_fallbacks"`
	Sort              string `json:"sort,omitempty"`
}

type SkeletonMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// buildSkeleton fills the request template. When the task requires
// tool calling, the caller opted in, and the catalog actually lists an
// :exacto variant of the model, the variant ID is substituted for
// stricter tool-call routing.
func buildSkeleton(m *openrouter.Model, spec *TaskSpec, snapshot *catalog.Snapshot) *RequestSkeleton {
	id := m.ID
	if spec.Preferences.PreferExactoForTools &&
		containsFold(spec.Constraints.RequiredParameters, "tools") {
		variant := catalog.BaseID(m.ID) + ":exacto"
		if snapshotHas(snapshot, variant) {
			id = variant
		}
	}

	routing := ProviderRouting{
		RequireParameters: len(spec.Constraints.RequiredParameters) > 0,
		AllowFallbacks:    !spec.Preferences.PreferExactoForTools,
	}
	switch spec.Preferences.Routing {
	case RoutingPrice:
		routing.Sort = "price"
	case RoutingThroughput:
		routing.Sort = "throughput"
	case RoutingLatency:
		routing.Sort = "latency"
	}

	return &RequestSkeleton{
		Model:    id,
		Provider: routing,
		Messages: []SkeletonMessage{{Role: "user", Content: spec.Task}},
	}
}

func snapshotHas(s *catalog.Snapshot, id string) bool {
	if s == nil {
		return false
	}
	for i := range s.Models {
		if s.Models[i].ID == id {
			return true
		}
	}
	return false
}

// endpointRisks fetches per-model endpoint listings concurrently and
// reports, for each model, the hosted endpoints that do not support
// every required parameter. The first fetch error aborts the check.
func (a *Assembler) endpointRisks(ctx context.Context, top []Ranked, required []string) (map[string][]map[string]any, error) {
	risks := make(map[string][]map[string]any, len(top))

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		firstErr error
	)
	for i := range top {
		wg.Add(1)
		go func(m *openrouter.Model) {
			defer wg.Done()
			result, err := a.client.ListEndpoints(ctx, m.ID)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			for _, ep := range result.Endpoints {
				missing := missingParams(ep.SupportedParameters, required)
				if len(missing) > 0 {
					risks[m.ID] = append(risks[m.ID], map[string]any{
						"endpoint": ep.Name,
						"provider": ep.ProviderName,
						"missing":  missing,
					})
				}
			}
		}(top[i].Model)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return risks, nil
}

func missingParams(have, want []string) []string {
	var missing []string
	for _, w := range want {
		if !containsFold(have, w) {
			missing = append(missing, w)
		}
	}
	sort.Strings(missing)
	return missing
}

// priceRange summarizes the shortlist's blended prices for the ids
// shape, where per-model pricing is not shown.
func priceRange(top []Ranked) string {
	var prices []float64
	for i := range top {
		if p, ok := catalog.BlendedPricePerM(top[i].Model); ok {
			prices = append(prices, p)
		}
	}
	if len(prices) == 0 {
		return "pricing unavailable"
	}
	sort.Float64s(prices)
	lo, hi := prices[0], prices[len(prices)-1]
	if lo == hi {
		return fmt.Sprintf("$%.2f per 1M tokens blended", lo)
	}
	return fmt.Sprintf("$%.2f to $%.2f per 1M tokens blended", lo, hi)
}

func tallyMap(t Tally) map[string]int {
	out := make(map[string]int, len(t))
	for r, n := range t {
		out[string(r)] = n
	}
	return out
}

func round3(f float64) float64 {
	return float64(int(f*1000+0.5)) / 1000
}
