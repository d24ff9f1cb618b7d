package recommend

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/modelscout/modelscout/pkg/infra/provider/openrouter"
	"github.com/modelscout/modelscout/pkg/unit/catalog"
)

// DefaultTargetContext anchors the context sub-score when neither a
// preference nor a min_context constraint supplies a target.
const DefaultTargetContext = 128_000

// scoreTolerance is the composite-score band inside which two models
// are considered tied and the cheaper one wins.
const scoreTolerance = 0.01

// Breakdown holds the weighted strategy's sub-scores, each in [0,1].
type Breakdown struct {
	Semantic   float64 `json:"semantic"`
	Price      float64 `json:"price"`
	Parameters float64 `json:"parameters"`
	Recency    float64 `json:"recency"`
	Context    float64 `json:"context"`
	Total      float64 `json:"total"`
}

// Ranked is one shortlisted model with everything the assembler needs.
type Ranked struct {
	Model          *openrouter.Model
	Similarity     float64
	Breakdown      *Breakdown // nil under the ordinal strategy
	Justifications []string
}

// RankOrdinal orders survivors by a fixed cascade of comparisons:
// required-parameter coverage, then price when routing by price, then
// creation date when newer models are preferred, then context length,
// with the model ID as the final deterministic tiebreak.
func RankOrdinal(survivors []openrouter.Model, spec *TaskSpec) []Ranked {
	ranked := make([]Ranked, len(survivors))
	for i := range survivors {
		ranked[i] = Ranked{Model: &survivors[i]}
	}

	byPrice := spec.Preferences.Routing == RoutingPrice
	required := spec.Constraints.RequiredParameters

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i].Model, ranked[j].Model

		ca := catalog.ParameterCoverage(a, required)
		cb := catalog.ParameterCoverage(b, required)
		if ca != cb {
			return ca > cb
		}

		if byPrice {
			pa, aOK := catalog.BlendedPricePerM(a)
			pb, bOK := catalog.BlendedPricePerM(b)
			if aOK != bOK {
				return aOK
			}
			if aOK && pa != pb {
				return pa < pb
			}
		}

		if spec.Preferences.PreferNewer && a.Created != b.Created {
			return a.Created > b.Created
		}

		if a.ContextLength != b.ContextLength {
			return a.ContextLength > b.ContextLength
		}
		return a.ID < b.ID
	})

	for i := range ranked {
		ranked[i].Justifications = justify(&ranked[i], spec)
	}
	return ranked
}

// RankWeighted scores every survivor with the weighted composite and
// sorts best first. Models whose totals fall within scoreTolerance of
// each other are tied; the cheaper model ranks higher, then the ID.
func RankWeighted(survivors []openrouter.Model, spec *TaskSpec, sims map[string]float64, now time.Time) []Ranked {
	target := priceTarget(survivors, spec)

	ranked := make([]Ranked, len(survivors))
	for i := range survivors {
		m := &survivors[i]
		bd := scoreModel(m, spec, sims[m.ID], target, now)
		ranked[i] = Ranked{Model: m, Similarity: sims[m.ID], Breakdown: bd}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		ti, tj := ranked[i].Breakdown.Total, ranked[j].Breakdown.Total
		if math.Abs(ti-tj) > scoreTolerance {
			return ti > tj
		}
		pi, iOK := catalog.BlendedPricePerM(ranked[i].Model)
		pj, jOK := catalog.BlendedPricePerM(ranked[j].Model)
		if iOK && jOK && pi != pj {
			return pi < pj
		}
		if iOK != jOK {
			return iOK
		}
		if ti != tj {
			return ti > tj
		}
		return ranked[i].Model.ID < ranked[j].Model.ID
	})

	for i := range ranked {
		ranked[i].Justifications = justify(&ranked[i], spec)
	}
	return ranked
}

func scoreModel(m *openrouter.Model, spec *TaskSpec, similarity, priceTarget float64, now time.Time) *Breakdown {
	w := spec.Preferences.Weights
	bd := &Breakdown{
		Semantic:   similarity,
		Price:      scorePrice(m, priceTarget),
		Parameters: catalog.ParameterCoverage(m, spec.Constraints.RequiredParameters),
		Recency:    scoreRecency(m, &spec.Preferences, now),
		Context:    scoreContext(m, spec),
	}

	totalWeight := w.Semantic + w.Price + w.Parameters + w.Recency + w.Context
	if totalWeight <= 0 {
		w = DefaultWeights()
		totalWeight = w.Semantic + w.Price + w.Parameters + w.Recency + w.Context
	}
	bd.Total = (bd.Semantic*w.Semantic +
		bd.Price*w.Price +
		bd.Parameters*w.Parameters +
		bd.Recency*w.Recency +
		bd.Context*w.Context) / totalWeight
	return bd
}

// scorePrice gives 1.0 at or below the target blended price, declining
// linearly to 0 at four times the target. Free models score 1.0 and
// models with no published price score 0.
func scorePrice(m *openrouter.Model, target float64) float64 {
	if catalog.IsFree(m) {
		return 1.0
	}
	price, ok := catalog.BlendedPricePerM(m)
	if !ok {
		return 0
	}
	if target <= 0 {
		return 0
	}
	if price <= target {
		return 1.0
	}
	score := 1.0 - (price-target)/(3*target)
	return math.Max(0, score)
}

// priceTarget resolves the blended per-1M price treated as "cheap
// enough". An explicit preference wins, then the sum of the price
// ceilings, then the median of the survivors' known prices.
func priceTarget(survivors []openrouter.Model, spec *TaskSpec) float64 {
	if spec.Preferences.TargetPrice > 0 {
		return spec.Preferences.TargetPrice
	}

	var ceiling float64
	if spec.Constraints.MaxPromptPrice != nil {
		ceiling += *spec.Constraints.MaxPromptPrice
	}
	if spec.Constraints.MaxCompletionPrice != nil {
		ceiling += *spec.Constraints.MaxCompletionPrice
	}
	if ceiling > 0 {
		return ceiling
	}

	prices := make([]float64, 0, len(survivors))
	for i := range survivors {
		if p, ok := catalog.BlendedPricePerM(&survivors[i]); ok && p > 0 {
			prices = append(prices, p)
		}
	}
	if len(prices) == 0 {
		return 0
	}
	sort.Float64s(prices)
	return prices[len(prices)/2]
}

// scoreRecency favors newer models by default, decaying to 0 over a
// year. A soft minimum-age preference inverts the shape: models older
// than the floor score 1.0, younger ones proportionally less.
func scoreRecency(m *openrouter.Model, p *Preferences, now time.Time) float64 {
	age, known := catalog.AgeDays(m, now)

	if p.MinAgeDays > 0 {
		if !known {
			return neutralSimilarity
		}
		if age >= p.MinAgeDays {
			return 1.0
		}
		return float64(age) / float64(p.MinAgeDays)
	}

	if !known {
		return 0
	}
	return math.Max(0, 1.0-float64(age)/float64(DefaultMaxAgeDays))
}

// scoreContext saturates at 1.0 once the model's window reaches the
// target.
func scoreContext(m *openrouter.Model, spec *TaskSpec) float64 {
	target := spec.Preferences.TargetContext
	if target <= 0 {
		target = spec.Constraints.MinContext
	}
	if target <= 0 {
		target = DefaultTargetContext
	}
	return math.Min(1.0, float64(m.ContextLength)/float64(target))
}

// justify produces short human-readable reasons a model made the list.
func justify(r *Ranked, spec *TaskSpec) []string {
	var out []string
	m := r.Model

	if r.Breakdown != nil && r.Breakdown.Semantic >= 0.7 {
		out = append(out, fmt.Sprintf("strong semantic match for the task (%.2f)", r.Breakdown.Semantic))
	}
	if n := len(spec.Constraints.RequiredParameters); n > 0 {
		if catalog.ParameterCoverage(m, spec.Constraints.RequiredParameters) == 1.0 {
			out = append(out, fmt.Sprintf("supports all %d required parameters", n))
		}
	}
	if r.Breakdown != nil && r.Breakdown.Price >= 0.8 {
		out = append(out, "priced at or near the target budget")
	}
	if catalog.IsFree(m) {
		out = append(out, "free to use")
	}
	if spec.Constraints.MinContext > 0 && m.ContextLength >= 2*spec.Constraints.MinContext {
		out = append(out, fmt.Sprintf("context window of %d comfortably exceeds the minimum", m.ContextLength))
	}
	if len(out) == 0 && r.Breakdown != nil {
		out = append(out, fmt.Sprintf("composite score %.3f", r.Breakdown.Total))
	}
	return out
}
