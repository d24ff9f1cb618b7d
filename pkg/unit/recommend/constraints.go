package recommend

import (
	"strings"
	"time"

	"github.com/modelscout/modelscout/pkg/infra/provider/openrouter"
	"github.com/modelscout/modelscout/pkg/unit/catalog"
)

// Reason identifies the first constraint a model failed. Evaluation
// order is fixed so that the exclusion tally is deterministic.
type Reason string

const (
	ReasonContextTooSmall      Reason = "context_too_small"
	ReasonMissingInputMods     Reason = "missing_input_modalities"
	ReasonMissingOutputMods    Reason = "missing_output_modalities"
	ReasonPriceAboveMax        Reason = "price_above_max"
	ReasonMissingRequiredParam Reason = "missing_required_parameters"
	ReasonTooNew               Reason = "too_new"
	ReasonFreeModel            Reason = "free_model"
	ReasonProviderNotAllowed   Reason = "provider_not_allowed"
	ReasonTooOld               Reason = "too_old"
)

// Tally counts exclusions by first failing reason. Survivors plus the
// sum of all tally entries always equals the catalog size.
type Tally map[Reason]int

func (t Tally) add(r Reason) { t[r]++ }

// Total is the number of excluded models.
func (t Tally) Total() int {
	n := 0
	for _, c := range t {
		n += c
	}
	return n
}

// Evaluate checks one model against the hard constraints. It returns
// ok=false with the first failing reason in the canonical order.
func Evaluate(m *openrouter.Model, c *Constraints, now time.Time) (bool, Reason) {
	if c.MinContext > 0 && m.ContextLength < c.MinContext {
		return false, ReasonContextTooSmall
	}

	inMods, outMods := catalog.ModalitySplit(m.Architecture.Modality)
	if !containsAll(inMods, c.InputModalities) {
		return false, ReasonMissingInputMods
	}
	if !containsAll(outMods, c.OutputModalities) {
		return false, ReasonMissingOutputMods
	}

	if failsPrice(m, c) {
		return false, ReasonPriceAboveMax
	}

	if !catalog.HasParameters(m, c.RequiredParameters) {
		return false, ReasonMissingRequiredParam
	}

	age, known := catalog.AgeDays(m, now)
	if c.MinAgeDays != nil && known && age < *c.MinAgeDays {
		return false, ReasonTooNew
	}

	if c.ExcludeFree && catalog.IsFree(m) {
		return false, ReasonFreeModel
	}

	if len(c.Providers) > 0 && !containsFold(c.Providers, catalog.ProviderPrefix(m.ID)) {
		return false, ReasonProviderNotAllowed
	}

	if c.MaxAgeDays != nil && known && age > *c.MaxAgeDays {
		return false, ReasonTooOld
	}

	return true, ""
}

// Filter applies Evaluate across the whole catalog, returning the
// surviving models and the exclusion tally.
func Filter(models []openrouter.Model, c *Constraints, now time.Time) ([]openrouter.Model, Tally) {
	tally := Tally{}
	survivors := make([]openrouter.Model, 0, len(models))
	for i := range models {
		ok, reason := Evaluate(&models[i], c, now)
		if ok {
			survivors = append(survivors, models[i])
		} else {
			tally.add(reason)
		}
	}
	return survivors, tally
}

func failsPrice(m *openrouter.Model, c *Constraints) bool {
	if c.MaxPromptPrice != nil {
		if p, ok := catalog.PromptPricePerM(m); ok && p > *c.MaxPromptPrice {
			return true
		}
	}
	if c.MaxCompletionPrice != nil {
		if p, ok := catalog.CompletionPricePerM(m); ok && p > *c.MaxCompletionPrice {
			return true
		}
	}
	if c.MaxRequestPrice != nil {
		if p, ok := catalog.RequestPrice(m); ok && p > *c.MaxRequestPrice {
			return true
		}
	}
	return false
}

// containsAll reports whether every wanted entry appears in have,
// case-insensitively. An empty want list always passes.
func containsAll(have, want []string) bool {
	for _, w := range want {
		if !containsFold(have, w) {
			return false
		}
	}
	return true
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
