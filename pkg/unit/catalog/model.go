package catalog

import (
	"strconv"
	"strings"
	"time"

	"github.com/modelscout/modelscout/pkg/infra/provider/openrouter"
)

// perMillion converts a per-token decimal price string into per-1M-token
// units. Unknown or malformed prices come back as (0, false).
func perMillion(price string) (float64, bool) {
	if price == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(price, 64)
	if err != nil {
		return 0, false
	}
	return v * 1_000_000, true
}

// PromptPricePerM returns the per-1M prompt price.
func PromptPricePerM(m *openrouter.Model) (float64, bool) {
	return perMillion(m.Pricing.Prompt)
}

// CompletionPricePerM returns the per-1M completion price.
func CompletionPricePerM(m *openrouter.Model) (float64, bool) {
	return perMillion(m.Pricing.Completion)
}

// RequestPrice returns the flat per-request price, already in absolute
// units upstream (no per-1M scaling applies).
func RequestPrice(m *openrouter.Model) (float64, bool) {
	if m.Pricing.Request == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m.Pricing.Request, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// BlendedPricePerM is prompt + completion per 1M tokens; ok is false
// when neither component is known.
func BlendedPricePerM(m *openrouter.Model) (float64, bool) {
	prompt, pOK := PromptPricePerM(m)
	completion, cOK := CompletionPricePerM(m)
	if !pOK && !cOK {
		return 0, false
	}
	return prompt + completion, true
}

// IsFree reports whether both token prices are literally zero.
func IsFree(m *openrouter.Model) bool {
	prompt, pOK := PromptPricePerM(m)
	completion, cOK := CompletionPricePerM(m)
	return pOK && cOK && prompt == 0 && completion == 0
}

// AgeDays returns the model age in whole days. known is false when the
// creation timestamp is absent; such models are treated as infinitely
// old by the filters.
func AgeDays(m *openrouter.Model, now time.Time) (int, bool) {
	if m.Created <= 0 {
		return 0, false
	}
	ms := now.UnixMilli() - m.Created*1000
	if ms < 0 {
		return 0, true
	}
	return int(ms / 86_400_000), true
}

// ModalitySplit parses an architecture modality string such as
// "text+image->text" into its input and output lists. Tokens may be
// delimited by '+', '/' or ','.
func ModalitySplit(modality string) (inputs, outputs []string) {
	parts := strings.SplitN(modality, "->", 2)
	inputs = splitModalityTokens(parts[0])
	if len(parts) == 2 {
		outputs = splitModalityTokens(parts[1])
	}
	return inputs, outputs
}

func splitModalityTokens(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == '+' || r == '/' || r == ','
	})
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.ToLower(strings.TrimSpace(f))
		if f != "" {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// ProviderPrefix returns the slash-prefix of a model identifier,
// lowercased ("anthropic/claude-sonnet" -> "anthropic").
func ProviderPrefix(modelID string) string {
	if idx := strings.Index(modelID, "/"); idx >= 0 {
		return strings.ToLower(modelID[:idx])
	}
	return strings.ToLower(modelID)
}

// BaseID strips a :variant suffix from a model identifier.
func BaseID(modelID string) string {
	if idx := strings.Index(modelID, ":"); idx >= 0 {
		return modelID[:idx]
	}
	return modelID
}

// HasParameters reports whether the model supports every required
// parameter.
func HasParameters(m *openrouter.Model, required []string) bool {
	if len(required) == 0 {
		return true
	}
	supported := make(map[string]bool, len(m.SupportedParameters))
	for _, p := range m.SupportedParameters {
		supported[strings.ToLower(p)] = true
	}
	for _, p := range required {
		if !supported[strings.ToLower(p)] {
			return false
		}
	}
	return true
}

// ParameterCoverage is the matched/requested ratio, 1 when nothing was
// requested.
func ParameterCoverage(m *openrouter.Model, required []string) float64 {
	if len(required) == 0 {
		return 1
	}
	supported := make(map[string]bool, len(m.SupportedParameters))
	for _, p := range m.SupportedParameters {
		supported[strings.ToLower(p)] = true
	}
	matched := 0
	for _, p := range required {
		if supported[strings.ToLower(p)] {
			matched++
		}
	}
	return float64(matched) / float64(len(required))
}
