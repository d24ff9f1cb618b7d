package catalog

import (
	"math"
	"strconv"
	"testing"
	"time"

	"github.com/modelscout/modelscout/pkg/infra/provider/openrouter"
)

func TestPromptPricePerM(t *testing.T) {
	m := &openrouter.Model{Pricing: openrouter.Pricing{Prompt: "0.000003"}}
	price, ok := PromptPricePerM(m)
	if !ok {
		t.Fatal("expected known price")
	}
	if price < 2.999 || price > 3.001 {
		t.Errorf("expected ~3.0 per 1M, got %v", price)
	}
}

func TestPerMillionRoundTrip(t *testing.T) {
	prices := []string{
		"0.000003",
		"0.000015",
		"0.00000015",
		"0.0000006",
		"0.0001",
		"0",
		"0.000001875",
	}

	for _, raw := range prices {
		t.Run(raw, func(t *testing.T) {
			want, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				t.Fatalf("fixture price %q does not parse: %v", raw, err)
			}

			scaled, ok := perMillion(raw)
			if !ok {
				t.Fatalf("perMillion(%q) reported unknown", raw)
			}

			got := scaled / 1_000_000
			if diff := math.Abs(got - want); diff > 1e-15 {
				t.Errorf("round trip of %q drifted by %v (got %v, want %v)", raw, diff, got, want)
			}
		})
	}
}

func TestPromptPricePerM_Unknown(t *testing.T) {
	cases := map[string]string{
		"empty":     "",
		"malformed": "n/a",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			m := &openrouter.Model{Pricing: openrouter.Pricing{Prompt: raw}}
			if _, ok := PromptPricePerM(m); ok {
				t.Errorf("expected unknown price for %q", raw)
			}
		})
	}
}

func TestCompletionPricePerM(t *testing.T) {
	m := &openrouter.Model{Pricing: openrouter.Pricing{Completion: "0.000015"}}
	price, ok := CompletionPricePerM(m)
	if !ok || price < 14.999 || price > 15.001 {
		t.Errorf("expected ~15.0 per 1M, got %v ok=%v", price, ok)
	}
}

func TestRequestPrice_NoScaling(t *testing.T) {
	m := &openrouter.Model{Pricing: openrouter.Pricing{Request: "0.04"}}
	price, ok := RequestPrice(m)
	if !ok {
		t.Fatal("expected known request price")
	}
	if price != 0.04 {
		t.Errorf("expected flat 0.04, got %v", price)
	}
}

func TestBlendedPricePerM(t *testing.T) {
	m := &openrouter.Model{Pricing: openrouter.Pricing{Prompt: "0.000003", Completion: "0.000015"}}
	price, ok := BlendedPricePerM(m)
	if !ok || price < 17.999 || price > 18.001 {
		t.Errorf("expected ~18.0 blended, got %v ok=%v", price, ok)
	}
}

func TestBlendedPricePerM_OneSideKnown(t *testing.T) {
	m := &openrouter.Model{Pricing: openrouter.Pricing{Prompt: "0.000002"}}
	price, ok := BlendedPricePerM(m)
	if !ok {
		t.Fatal("one known component should still blend")
	}
	if price < 1.999 || price > 2.001 {
		t.Errorf("expected ~2.0, got %v", price)
	}
}

func TestBlendedPricePerM_BothUnknown(t *testing.T) {
	m := &openrouter.Model{}
	if _, ok := BlendedPricePerM(m); ok {
		t.Error("expected unknown blended price")
	}
}

func TestIsFree(t *testing.T) {
	free := &openrouter.Model{Pricing: openrouter.Pricing{Prompt: "0", Completion: "0"}}
	if !IsFree(free) {
		t.Error("expected zero-priced model to be free")
	}

	paid := &openrouter.Model{Pricing: openrouter.Pricing{Prompt: "0", Completion: "0.000001"}}
	if IsFree(paid) {
		t.Error("expected nonzero completion price to not be free")
	}

	unknown := &openrouter.Model{Pricing: openrouter.Pricing{Prompt: "0"}}
	if IsFree(unknown) {
		t.Error("unknown completion price must not count as free")
	}
}

func TestAgeDays(t *testing.T) {
	now := time.UnixMilli(1_756_339_200_000)
	created := now.Add(-10 * 24 * time.Hour).Unix()

	m := &openrouter.Model{Created: created}
	days, known := AgeDays(m, now)
	if !known {
		t.Fatal("expected known age")
	}
	if days != 10 {
		t.Errorf("expected 10 days, got %d", days)
	}
}

func TestAgeDays_Unknown(t *testing.T) {
	m := &openrouter.Model{}
	if _, known := AgeDays(m, time.Now()); known {
		t.Error("zero creation timestamp must be unknown")
	}
}

func TestAgeDays_FutureClampsToZero(t *testing.T) {
	now := time.Now()
	m := &openrouter.Model{Created: now.Add(time.Hour).Unix()}
	days, known := AgeDays(m, now)
	if !known || days != 0 {
		t.Errorf("expected age 0 for future timestamp, got %d known=%v", days, known)
	}
}

func TestModalitySplit(t *testing.T) {
	inputs, outputs := ModalitySplit("text+image->text")
	if len(inputs) != 2 || inputs[0] != "text" || inputs[1] != "image" {
		t.Errorf("unexpected inputs: %v", inputs)
	}
	if len(outputs) != 1 || outputs[0] != "text" {
		t.Errorf("unexpected outputs: %v", outputs)
	}
}

func TestModalitySplit_NoArrow(t *testing.T) {
	inputs, outputs := ModalitySplit("multimodal")
	if len(inputs) != 1 || inputs[0] != "multimodal" {
		t.Errorf("unexpected inputs: %v", inputs)
	}
	if len(outputs) != 0 {
		t.Errorf("expected no outputs, got %v", outputs)
	}
}

func TestModalitySplit_MixedDelimiters(t *testing.T) {
	inputs, _ := ModalitySplit("Text, Image/Audio->text")
	want := []string{"text", "image", "audio"}
	if len(inputs) != len(want) {
		t.Fatalf("expected %v, got %v", want, inputs)
	}
	for i := range want {
		if inputs[i] != want[i] {
			t.Errorf("token %d: expected %q, got %q", i, want[i], inputs[i])
		}
	}
}

func TestProviderPrefix(t *testing.T) {
	if got := ProviderPrefix("Anthropic/claude-sonnet-4"); got != "anthropic" {
		t.Errorf("expected anthropic, got %q", got)
	}
	if got := ProviderPrefix("standalone"); got != "standalone" {
		t.Errorf("expected standalone, got %q", got)
	}
}

func TestBaseID(t *testing.T) {
	if got := BaseID("meta-llama/llama-3-70b:free"); got != "meta-llama/llama-3-70b" {
		t.Errorf("expected variant stripped, got %q", got)
	}
	if got := BaseID("meta-llama/llama-3-70b"); got != "meta-llama/llama-3-70b" {
		t.Errorf("expected identity, got %q", got)
	}
}

func TestHasParameters(t *testing.T) {
	m := &openrouter.Model{SupportedParameters: []string{"tools", "temperature", "response_format"}}

	if !HasParameters(m, nil) {
		t.Error("no requirements always passes")
	}
	if !HasParameters(m, []string{"Tools", "TEMPERATURE"}) {
		t.Error("matching must be case insensitive")
	}
	if HasParameters(m, []string{"tools", "logprobs"}) {
		t.Error("one missing parameter fails the whole set")
	}
}

func TestParameterCoverage(t *testing.T) {
	m := &openrouter.Model{SupportedParameters: []string{"tools", "temperature"}}

	if got := ParameterCoverage(m, nil); got != 1 {
		t.Errorf("expected 1 with no requirements, got %v", got)
	}
	if got := ParameterCoverage(m, []string{"tools", "logprobs"}); got != 0.5 {
		t.Errorf("expected 0.5, got %v", got)
	}
	if got := ParameterCoverage(m, []string{"seed"}); got != 0 {
		t.Errorf("expected 0, got %v", got)
	}
}
