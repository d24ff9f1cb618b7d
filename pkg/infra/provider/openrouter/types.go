package openrouter

// Model is one catalog entry as reported by the upstream /models listing.
// Identifiers follow the provider/slug[:variant] convention.
type Model struct {
	ID                  string       `json:"id"`
	Name                string       `json:"name"`
	Created             int64        `json:"created,omitempty"`
	Description         string       `json:"description,omitempty"`
	ContextLength       int          `json:"context_length"`
	Architecture        Architecture `json:"architecture,omitempty"`
	Pricing             Pricing      `json:"pricing"`
	SupportedParameters []string     `json:"supported_parameters,omitempty"`
	TopProvider         *TopProvider `json:"top_provider,omitempty"`
}

// Pricing values are decimal strings in per-token units.
type Pricing struct {
	Prompt     string `json:"prompt"`
	Completion string `json:"completion"`
	Request    string `json:"request,omitempty"`
	Image      string `json:"image,omitempty"`
}

// Architecture carries the modality declaration, e.g. "text+image->text".
type Architecture struct {
	Modality     string `json:"modality,omitempty"`
	Tokenizer    string `json:"tokenizer,omitempty"`
	InstructType string `json:"instruct_type,omitempty"`
}

type TopProvider struct {
	Name                string `json:"name,omitempty"`
	MaxCompletionTokens int    `json:"max_completion_tokens,omitempty"`
	IsModerated         bool   `json:"is_moderated,omitempty"`
}

// Endpoint is one hosted deployment of a model.
type Endpoint struct {
	Name                string   `json:"name"`
	ProviderName        string   `json:"provider_name"`
	ContextLength       int      `json:"context_length"`
	Pricing             Pricing  `json:"pricing"`
	SupportedParameters []string `json:"supported_parameters,omitempty"`
}

type modelsResponse struct {
	Data []Model `json:"data"`
}

type endpointsResponse struct {
	Data struct {
		ID        string     `json:"id"`
		Endpoints []Endpoint `json:"endpoints"`
	} `json:"data"`
}

type parametersResponse struct {
	Data struct {
		Model               string   `json:"model"`
		SupportedParameters []string `json:"supported_parameters"`
	} `json:"data"`
}

type embeddingsRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingsResponse struct {
	Data []embeddingDatum `json:"data"`
}

type embeddingDatum struct {
	Index     int       `json:"index"`
	Embedding []float64 `json:"embedding"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// ListModelsResult is the catalog listing plus whether the call carried
// credentials (listing works anonymously, so the flag is informational).
type ListModelsResult struct {
	Models   []Model
	AuthUsed bool
}

type ListEndpointsResult struct {
	Endpoints []Endpoint
	AuthUsed  bool
}

type ListParametersResult struct {
	Parameters []string
	AuthUsed   bool
}

// EmbedResult holds one vector per input text, in input order. A nil
// vector means the batch containing that text failed; Err carries the
// first batch error so callers can degrade instead of aborting.
type EmbedResult struct {
	Vectors  [][]float64
	AuthUsed bool
	Err      error
}
