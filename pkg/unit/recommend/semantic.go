package recommend

import (
	"context"
	"fmt"
	"math"

	"github.com/modelscout/modelscout/pkg/infra/logger"
	"github.com/modelscout/modelscout/pkg/infra/provider/openrouter"
	"github.com/modelscout/modelscout/pkg/unit/catalog"
)

// DefaultEmbeddingModel is used for both the task text and model
// descriptions unless the config overrides it.
const DefaultEmbeddingModel = "openai/text-embedding-3-small"

// neutralSimilarity stands in whenever a vector is unavailable, so a
// missing embedding neither boosts nor buries a model.
const neutralSimilarity = 0.5

// Matcher scores task-to-model affinity by embedding the task text and
// each model's description, then comparing with normalized cosine
// similarity. Model vectors are cached across calls; the task vector
// is computed fresh every time.
type Matcher struct {
	client         catalog.Provider
	vectors        *catalog.EmbeddingCache
	embeddingModel string
}

func NewMatcher(client catalog.Provider, vectors *catalog.EmbeddingCache, embeddingModel string) *Matcher {
	if embeddingModel == "" {
		embeddingModel = DefaultEmbeddingModel
	}
	return &Matcher{client: client, vectors: vectors, embeddingModel: embeddingModel}
}

// Similarities returns one similarity in [0,1] per model ID. When the
// provider has no credential, or the task embedding fails, every model
// gets the neutral score and note explains why. Per-model embedding
// failures degrade to neutral individually.
func (m *Matcher) Similarities(ctx context.Context, task string, models []openrouter.Model) (map[string]float64, string) {
	sims := make(map[string]float64, len(models))

	if !m.client.HasAuth() {
		for i := range models {
			sims[models[i].ID] = neutralSimilarity
		}
		return sims, "semantic scoring skipped: no API credential, using neutral similarity"
	}

	taskResult, err := m.client.Embed(ctx, []string{task}, m.embeddingModel)
	if err != nil || taskResult.Err != nil || len(taskResult.Vectors) == 0 || taskResult.Vectors[0] == nil {
		if err == nil && taskResult != nil {
			err = taskResult.Err
		}
		logger.Component("recommend").Warn("task embedding failed", "error", err)
		for i := range models {
			sims[models[i].ID] = neutralSimilarity
		}
		return sims, "semantic scoring degraded: task embedding failed, using neutral similarity"
	}
	taskVec := taskResult.Vectors[0]

	m.ensureModelVectors(ctx, models)

	misses := 0
	for i := range models {
		vec, ok := m.vectors.Get(models[i].ID)
		if !ok {
			sims[models[i].ID] = neutralSimilarity
			misses++
			continue
		}
		sims[models[i].ID] = Similarity(taskVec, vec)
	}

	note := ""
	if misses > 0 {
		note = fmt.Sprintf("semantic scoring partial: %d models without embeddings scored neutrally", misses)
	}
	return sims, note
}

// ensureModelVectors embeds descriptions for models missing from the
// vector cache and merges the results. Failures are logged, not
// returned; the caller falls back to neutral scores for the gaps.
func (m *Matcher) ensureModelVectors(ctx context.Context, models []openrouter.Model) {
	var missing []openrouter.Model
	for i := range models {
		if _, ok := m.vectors.Get(models[i].ID); !ok {
			missing = append(missing, models[i])
		}
	}
	if len(missing) == 0 {
		return
	}

	texts := make([]string, len(missing))
	for i := range missing {
		texts[i] = descriptionText(&missing[i])
	}

	result, err := m.client.Embed(ctx, texts, m.embeddingModel)
	if err != nil {
		logger.Component("recommend").Warn("model embedding failed", "count", len(missing), "error", err)
		return
	}
	if result.Err != nil {
		logger.Component("recommend").Warn("model embedding partially failed", "count", len(missing), "error", result.Err)
	}

	vectors := make(map[string][]float64, len(missing))
	for i := range missing {
		if i < len(result.Vectors) && result.Vectors[i] != nil {
			vectors[missing[i].ID] = result.Vectors[i]
		}
	}
	if len(vectors) > 0 {
		m.vectors.Merge(vectors)
	}
}

// descriptionText is the canonical embedding input for a model. It must
// stay stable: changing it silently invalidates every cached vector.
func descriptionText(m *openrouter.Model) string {
	return m.ID + "\n" + m.Name + "\n" + m.Description
}

// Similarity is cosine similarity rescaled from [-1,1] to [0,1].
// Mismatched vector lengths and zero-norm vectors yield 0.
func Similarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	cos := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	return (cos + 1) / 2
}
