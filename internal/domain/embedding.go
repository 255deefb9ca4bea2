package domain

import (
	"context"
	"unicode/utf8"
)

// MaxEmbedInputChars is the longest input the embedding provider accepts;
// callers truncate before the API call.
const MaxEmbedInputChars = 8000

// Embedder is the shared text vectorization contract between layers.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// HealthChecker verifies embedding provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// EmbeddingResult carries the embedding vector and token usage.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// TruncateForEmbedding clips text to MaxEmbedInputChars.
func TruncateForEmbedding(text string) string {
	if len(text) <= MaxEmbedInputChars {
		return text
	}
	cut := MaxEmbedInputChars
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}
