package domain

import "context"

// Embedder is the shared text vectorization contract between layers.
// An empty Embedding with a nil error means the provider legitimately
// returned nothing; callers decide whether that is fatal.
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

// Empty reports whether the provider returned a zero-length vector.
func (r EmbeddingResult) Empty() bool { return len(r.Embedding) == 0 }
