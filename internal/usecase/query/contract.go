package query

import (
	"context"

	"github.com/fuzalab/fuza/internal/domain"
	"github.com/fuzalab/fuza/internal/domain/hit"
)

// Embedder vectorizes the query text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// VectorSearcher runs the semantic sub-query: nearest neighbors by cosine
// distance, rank 1 first.
type VectorSearcher interface {
	SearchKNN(ctx context.Context, collection string, vector []float32, limit int) ([]hit.Ref, error)
}

// LexicalSearcher runs the lexical sub-query: relevance-ranked text search,
// rank 1 first.
type LexicalSearcher interface {
	SearchLexical(ctx context.Context, collection, query string, limit int) ([]hit.Ref, error)
}
