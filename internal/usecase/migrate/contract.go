package migrate

import (
	"context"

	"github.com/fuzalab/fuza/internal/domain"
	domcol "github.com/fuzalab/fuza/internal/domain/collection"
	"github.com/fuzalab/fuza/internal/domain/document"
	dompoint "github.com/fuzalab/fuza/internal/domain/point"
)

// Source supplies the corpus: an ordered, finite document sequence.
type Source interface {
	Load(ctx context.Context) ([]document.Document, error)
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// CollectionStore manages collection lifecycle for the destroy-and-recreate
// policy.
type CollectionStore interface {
	Exists(ctx context.Context, name string) (bool, error)
	Delete(ctx context.Context, name string) error
	Create(ctx context.Context, col domcol.Collection) error
}

// PointWriter upserts one batch of points as a single atomic store call.
type PointWriter interface {
	BatchUpsert(ctx context.Context, collection string, dim int, points []dompoint.Point) error
}
