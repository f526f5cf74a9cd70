package point

import (
	"context"
	"fmt"

	"github.com/fuzalab/fuza/internal/db"
	"github.com/fuzalab/fuza/internal/domain"
	dompoint "github.com/fuzalab/fuza/internal/domain/point"
)

// store is the consumer interface for point writes.
type store interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
}

// Repo writes points into a collection.
type Repo struct {
	store store
}

// New creates a point repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// BatchUpsert writes one batch of points as a single store call. Every
// vector is checked against the collection dim first, so a mismatched batch
// fails before any bytes reach the store.
func (r *Repo) BatchUpsert(ctx context.Context, collection string, dim int, points []dompoint.Point) error {
	items := make([]db.HashSetItem, len(points))
	for i := range points {
		p := &points[i]
		if len(p.Vector()) != dim {
			return fmt.Errorf("point %d: vector length %d, collection dim %d: %w",
				p.ID(), len(p.Vector()), dim, domain.ErrDimensionMismatch)
		}
		items[i] = db.HashSetItem{
			Key:    pointKey(collection, p.ID()),
			Fields: buildHashFields(p),
		}
	}

	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("upsert %d points: %w", len(points), err)
	}
	return nil
}

func pointKey(collection string, id int64) string {
	return fmt.Sprintf("%s%s:%d", domain.KeyPrefix, collection, id)
}
