package collection

import (
	"fmt"
	"regexp"
	"time"
)

var nameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// DistanceCosine is the only distance metric this system declares.
const DistanceCosine = "cosine"

// Collection is a named, dimensionally-fixed point container (immutable
// value object). Its dim is set once at creation and must equal the length
// of every vector ever upserted into it.
type Collection struct {
	name      string
	dim       int
	distance  string
	createdAt int64
}

// New validates and creates a Collection.
// Name: ^[a-zA-Z0-9_-]+$, 1-64 chars. Dim must be positive.
func New(name string, dim int) (Collection, error) {
	if err := validateName(name); err != nil {
		return Collection{}, err
	}
	if dim <= 0 {
		return Collection{}, fmt.Errorf("vector dimension must be positive, got %d", dim)
	}

	return Collection{
		name:      name,
		dim:       dim,
		distance:  DistanceCosine,
		createdAt: time.Now().UnixMilli(),
	}, nil
}

// Reconstruct creates a Collection without validation (storage hydration).
func Reconstruct(name string, dim int, distance string, createdAt int64) Collection {
	return Collection{name: name, dim: dim, distance: distance, createdAt: createdAt}
}

// Name returns the collection name.
func (c *Collection) Name() string { return c.name }

// Dim returns the declared vector dimension.
func (c *Collection) Dim() int { return c.dim }

// Distance returns the declared distance metric.
func (c *Collection) Distance() string { return c.distance }

// CreatedAt returns the creation timestamp in unix milliseconds.
func (c *Collection) CreatedAt() int64 { return c.createdAt }

func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("collection name is required")
	}
	if len(name) > 64 {
		return fmt.Errorf("collection name too long (max 64)")
	}
	if !nameRegex.MatchString(name) {
		return fmt.Errorf("collection name must be alphanumeric with underscores and hyphens")
	}
	return nil
}
