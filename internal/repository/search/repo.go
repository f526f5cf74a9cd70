package search

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/fuzalab/fuza/internal/db"
	"github.com/fuzalab/fuza/internal/domain"
	"github.com/fuzalab/fuza/internal/domain/hit"
)

// store is the consumer interface for ranked queries.
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	SearchText(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
}

// Repo runs the two independent ranked queries the fusion step consumes.
type Repo struct {
	store store
}

// New creates a search repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// SearchKNN returns the ids nearest to vector by cosine distance, rank 1
// first. Reported scores are similarities (1 - distance, clamped to [0,1]);
// the rank order the engine returned is preserved.
func (r *Repo) SearchKNN(ctx context.Context, collection string, vector []float32, limit int) ([]hit.Ref, error) {
	sr, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName: indexName(collection),
		Vector:    vector,
		K:         limit,
	})
	if err != nil {
		return nil, fmt.Errorf("search knn %s: %w: %w", collection, domain.ErrStoreUnavailable, err)
	}

	return parseRefs(sr, collection, true)
}

// SearchLexical returns the ids ranked by BM25 relevance against the query
// text, rank 1 first (highest relevance).
func (r *Repo) SearchLexical(ctx context.Context, collection, query string, limit int) ([]hit.Ref, error) {
	sr, err := r.store.SearchText(ctx, &db.TextQuery{
		IndexName: indexName(collection),
		Query:     query,
		TopK:      limit,
	})
	if err != nil {
		return nil, fmt.Errorf("search lexical %s: %w: %w", collection, domain.ErrStoreUnavailable, err)
	}

	return parseRefs(sr, collection, false)
}

// parseRefs converts a db.SearchResult into ordered id refs.
func parseRefs(sr *db.SearchResult, collection string, distanceScores bool) ([]hit.Ref, error) {
	if sr == nil || sr.Total == 0 {
		return nil, nil
	}

	prefix := fmt.Sprintf("%s%s:", domain.KeyPrefix, collection)
	refs := make([]hit.Ref, 0, len(sr.Entries))

	for _, entry := range sr.Entries {
		id, err := strconv.ParseInt(strings.TrimPrefix(entry.Key, prefix), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed point key %q: %w", entry.Key, err)
		}

		score := entry.Score
		if distanceScores {
			score = max(0, 1.0-score) // cosine distance → similarity
		}
		refs = append(refs, hit.Ref{ID: id, Score: score})
	}

	return refs, nil
}

func indexName(collection string) string {
	return fmt.Sprintf("%s%s:idx", domain.KeyPrefix, collection)
}
