// Package query answers a user query with the top-K documents by a fused
// ranking of vector similarity and lexical relevance.
package query

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/fuzalab/fuza/internal/domain"
	"github.com/fuzalab/fuza/internal/domain/hit"
)

// Params is the query engine configuration. SemanticWeight and
// LexicalWeight need not sum to 1: RRF's denominator damping makes the
// ratio matter, not the absolute scale.
type Params struct {
	Collection     string
	SemanticWeight float64
	LexicalWeight  float64
	RRFK           int
	TopK           int
	Prefetch       int // sub-list depth; floored at TopK
}

// Service is the hybrid query engine. Stateless between queries.
type Service struct {
	vec    VectorSearcher
	lex    LexicalSearcher
	embed  Embedder
	params Params
}

// New creates a query service.
func New(vec VectorSearcher, lex LexicalSearcher, embed Embedder, params Params) *Service {
	if params.RRFK <= 0 {
		params.RRFK = DefaultRRFK
	}
	if params.Prefetch < params.TopK {
		params.Prefetch = params.TopK
	}
	return &Service{vec: vec, lex: lex, embed: embed, params: params}
}

// Search embeds the query, runs the semantic and lexical sub-queries
// concurrently, and fuses their ranked results. Embedding failure aborts
// the query: there is no lexical-only fallback.
func (s *Service) Search(ctx context.Context, query string) ([]hit.Hit, error) {
	if strings.TrimSpace(query) == "" {
		return nil, domain.ErrInvalidQuery
	}

	embRes, err := s.embed.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("vectorize query: %w", err)
	}
	if embRes.Empty() {
		return nil, fmt.Errorf("vectorize query: %w", domain.ErrNoQueryEmbedding)
	}

	// The two sub-queries are independent reads; fusion needs both but they
	// do not need each other.
	var (
		wg               sync.WaitGroup
		semRefs, lexRefs []hit.Ref
		semErr, lexErr   error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		semRefs, semErr = s.vec.SearchKNN(ctx, s.params.Collection, embRes.Embedding, s.params.Prefetch)
	}()
	go func() {
		defer wg.Done()
		lexRefs, lexErr = s.lex.SearchLexical(ctx, s.params.Collection, query, s.params.Prefetch)
	}()
	wg.Wait()

	if semErr != nil {
		return nil, fmt.Errorf("semantic query: %w", semErr)
	}
	if lexErr != nil {
		return nil, fmt.Errorf("lexical query: %w", lexErr)
	}

	fusedHits := fuseRRF(
		semRefs, lexRefs,
		s.params.SemanticWeight, s.params.LexicalWeight,
		s.params.RRFK, s.params.TopK,
	)
	return fusedHits, nil
}
