package query

import (
	"context"
	"errors"
	"testing"

	"github.com/fuzalab/fuza/internal/domain"
	"github.com/fuzalab/fuza/internal/domain/hit"
)

// --- Mocks ---

type mockEmbedder struct {
	result    domain.EmbeddingResult
	err       error
	callCount int
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.callCount++
	return m.result, m.err
}

type mockVectorSearcher struct {
	refs      []hit.Ref
	err       error
	gotLimit  int
	callCount int
}

func (m *mockVectorSearcher) SearchKNN(_ context.Context, _ string, _ []float32, limit int) ([]hit.Ref, error) {
	m.callCount++
	m.gotLimit = limit
	return m.refs, m.err
}

type mockLexicalSearcher struct {
	refs      []hit.Ref
	err       error
	gotQuery  string
	callCount int
}

func (m *mockLexicalSearcher) SearchLexical(_ context.Context, _, query string, limit int) ([]hit.Ref, error) {
	m.callCount++
	m.gotQuery = query
	return m.refs, m.err
}

func defaultParams() Params {
	return Params{
		Collection:     "documents",
		SemanticWeight: 0.7,
		LexicalWeight:  0.3,
		RRFK:           60,
		TopK:           10,
	}
}

func embedded(vec ...float32) domain.EmbeddingResult {
	return domain.EmbeddingResult{Embedding: vec}
}

func TestSearch_FusesBothLists(t *testing.T) {
	vec := &mockVectorSearcher{refs: []hit.Ref{{ID: 1, Score: 0.9}, {ID: 2, Score: 0.8}}}
	lex := &mockLexicalSearcher{refs: []hit.Ref{{ID: 2, Score: 5.0}, {ID: 3, Score: 4.0}}}
	emb := &mockEmbedder{result: embedded(0.1, 0.2)}

	svc := New(vec, lex, emb, defaultParams())
	hits, err := svc.Search(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if len(hits) != 3 {
		t.Fatalf("expected 3 hits, got %d", len(hits))
	}
	if hits[0].ID() != 2 {
		t.Errorf("expected overlap doc 2 first, got %d", hits[0].ID())
	}
	if vec.callCount != 1 || lex.callCount != 1 {
		t.Errorf("expected one call per searcher, got %d/%d", vec.callCount, lex.callCount)
	}
	if lex.gotQuery != "hello" {
		t.Errorf("lexical searcher got query %q", lex.gotQuery)
	}
}

func TestSearch_EmptyQuery(t *testing.T) {
	for _, q := range []string{"", "   ", "\t\n"} {
		emb := &mockEmbedder{result: embedded(0.1)}
		svc := New(&mockVectorSearcher{}, &mockLexicalSearcher{}, emb, defaultParams())

		_, err := svc.Search(context.Background(), q)
		if !errors.Is(err, domain.ErrInvalidQuery) {
			t.Errorf("query %q: expected ErrInvalidQuery, got %v", q, err)
		}
		if emb.callCount != 0 {
			t.Errorf("query %q: embedder should not be called", q)
		}
	}
}

func TestSearch_EmbedError(t *testing.T) {
	embErr := errors.New("connection refused")
	emb := &mockEmbedder{err: embErr}
	vec := &mockVectorSearcher{}
	svc := New(vec, &mockLexicalSearcher{}, emb, defaultParams())

	_, err := svc.Search(context.Background(), "hello")
	if !errors.Is(err, embErr) {
		t.Fatalf("expected wrapped embed error, got %v", err)
	}
	if vec.callCount != 0 {
		t.Error("sub-queries must not run when embedding fails")
	}
}

func TestSearch_NoQueryEmbedding(t *testing.T) {
	emb := &mockEmbedder{result: domain.EmbeddingResult{}}
	svc := New(&mockVectorSearcher{}, &mockLexicalSearcher{}, emb, defaultParams())

	_, err := svc.Search(context.Background(), "hello")
	if !errors.Is(err, domain.ErrNoQueryEmbedding) {
		t.Fatalf("expected ErrNoQueryEmbedding, got %v", err)
	}
}

func TestSearch_SubQueryErrors(t *testing.T) {
	t.Run("semantic fails", func(t *testing.T) {
		semErr := errors.New("knn down")
		svc := New(
			&mockVectorSearcher{err: semErr},
			&mockLexicalSearcher{refs: []hit.Ref{{ID: 1}}},
			&mockEmbedder{result: embedded(0.1)},
			defaultParams(),
		)
		_, err := svc.Search(context.Background(), "hello")
		if !errors.Is(err, semErr) {
			t.Fatalf("expected semantic error, got %v", err)
		}
	})

	t.Run("lexical fails", func(t *testing.T) {
		lexErr := errors.New("ft down")
		svc := New(
			&mockVectorSearcher{refs: []hit.Ref{{ID: 1}}},
			&mockLexicalSearcher{err: lexErr},
			&mockEmbedder{result: embedded(0.1)},
			defaultParams(),
		)
		_, err := svc.Search(context.Background(), "hello")
		if !errors.Is(err, lexErr) {
			t.Fatalf("expected lexical error, got %v", err)
		}
	})
}

func TestSearch_PrefetchFlooredAtTopK(t *testing.T) {
	vec := &mockVectorSearcher{}
	params := defaultParams()
	params.TopK = 20
	params.Prefetch = 5

	svc := New(vec, &mockLexicalSearcher{}, &mockEmbedder{result: embedded(0.1)}, params)
	if _, err := svc.Search(context.Background(), "hello"); err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if vec.gotLimit != 20 {
		t.Errorf("expected prefetch floored to 20, got %d", vec.gotLimit)
	}
}

func TestNew_DefaultsRRFK(t *testing.T) {
	params := defaultParams()
	params.RRFK = 0
	svc := New(&mockVectorSearcher{}, &mockLexicalSearcher{}, &mockEmbedder{}, params)
	if svc.params.RRFK != DefaultRRFK {
		t.Errorf("expected RRFK default %d, got %d", DefaultRRFK, svc.params.RRFK)
	}
}
