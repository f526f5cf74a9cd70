package migrate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/fuzalab/fuza/internal/domain"
	domcol "github.com/fuzalab/fuza/internal/domain/collection"
	"github.com/fuzalab/fuza/internal/domain/document"
	dompoint "github.com/fuzalab/fuza/internal/domain/point"
	"github.com/fuzalab/fuza/internal/domain/run"
)

// --- Mocks ---

type mockSource struct {
	docs []document.Document
	err  error
}

func (m *mockSource) Load(_ context.Context) ([]document.Document, error) {
	return m.docs, m.err
}

// mockEmbedder maps input text to a canned outcome. Safe for concurrent use.
type mockEmbedder struct {
	mu       sync.Mutex
	vectors  map[string][]float32 // per-text override
	errs     map[string]error     // per-text failure
	dim      int                  // default vector dimension
	received []string
}

func (m *mockEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.received = append(m.received, text)

	if err, ok := m.errs[text]; ok {
		return domain.EmbeddingResult{}, err
	}
	if vec, ok := m.vectors[text]; ok {
		return domain.EmbeddingResult{Embedding: vec}, nil
	}
	vec := make([]float32, m.dim)
	for i := range vec {
		vec[i] = 0.5
	}
	return domain.EmbeddingResult{Embedding: vec}, nil
}

func (m *mockEmbedder) receivedTexts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.received...)
}

type mockCollectionStore struct {
	exists    bool
	existsErr error
	deleteErr error
	createErr error

	deleteCalls int
	createCalls int
	createdCol  domcol.Collection
}

func (m *mockCollectionStore) Exists(_ context.Context, _ string) (bool, error) {
	return m.exists, m.existsErr
}

func (m *mockCollectionStore) Delete(_ context.Context, _ string) error {
	m.deleteCalls++
	return m.deleteErr
}

func (m *mockCollectionStore) Create(_ context.Context, col domcol.Collection) error {
	m.createCalls++
	m.createdCol = col
	return m.createErr
}

type mockPointWriter struct {
	failOnBatch int // 0-based batch index to fail on; -1 never fails
	err         error

	batches [][]dompoint.Point
	gotDim  int
}

func (m *mockPointWriter) BatchUpsert(_ context.Context, _ string, dim int, points []dompoint.Point) error {
	if m.failOnBatch >= 0 && len(m.batches) == m.failOnBatch {
		return m.err
	}
	m.gotDim = dim
	m.batches = append(m.batches, points)
	return nil
}

func newMockPointWriter() *mockPointWriter {
	return &mockPointWriter{failOnBatch: -1}
}

func makeDocs(t *testing.T, n int) []document.Document {
	t.Helper()
	docs := make([]document.Document, 0, n)
	for i := 1; i <= n; i++ {
		doc, err := document.New(int64(i), fmt.Sprintf("text-%d", i), nil)
		if err != nil {
			t.Fatalf("document.New: %v", err)
		}
		docs = append(docs, doc)
	}
	return docs
}

func newService(src Source, emb Embedder, colls CollectionStore, points PointWriter) *Service {
	return New(src, emb, colls, points, "documents", zap.NewNop())
}

// --- Tests ---

func TestRun_Success(t *testing.T) {
	docs := makeDocs(t, 5)
	emb := &mockEmbedder{dim: 3}
	colls := &mockCollectionStore{}
	points := newMockPointWriter()

	svc := newService(&mockSource{docs: docs}, emb, colls, points).WithBatchSize(2)
	report, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if report.Found != 5 || report.Embedded != 5 || report.Upserted != 5 {
		t.Errorf("report found/embedded/upserted = %d/%d/%d, expected 5/5/5",
			report.Found, report.Embedded, report.Upserted)
	}
	if report.Dim != 3 {
		t.Errorf("report dim = %d, expected 3", report.Dim)
	}

	if colls.createCalls != 1 {
		t.Errorf("expected 1 Create call, got %d", colls.createCalls)
	}
	if colls.deleteCalls != 0 {
		t.Errorf("expected no Delete for a fresh collection, got %d", colls.deleteCalls)
	}
	if colls.createdCol.Dim() != 3 {
		t.Errorf("created collection dim = %d, expected 3", colls.createdCol.Dim())
	}
	if colls.createdCol.Distance() != domcol.DistanceCosine {
		t.Errorf("created collection distance = %q", colls.createdCol.Distance())
	}

	if len(points.batches) != 3 {
		t.Fatalf("expected 3 batches, got %d", len(points.batches))
	}
	if len(points.batches[0]) != 2 || len(points.batches[1]) != 2 || len(points.batches[2]) != 1 {
		t.Errorf("unexpected batch sizes: %d/%d/%d",
			len(points.batches[0]), len(points.batches[1]), len(points.batches[2]))
	}

	// Points arrive in source order regardless of embed completion order.
	var upsertedIDs []int64
	for _, b := range points.batches {
		for i := range b {
			upsertedIDs = append(upsertedIDs, b[i].ID())
		}
	}
	for i, id := range upsertedIDs {
		if id != int64(i+1) {
			t.Fatalf("upserted ids out of source order: %v", upsertedIDs)
		}
	}
}

func TestRun_RecreatesExistingCollection(t *testing.T) {
	colls := &mockCollectionStore{exists: true}
	points := newMockPointWriter()

	svc := newService(&mockSource{docs: makeDocs(t, 1)}, &mockEmbedder{dim: 2}, colls, points)
	if _, err := svc.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if colls.deleteCalls != 1 {
		t.Errorf("expected existing collection dropped once, got %d deletes", colls.deleteCalls)
	}
	if colls.createCalls != 1 {
		t.Errorf("expected 1 Create call, got %d", colls.createCalls)
	}
}

func TestRun_SkipsFailedDocumentsAndContinues(t *testing.T) {
	docs := makeDocs(t, 5)
	emb := &mockEmbedder{
		dim:     3,
		errs:    map[string]error{"text-2": fmt.Errorf("rate limited: %w", domain.ErrProviderError)},
		vectors: map[string][]float32{"text-4": {}}, // empty vector, nil error
	}
	colls := &mockCollectionStore{}
	points := newMockPointWriter()

	svc := newService(&mockSource{docs: docs}, emb, colls, points)
	report, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if report.Embedded != 3 || report.Skipped() != 2 || report.Upserted != 3 {
		t.Errorf("report embedded/skipped/upserted = %d/%d/%d, expected 3/2/3",
			report.Embedded, report.Skipped(), report.Upserted)
	}

	byReason := report.SkippedByReason()
	if byReason[run.SkipProviderError] != 1 {
		t.Errorf("expected 1 provider_error skip, got %d", byReason[run.SkipProviderError])
	}
	if byReason[run.SkipEmptyVector] != 1 {
		t.Errorf("expected 1 empty_vector skip, got %d", byReason[run.SkipEmptyVector])
	}

	var upsertedIDs []int64
	for _, b := range points.batches {
		for i := range b {
			upsertedIDs = append(upsertedIDs, b[i].ID())
		}
	}
	want := []int64{1, 3, 5}
	if len(upsertedIDs) != len(want) {
		t.Fatalf("upserted ids = %v, expected %v", upsertedIDs, want)
	}
	for i := range want {
		if upsertedIDs[i] != want[i] {
			t.Fatalf("upserted ids = %v, expected %v", upsertedIDs, want)
		}
	}
}

func TestRun_EmptyTextUsesPlaceholder(t *testing.T) {
	doc, err := document.New(9, "   ", nil)
	if err != nil {
		t.Fatalf("document.New: %v", err)
	}
	emb := &mockEmbedder{dim: 2}
	points := newMockPointWriter()

	svc := newService(&mockSource{docs: []document.Document{doc}}, emb, &mockCollectionStore{}, points)
	if _, err := svc.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	got := emb.receivedTexts()
	if len(got) != 1 || got[0] != emptyTextPlaceholder {
		t.Errorf("embedder received %v, expected [%q]", got, emptyTextPlaceholder)
	}

	// The stored point keeps the original text, not the placeholder.
	if points.batches[0][0].Text() != "   " {
		t.Errorf("stored text = %q, expected original", points.batches[0][0].Text())
	}
}

func TestRun_DimensionMismatchAborts(t *testing.T) {
	docs := makeDocs(t, 3)
	emb := &mockEmbedder{
		dim:     3,
		vectors: map[string][]float32{"text-2": {0.1, 0.2, 0.3, 0.4}},
	}
	colls := &mockCollectionStore{exists: true}
	points := newMockPointWriter()

	// Single worker keeps the embed order deterministic.
	svc := newService(&mockSource{docs: docs}, emb, colls, points).WithWorkers(1)
	_, err := svc.Run(context.Background())
	if !errors.Is(err, domain.ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}

	if colls.deleteCalls != 0 || colls.createCalls != 0 {
		t.Error("collection must stay untouched after a dimension mismatch")
	}
	if len(points.batches) != 0 {
		t.Error("no points may be upserted after a dimension mismatch")
	}
}

func TestRun_NoEmbeddableDocuments(t *testing.T) {
	t.Run("all skipped", func(t *testing.T) {
		docs := makeDocs(t, 2)
		emb := &mockEmbedder{
			dim: 3,
			errs: map[string]error{
				"text-1": domain.ErrProviderUnavailable,
				"text-2": domain.ErrProviderError,
			},
		}
		colls := &mockCollectionStore{exists: true}
		points := newMockPointWriter()

		svc := newService(&mockSource{docs: docs}, emb, colls, points)
		report, err := svc.Run(context.Background())
		if !errors.Is(err, domain.ErrNoEmbeddableDocuments) {
			t.Fatalf("expected ErrNoEmbeddableDocuments, got %v", err)
		}
		if report.Found != 2 || report.Skipped() != 2 {
			t.Errorf("report found/skipped = %d/%d, expected 2/2", report.Found, report.Skipped())
		}
		if colls.deleteCalls != 0 || colls.createCalls != 0 {
			t.Error("existing collection must stay untouched when nothing embeds")
		}
	})

	t.Run("empty source", func(t *testing.T) {
		colls := &mockCollectionStore{exists: true}
		svc := newService(&mockSource{}, &mockEmbedder{dim: 3}, colls, newMockPointWriter())

		_, err := svc.Run(context.Background())
		if !errors.Is(err, domain.ErrNoEmbeddableDocuments) {
			t.Fatalf("expected ErrNoEmbeddableDocuments, got %v", err)
		}
		if colls.deleteCalls != 0 {
			t.Error("empty source must not drop the existing collection")
		}
	})
}

func TestRun_SourceFailure(t *testing.T) {
	srcErr := fmt.Errorf("open corpus.jsonl: %w", domain.ErrSourceUnavailable)
	svc := newService(&mockSource{err: srcErr}, &mockEmbedder{dim: 3}, &mockCollectionStore{}, newMockPointWriter())

	report, err := svc.Run(context.Background())
	if !errors.Is(err, domain.ErrSourceUnavailable) {
		t.Fatalf("expected ErrSourceUnavailable, got %v", err)
	}
	if report.Found != 0 {
		t.Errorf("report found = %d, expected 0", report.Found)
	}
}

func TestRun_BatchFailureAbortsRemainder(t *testing.T) {
	docs := makeDocs(t, 5)
	points := newMockPointWriter()
	points.failOnBatch = 1
	points.err = fmt.Errorf("connection reset: %w", domain.ErrStoreUnavailable)

	svc := newService(&mockSource{docs: docs}, &mockEmbedder{dim: 3}, &mockCollectionStore{}, points).
		WithBatchSize(2)
	report, err := svc.Run(context.Background())

	var batchErr *domain.BatchUpsertError
	if !errors.As(err, &batchErr) {
		t.Fatalf("expected BatchUpsertError, got %v", err)
	}
	if batchErr.Batch != 1 {
		t.Errorf("failed batch index = %d, expected 1", batchErr.Batch)
	}
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Error("expected error to match ErrStoreUnavailable")
	}

	// The first batch stays committed; nothing after the failure is sent.
	if report.Upserted != 2 {
		t.Errorf("report upserted = %d, expected 2", report.Upserted)
	}
	if len(points.batches) != 1 {
		t.Errorf("expected 1 committed batch, got %d", len(points.batches))
	}
}

func TestRun_WriterDimensionMismatchPassesThrough(t *testing.T) {
	points := newMockPointWriter()
	points.failOnBatch = 0
	points.err = fmt.Errorf("point 1: %w", domain.ErrDimensionMismatch)

	svc := newService(&mockSource{docs: makeDocs(t, 1)}, &mockEmbedder{dim: 3}, &mockCollectionStore{}, points)
	_, err := svc.Run(context.Background())

	if !errors.Is(err, domain.ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
	var batchErr *domain.BatchUpsertError
	if errors.As(err, &batchErr) {
		t.Error("dimension mismatch must not be wrapped as a batch error")
	}
}

func TestRun_ProgressCallback(t *testing.T) {
	var mu sync.Mutex
	calls := 0

	svc := newService(&mockSource{docs: makeDocs(t, 4)}, &mockEmbedder{dim: 2},
		&mockCollectionStore{}, newMockPointWriter()).
		WithProgress(func(_ int) {
			mu.Lock()
			calls++
			mu.Unlock()
		})

	if _, err := svc.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if calls != 4 {
		t.Errorf("progress called %d times, expected 4", calls)
	}
}
