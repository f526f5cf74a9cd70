// Package migrate turns a document source into a freshly consistent,
// queryable collection: embed every document, infer the dimension, recreate
// the collection, upsert in batches.
package migrate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fuzalab/fuza/internal/domain"
	domcol "github.com/fuzalab/fuza/internal/domain/collection"
	"github.com/fuzalab/fuza/internal/domain/document"
	dompoint "github.com/fuzalab/fuza/internal/domain/point"
	"github.com/fuzalab/fuza/internal/domain/run"
	"github.com/fuzalab/fuza/internal/metrics"
)

// DefaultBatchSize is the number of points per upsert batch.
const DefaultBatchSize = 100

// DefaultWorkers is the size of the embedding worker pool.
const DefaultWorkers = 4

// emptyTextPlaceholder substitutes empty document text before embedding;
// most providers reject a zero-length input.
const emptyTextPlaceholder = "[empty]"

// Service runs the migration pipeline.
type Service struct {
	src        Source
	embed      Embedder
	colls      CollectionStore
	points     PointWriter
	collection string
	batchSize  int
	workers    int
	progress   func(done int)
	logger     *zap.Logger
}

// New creates a migration service for the target collection.
func New(src Source, embed Embedder, colls CollectionStore, points PointWriter,
	collection string, logger *zap.Logger,
) *Service {
	return &Service{
		src: src, embed: embed, colls: colls, points: points,
		collection: collection,
		batchSize:  DefaultBatchSize,
		workers:    DefaultWorkers,
		logger:     logger,
	}
}

// WithBatchSize configures the upsert batch size.
func (s *Service) WithBatchSize(n int) *Service {
	if n > 0 {
		s.batchSize = n
	}
	return s
}

// WithWorkers configures the embedding worker pool size.
func (s *Service) WithWorkers(n int) *Service {
	if n > 0 {
		s.workers = n
	}
	return s
}

// WithProgress installs a callback invoked after each document is embedded
// or skipped. The callback must be safe for concurrent use.
func (s *Service) WithProgress(fn func(done int)) *Service {
	s.progress = fn
	return s
}

// Run executes the pipeline. The returned report is valid even on error and
// describes everything that happened up to the failure.
func (s *Service) Run(ctx context.Context) (*run.Report, error) {
	docs, err := s.src.Load(ctx)
	if err != nil {
		return &run.Report{}, fmt.Errorf("load source: %w", err)
	}

	report := &run.Report{Found: len(docs)}
	s.logger.Info("migration started",
		zap.String("collection", s.collection),
		zap.Int("documents", len(docs)),
		zap.Int("workers", s.workers),
	)

	vectors, items, dim, err := s.embedAll(ctx, docs)
	for _, it := range items {
		if it.Status() == "" {
			continue // never reached before the run aborted
		}
		report.Add(it)
		metrics.MigrationDocumentsTotal.WithLabelValues(string(it.Status())).Inc()
		if it.Status() == run.StatusSkipped {
			metrics.MigrationSkippedTotal.WithLabelValues(string(it.Reason())).Inc()
			s.logger.Warn("document skipped",
				zap.Int64("id", it.ID()),
				zap.String("reason", string(it.Reason())),
				zap.Error(it.Err()),
			)
		}
	}
	if err != nil {
		return report, err
	}

	if report.Embedded == 0 {
		// No delete has happened yet: a pre-existing same-named collection
		// stays untouched.
		return report, fmt.Errorf("migrate %s: %w", s.collection, domain.ErrNoEmbeddableDocuments)
	}
	report.Dim = dim

	if err := s.recreateCollection(ctx, dim); err != nil {
		return report, err
	}

	if err := s.upsertAll(ctx, docs, vectors, dim, report); err != nil {
		return report, err
	}

	s.logger.Info("migration finished",
		zap.Int("found", report.Found),
		zap.Int("embedded", report.Embedded),
		zap.Int("skipped", report.Skipped()),
		zap.Int("upserted", report.Upserted),
		zap.Int("dim", report.Dim),
	)
	return report, nil
}

// embedState is the only shared mutable value of the embed phase: the first
// successful embedding sets dim, all later ones compare against it.
type embedState struct {
	mu    sync.Mutex
	dim   int
	fatal error
}

// embedAll runs the per-document embed loop on a bounded worker pool.
// vectors and items are aligned with docs; a nil vector means skipped.
func (s *Service) embedAll(ctx context.Context, docs []document.Document) (
	[][]float32, []run.Item, int, error,
) {
	vectors := make([][]float32, len(docs))
	items := make([]run.Item, len(docs))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	workers := s.workers
	if workers > len(docs) {
		workers = len(docs)
	}

	jobs := make(chan int)
	var st embedState
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				items[i] = s.embedOne(ctx, &docs[i], i, vectors, &st, cancel)
				if s.progress != nil {
					s.progress(1)
				}
			}
		}()
	}

feed:
	for i := range docs {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	st.mu.Lock()
	defer st.mu.Unlock()
	if st.fatal != nil {
		return nil, items, 0, st.fatal
	}
	return vectors, items, st.dim, nil
}

// embedOne embeds a single document and records the outcome. Provider
// failures and empty vectors are soft: the document is skipped, the run
// continues. A dimension disagreement is fatal and cancels the pool.
func (s *Service) embedOne(
	ctx context.Context, doc *document.Document, idx int,
	vectors [][]float32, st *embedState, cancel context.CancelFunc,
) run.Item {
	text := doc.Text()
	if strings.TrimSpace(text) == "" {
		text = emptyTextPlaceholder
	}

	res, err := s.embed.Embed(ctx, text)
	if err != nil {
		return run.NewSkipped(doc.ID(), run.SkipProviderError, err)
	}
	if res.Empty() {
		return run.NewSkipped(doc.ID(), run.SkipEmptyVector, nil)
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if st.fatal != nil {
		return run.NewSkipped(doc.ID(), run.SkipProviderError, st.fatal)
	}
	if st.dim == 0 {
		st.dim = len(res.Embedding)
	} else if len(res.Embedding) != st.dim {
		st.fatal = fmt.Errorf("document %d: embedding dim %d, expected %d: %w",
			doc.ID(), len(res.Embedding), st.dim, domain.ErrDimensionMismatch)
		cancel()
		return run.NewSkipped(doc.ID(), run.SkipProviderError, st.fatal)
	}

	vectors[idx] = res.Embedding
	return run.NewEmbedded(doc.ID())
}

// recreateCollection applies the destroy-and-recreate policy: the new
// collection's declared dim always matches the current embedding model.
func (s *Service) recreateCollection(ctx context.Context, dim int) error {
	exists, err := s.colls.Exists(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("check collection: %w", err)
	}
	if exists {
		s.logger.Info("dropping existing collection", zap.String("collection", s.collection))
		if err := s.colls.Delete(ctx, s.collection); err != nil {
			return fmt.Errorf("delete collection: %w", err)
		}
	}

	col, err := domcol.New(s.collection, dim)
	if err != nil {
		return fmt.Errorf("collection %s: %w", s.collection, err)
	}
	if err := s.colls.Create(ctx, col); err != nil {
		return fmt.Errorf("create collection: %w", err)
	}
	s.logger.Info("collection created",
		zap.String("collection", s.collection),
		zap.Int("dim", dim),
		zap.String("distance", col.Distance()),
	)
	return nil
}

// upsertAll writes all embedded points in fixed-size batches, source order.
// A failed batch aborts the remainder; earlier batches stay committed.
func (s *Service) upsertAll(
	ctx context.Context, docs []document.Document, vectors [][]float32,
	dim int, report *run.Report,
) error {
	points := make([]dompoint.Point, 0, report.Embedded)
	for i := range docs {
		if vectors[i] == nil {
			continue
		}
		points = append(points, dompoint.New(docs[i].ID(), vectors[i], docs[i].Text(), docs[i].Payload()))
	}

	for bi := 0; bi*s.batchSize < len(points); bi++ {
		lo := bi * s.batchSize
		hi := lo + s.batchSize
		if hi > len(points) {
			hi = len(points)
		}
		batch := points[lo:hi]

		start := time.Now()
		err := s.points.BatchUpsert(ctx, s.collection, dim, batch)
		metrics.MigrationBatchDuration.Observe(time.Since(start).Seconds())
		metrics.MigrationBatchesTotal.Inc()

		if err != nil {
			if errors.Is(err, domain.ErrDimensionMismatch) {
				return err
			}
			return domain.NewBatchUpsertError(bi, err)
		}
		report.Upserted += len(batch)
	}

	return nil
}
