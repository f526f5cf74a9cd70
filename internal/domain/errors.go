package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrSourceUnavailable signals that the document source cannot be read.
	ErrSourceUnavailable = errors.New("document source unavailable")
	// ErrProviderUnavailable signals a transport failure reaching the embedding provider.
	ErrProviderUnavailable = errors.New("embedding provider unavailable")
	// ErrProviderError signals a non-success response from the embedding provider.
	ErrProviderError = errors.New("embedding provider error")
	// ErrDimensionMismatch signals an embedding whose length differs from the collection dim.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
	// ErrNoEmbeddableDocuments signals that no document produced a usable embedding.
	ErrNoEmbeddableDocuments = errors.New("no embeddable documents")
	// ErrStoreUnavailable signals an index store failure.
	ErrStoreUnavailable = errors.New("index store unavailable")
	// ErrInvalidQuery signals an empty or malformed query string.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrNoQueryEmbedding signals that the provider returned no embedding for the query.
	ErrNoQueryEmbedding = errors.New("no query embedding")
	// ErrCollectionNotFound signals a missing collection.
	ErrCollectionNotFound = errors.New("collection not found")
)

// BatchUpsertError wraps ErrStoreUnavailable with the index of the failed batch.
// Batches before it remain committed; the operator uses the index to diagnose.
type BatchUpsertError struct {
	Batch int
	Err   error
}

func (e *BatchUpsertError) Error() string {
	return fmt.Sprintf("upsert batch %d: %v", e.Batch, e.Err)
}

func (e *BatchUpsertError) Unwrap() []error { return []error{ErrStoreUnavailable, e.Err} }

// NewBatchUpsertError creates a batch upsert error.
func NewBatchUpsertError(batch int, err error) error {
	return &BatchUpsertError{Batch: batch, Err: err}
}
