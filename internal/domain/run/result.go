package run

// ItemStatus is the processing outcome of a single document in a migration run.
type ItemStatus string

// Item status values.
const (
	StatusEmbedded ItemStatus = "embedded"
	StatusSkipped  ItemStatus = "skipped"
)

// SkipReason classifies why a document was excluded from the run.
type SkipReason string

// Skip reasons.
const (
	SkipProviderError SkipReason = "provider_error"
	SkipEmptyVector   SkipReason = "empty_vector"
)

// Item is the outcome of processing one document. Skips carry the reason and
// the triggering error so the aggregate report is inspectable without logs.
type Item struct {
	id     int64
	status ItemStatus
	reason SkipReason
	err    error
}

// NewEmbedded creates a successful item result.
func NewEmbedded(id int64) Item { return Item{id: id, status: StatusEmbedded} }

// NewSkipped creates a skipped item result.
func NewSkipped(id int64, reason SkipReason, err error) Item {
	return Item{id: id, status: StatusSkipped, reason: reason, err: err}
}

// ID returns the document identifier.
func (i Item) ID() int64 { return i.id }

// Status returns the processing outcome.
func (i Item) Status() ItemStatus { return i.status }

// Reason returns the skip reason, empty for embedded items.
func (i Item) Reason() SkipReason { return i.reason }

// Err returns the error behind a skip, if any.
func (i Item) Err() error { return i.err }
