package run

// Report is the aggregate outcome of one migration run.
type Report struct {
	Found    int // documents read from the source
	Embedded int // documents with a usable embedding
	Upserted int // points written to the store
	Dim      int // inferred collection dimension

	items []Item
}

// Add records one item outcome.
func (r *Report) Add(item Item) {
	r.items = append(r.items, item)
	if item.Status() == StatusEmbedded {
		r.Embedded++
	}
}

// Items returns all per-document outcomes in source order.
func (r *Report) Items() []Item { return r.items }

// Skipped returns the number of skipped documents.
func (r *Report) Skipped() int { return r.Found - r.Embedded }

// SkippedByReason counts skipped documents per reason.
func (r *Report) SkippedByReason() map[SkipReason]int {
	counts := make(map[SkipReason]int)
	for _, it := range r.items {
		if it.Status() == StatusSkipped {
			counts[it.Reason()]++
		}
	}
	return counts
}
