package document

import (
	"fmt"
	"strings"
)

// MaxTextSize is the maximum document text size in bytes.
const MaxTextSize = 163840 // 160KB

// Document is one corpus entry (immutable value object). The id is stable
// across migration runs; payload fields are opaque pass-through strings.
type Document struct {
	id      int64
	text    string
	payload map[string]string
}

// New validates and creates a Document.
// ID must be positive. Payload keys must not use the reserved "__" prefix,
// which the store claims for the text and vector fields.
func New(id int64, text string, payload map[string]string) (Document, error) {
	if id <= 0 {
		return Document{}, fmt.Errorf("document ID must be positive, got %d", id)
	}
	if len(text) > MaxTextSize {
		return Document{}, fmt.Errorf("document %d: text too large (max %d bytes)", id, MaxTextSize)
	}
	for k := range payload {
		if strings.HasPrefix(k, "__") {
			return Document{}, fmt.Errorf("document %d: payload field %q uses reserved prefix", id, k)
		}
	}

	return Document{id: id, text: text, payload: clonePayload(payload)}, nil
}

// ID returns the document identifier.
func (d *Document) ID() int64 { return d.id }

// Text returns the text subject to embedding and lexical indexing.
func (d *Document) Text() string { return d.text }

// Payload returns the opaque metadata fields.
func (d *Document) Payload() map[string]string { return d.payload }

func clonePayload(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	c := make(map[string]string, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}
