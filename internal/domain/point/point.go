package point

// Point is a document ready for upsert: id, embedding vector, the original
// text (kept for lexical indexing) and the opaque payload fields.
type Point struct {
	id      int64
	vector  []float32
	text    string
	payload map[string]string
}

// New creates a Point.
func New(id int64, vector []float32, text string, payload map[string]string) Point {
	return Point{id: id, vector: vector, text: text, payload: payload}
}

// ID returns the point identifier (== the source document id).
func (p *Point) ID() int64 { return p.id }

// Vector returns the embedding vector.
func (p *Point) Vector() []float32 { return p.vector }

// Text returns the indexed text.
func (p *Point) Text() string { return p.text }

// Payload returns the opaque metadata fields.
func (p *Point) Payload() map[string]string { return p.payload }
