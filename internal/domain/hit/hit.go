package hit

// Ref is one entry of a ranked sub-list: a document id with the score the
// store assigned it. The position in the slice is the rank.
type Ref struct {
	ID    int64
	Score float64
}

// Hit is a fused search result. Constructed per query, never persisted.
// A rank of 0 means the document was absent from that sub-list; the
// corresponding score is then meaningless.
type Hit struct {
	id       int64
	fused    float64
	semScore float64
	lexScore float64
	semRank  int
	lexRank  int
}

// New creates a fused hit. Ranks are 1-based; pass 0 for an absent list.
func New(id int64, fused, semScore, lexScore float64, semRank, lexRank int) Hit {
	return Hit{
		id: id, fused: fused,
		semScore: semScore, lexScore: lexScore,
		semRank: semRank, lexRank: lexRank,
	}
}

// ID returns the document identifier.
func (h *Hit) ID() int64 { return h.id }

// FusedScore returns the reciprocal-rank-fusion score.
func (h *Hit) FusedScore() float64 { return h.fused }

// SemanticScore returns the vector similarity score from the semantic list.
func (h *Hit) SemanticScore() float64 { return h.semScore }

// LexicalScore returns the relevance score from the lexical list.
func (h *Hit) LexicalScore() float64 { return h.lexScore }

// SemanticRank returns the 1-based rank in the semantic list, 0 if absent.
func (h *Hit) SemanticRank() int { return h.semRank }

// LexicalRank returns the 1-based rank in the lexical list, 0 if absent.
func (h *Hit) LexicalRank() int { return h.lexRank }

// InSemantic reports whether the document appeared in the semantic list.
func (h *Hit) InSemantic() bool { return h.semRank > 0 }

// InLexical reports whether the document appeared in the lexical list.
func (h *Hit) InLexical() bool { return h.lexRank > 0 }
