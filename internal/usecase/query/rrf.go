package query

import (
	"sort"

	"github.com/fuzalab/fuza/internal/domain/hit"
)

// DefaultRRFK is the Reciprocal Rank Fusion constant (standard value from
// Cormack et al. 2009). It dampens the gap between rank 1 and rank 2.
const DefaultRRFK = 60

// fuseRRF merges the semantic and lexical result lists via weighted
// Reciprocal Rank Fusion: a document at 1-based rank r in a list with weight
// w contributes w/(k+r); absence from a list contributes 0. Rank, not raw
// score, is what gets fused, so the two incomparable score scales need no
// normalization. Ties break by ascending id for reproducible output.
func fuseRRF(semantic, lexical []hit.Ref, ws, wl float64, k, topK int) []hit.Hit {
	type fused struct {
		semScore, lexScore float64
		semRank, lexRank   int
		score              float64
	}

	merged := make(map[int64]*fused, len(semantic)+len(lexical))

	for i, ref := range semantic {
		rank := i + 1
		merged[ref.ID] = &fused{
			semScore: ref.Score,
			semRank:  rank,
			score:    ws / float64(k+rank),
		}
	}

	for i, ref := range lexical {
		rank := i + 1
		contrib := wl / float64(k+rank)
		if f, ok := merged[ref.ID]; ok {
			f.lexScore = ref.Score
			f.lexRank = rank
			f.score += contrib
		} else {
			merged[ref.ID] = &fused{lexScore: ref.Score, lexRank: rank, score: contrib}
		}
	}

	hits := make([]hit.Hit, 0, len(merged))
	for id, f := range merged {
		hits = append(hits, hit.New(id, f.score, f.semScore, f.lexScore, f.semRank, f.lexRank))
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].FusedScore() != hits[j].FusedScore() {
			return hits[i].FusedScore() > hits[j].FusedScore()
		}
		return hits[i].ID() < hits[j].ID()
	})

	if len(hits) > topK {
		hits = hits[:topK]
	}

	return hits
}
