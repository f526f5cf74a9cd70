package collection

import "github.com/fuzalab/fuza/internal/db"

// buildIndexDef declares the per-collection FT index: a TEXT field for
// lexical (BM25) relevance and an HNSW cosine vector field. Payload fields
// stay unindexed in the hash.
func buildIndexDef(name string, dim int, hnsw HNSWConfig) *db.IndexDefinition {
	return &db.IndexDefinition{
		Name:     indexName(name),
		Prefixes: []string{pointPrefix(name)},
		Fields: []db.IndexField{
			{
				Name: "__text",
				Type: db.IndexFieldText,
			},
			{
				Name:              "__vector",
				Type:              db.IndexFieldVector,
				VectorAlgo:        db.VectorHNSW,
				VectorDim:         dim,
				VectorDistance:    db.DistanceCosine,
				VectorM:           hnsw.M,
				VectorEFConstruct: hnsw.EFConstruct,
			},
		},
	}
}
