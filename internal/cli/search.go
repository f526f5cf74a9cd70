package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fuzalab/fuza/internal/domain/hit"
	"github.com/fuzalab/fuza/internal/metrics"
	searchrepo "github.com/fuzalab/fuza/internal/repository/search"
	queryuc "github.com/fuzalab/fuza/internal/usecase/query"
)

var (
	searchTopK int
	searchJSON bool
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Query the collection with hybrid rank fusion",
	Long: `Embed the query, run the vector and lexical sub-queries in parallel,
and fuse their rankings via Reciprocal Rank Fusion.

Examples:
  fuza search "connection pooling"
  fuza search "hnsw recall" --top-k 20 --json`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().IntVarP(&searchTopK, "top-k", "k", 0, "number of results (default from config)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output as JSON")
}

func runSearch(cmd *cobra.Command, args []string) error {
	metrics.RegisterEmbeddingMetrics()

	store, err := connectStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	topK := cfg.Search.TopK
	if searchTopK > 0 {
		topK = searchTopK
	}

	svc := queryuc.New(
		searchrepo.New(store),
		searchrepo.New(store),
		buildEmbedder(),
		queryuc.Params{
			Collection:     cfg.Migrate.Collection,
			SemanticWeight: cfg.Search.SemanticWeight,
			LexicalWeight:  cfg.Search.LexicalWeight,
			RRFK:           cfg.Search.RRFK,
			TopK:           topK,
			Prefetch:       cfg.Search.Prefetch,
		},
	)

	hits, err := svc.Search(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if searchJSON {
		return printHitsJSON(hits)
	}
	printHits(hits)
	return nil
}

type hitOutput struct {
	ID            int64   `json:"id"`
	FusedScore    float64 `json:"fused_score"`
	SemanticRank  int     `json:"semantic_rank,omitempty"`
	SemanticScore float64 `json:"semantic_score,omitempty"`
	LexicalRank   int     `json:"lexical_rank,omitempty"`
	LexicalScore  float64 `json:"lexical_score,omitempty"`
}

func printHitsJSON(hits []hit.Hit) error {
	out := make([]hitOutput, len(hits))
	for i := range hits {
		h := &hits[i]
		out[i] = hitOutput{
			ID:            h.ID(),
			FusedScore:    h.FusedScore(),
			SemanticRank:  h.SemanticRank(),
			SemanticScore: h.SemanticScore(),
			LexicalRank:   h.LexicalRank(),
			LexicalScore:  h.LexicalScore(),
		}
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func printHits(hits []hit.Hit) {
	if len(hits) == 0 {
		fmt.Println("no results")
		return
	}

	fmt.Printf("%-4s %-10s %-10s %-16s %-16s\n", "#", "id", "fused", "semantic", "lexical")
	for i := range hits {
		h := &hits[i]
		fmt.Printf("%-4d %-10d %-10.6f %-16s %-16s\n",
			i+1, h.ID(), h.FusedScore(),
			sublistCell(h.SemanticRank(), h.SemanticScore()),
			sublistCell(h.LexicalRank(), h.LexicalScore()),
		)
	}
}

// sublistCell renders "rank@score" or "-" for a document absent from a list.
func sublistCell(rank int, score float64) string {
	if rank == 0 {
		return "-"
	}
	return fmt.Sprintf("#%d %.4f", rank, score)
}
