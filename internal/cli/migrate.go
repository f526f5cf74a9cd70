package cli

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fuzalab/fuza/internal/domain/run"
	"github.com/fuzalab/fuza/internal/metrics"
	collectionrepo "github.com/fuzalab/fuza/internal/repository/collection"
	pointrepo "github.com/fuzalab/fuza/internal/repository/point"
	"github.com/fuzalab/fuza/internal/source/jsonl"
	migrateuc "github.com/fuzalab/fuza/internal/usecase/migrate"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Build the collection from the configured document source",
	Long: `Read the whole corpus, embed every document, recreate the target
collection with the inferred dimension, and upsert all points in batches.
A pre-existing collection with the same name is dropped and rebuilt.`,
	Args: cobra.NoArgs,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterMigrationMetrics()
	metrics.Serve(ctx, cfg.Metrics.Port, log)

	store, err := connectStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	embedder := buildEmbedder()
	if err := embedder.HealthCheck(ctx); err != nil {
		return fmt.Errorf("embedding provider: %w", err)
	}

	bar := progressbar.Default(-1, "embedding")
	svc := migrateuc.New(
		jsonl.New(cfg.Migrate.Source),
		embedder,
		collectionrepo.New(store),
		pointrepo.New(store),
		cfg.Migrate.Collection,
		log,
	).
		WithBatchSize(cfg.Migrate.BatchSize).
		WithWorkers(cfg.Migrate.Workers).
		WithProgress(func(n int) { _ = bar.Add(n) })

	report, err := svc.Run(ctx)
	_ = bar.Finish()
	printReport(report)
	if err != nil {
		log.Error("migration failed", zap.Error(err))
		return err
	}
	return nil
}

func printReport(r *run.Report) {
	fmt.Println()
	fmt.Printf("documents found:    %d\n", r.Found)
	fmt.Printf("documents embedded: %d\n", r.Embedded)
	fmt.Printf("documents skipped:  %d\n", r.Skipped())
	for reason, n := range r.SkippedByReason() {
		fmt.Printf("  %-18s%d\n", reason+":", n)
	}
	fmt.Printf("points upserted:    %d\n", r.Upserted)
	if r.Dim > 0 {
		fmt.Printf("collection dim:     %d\n", r.Dim)
	}
}
