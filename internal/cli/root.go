// Package cli wires the fuza commands: migrate builds the collection,
// search queries it.
package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fuzalab/fuza/internal/config"
	"github.com/fuzalab/fuza/internal/db"
	dbredis "github.com/fuzalab/fuza/internal/db/redis"
	logpkg "github.com/fuzalab/fuza/internal/logger"
	openaiemb "github.com/fuzalab/fuza/internal/transport/openai"
	"github.com/fuzalab/fuza/internal/version"
)

var (
	cfg config.Config
	log *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "fuza",
	Short: "Hybrid document retrieval over a vector and lexical index",
	Long: `fuza ingests a document corpus, embeds it through an OpenAI-compatible
provider, indexes it in Redis, and answers queries by fusing vector
similarity with lexical relevance via Reciprocal Rank Fusion.

Example usage:
  fuza migrate                   # Build the collection from the configured source
  fuza search "tuning hnsw"      # Query the collection`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env first so ${VAR} references in the config file resolve.
		_ = godotenv.Load()

		env := config.GetEnv()

		var err error
		cfg, err = config.Load(env)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		log, err = logpkg.New(env, cfg.Logging.Level)
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
}

// Execute runs the CLI. Any fatal error per the pipeline's error taxonomy
// yields a non-zero exit status.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// connectStore creates the Redis store and waits until it responds.
func connectStore(cmd *cobra.Command) (db.Store, error) {
	store, err := dbredis.NewStore(dbredis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("create store: %w", err)
	}

	timeout := time.Duration(cfg.Database.ReadinessTimeout) * time.Second
	if err := store.WaitForReady(cmd.Context(), timeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("store not ready: %w", err)
	}
	return store, nil
}

// buildEmbedder creates the embedding provider adapter.
func buildEmbedder() *openaiemb.Embedder {
	return openaiemb.NewEmbedder(&openaiemb.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Logger:     log,
	})
}
