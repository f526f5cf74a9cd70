package config

import (
	"os"
	"path/filepath"
	"testing"
)

func validConfig() Config {
	return Config{
		Database:  DatabaseConfig{Addrs: []string{"localhost:6379"}},
		Embedding: EmbeddingConfig{Model: "text-embedding-3-small"},
		Migrate:   MigrateConfig{Collection: "documents"},
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := validConfig()
	cfg.ApplyDefaults()

	if cfg.Migrate.BatchSize != 100 {
		t.Errorf("batch size = %d, expected 100", cfg.Migrate.BatchSize)
	}
	if cfg.Migrate.Workers != 4 {
		t.Errorf("workers = %d, expected 4", cfg.Migrate.Workers)
	}
	if cfg.Search.SemanticWeight != 0.7 || cfg.Search.LexicalWeight != 0.3 {
		t.Errorf("weights = %g/%g, expected 0.7/0.3",
			cfg.Search.SemanticWeight, cfg.Search.LexicalWeight)
	}
	if cfg.Search.RRFK != 60 {
		t.Errorf("rrf_k = %d, expected 60", cfg.Search.RRFK)
	}
	if cfg.Search.TopK != 10 {
		t.Errorf("top_k = %d, expected 10", cfg.Search.TopK)
	}
	if cfg.Search.Prefetch != 10 {
		t.Errorf("prefetch = %d, expected floored at top_k", cfg.Search.Prefetch)
	}
	if cfg.Database.ReadinessTimeout != 10 {
		t.Errorf("readiness timeout = %d, expected 10", cfg.Database.ReadinessTimeout)
	}
}

func TestApplyDefaults_ExplicitWeightsKept(t *testing.T) {
	cfg := validConfig()
	cfg.Search.SemanticWeight = 1.0
	cfg.ApplyDefaults()

	// One non-zero weight means the pair was set deliberately.
	if cfg.Search.SemanticWeight != 1.0 || cfg.Search.LexicalWeight != 0 {
		t.Errorf("weights = %g/%g, expected 1.0/0",
			cfg.Search.SemanticWeight, cfg.Search.LexicalWeight)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"no addrs", func(c *Config) { c.Database.Addrs = nil }, true},
		{"no model", func(c *Config) { c.Embedding.Model = "" }, true},
		{"bad collection name", func(c *Config) { c.Migrate.Collection = "no spaces" }, true},
		{"negative weight", func(c *Config) { c.Search.SemanticWeight = -0.1 }, true},
		{"bad metrics port", func(c *Config) { c.Metrics.Port = 70000 }, true},
		{"metrics disabled", func(c *Config) { c.Metrics.Port = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("FUZA_TEST_KEY", "secret")
	os.Unsetenv("FUZA_TEST_UNSET")

	in := []byte("api_key: ${FUZA_TEST_KEY}\nbase_url: ${FUZA_TEST_UNSET:-https://fallback}\nplain: value\n")
	got := string(expandEnvVars(in))
	want := "api_key: secret\nbase_url: https://fallback\nplain: value\n"
	if got != want {
		t.Errorf("expanded:\ngot:  %q\nwant: %q", got, want)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "config"), 0o755); err != nil {
		t.Fatal(err)
	}

	yaml := `database:
  addrs: ["localhost:6379"]
  password: ${FUZA_TEST_DB_PASSWORD:-}
embedding:
  model: text-embedding-3-small
migrate:
  source: corpus.jsonl
`
	if err := os.WriteFile(filepath.Join(dir, "config", "loadtest.yaml"), []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	oldwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(oldwd) })

	cfg, err := Load("loadtest")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Embedding.Model != "text-embedding-3-small" {
		t.Errorf("model = %q", cfg.Embedding.Model)
	}
	if cfg.Database.Password != "" {
		t.Errorf("password = %q, expected empty default", cfg.Database.Password)
	}
	// Defaults applied on load.
	if cfg.Migrate.Collection != "documents" || cfg.Search.TopK != 10 {
		t.Errorf("defaults not applied: %+v", cfg)
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("ENV", "")
	if env := GetEnv(); env != "local" {
		t.Errorf("GetEnv() = %q, expected local", env)
	}
	t.Setenv("ENV", "prod")
	if env := GetEnv(); env != "prod" {
		t.Errorf("GetEnv() = %q, expected prod", env)
	}
}
