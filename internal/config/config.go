package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the fuza configuration.
type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Migrate   MigrateConfig   `yaml:"migrate"`
	Search    SearchConfig    `yaml:"search"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
}

// MigrateConfig holds migration pipeline settings.
type MigrateConfig struct {
	Collection string `yaml:"collection"`
	Source     string `yaml:"source"`
	BatchSize  int    `yaml:"batch_size"`
	Workers    int    `yaml:"workers"`
}

// SearchConfig holds hybrid query engine settings. Weights need not sum to 1.
type SearchConfig struct {
	SemanticWeight float64 `yaml:"semantic_weight"`
	LexicalWeight  float64 `yaml:"lexical_weight"`
	RRFK           int     `yaml:"rrf_k"`
	TopK           int     `yaml:"top_k"`
	Prefetch       int     `yaml:"prefetch"`
}

// MetricsConfig holds the optional metrics listener settings.
type MetricsConfig struct {
	Port int `yaml:"port"` // 0 disables the listener
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

var collectionNameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Migrate.Collection == "" {
		c.Migrate.Collection = "documents"
	}
	if c.Migrate.BatchSize <= 0 {
		c.Migrate.BatchSize = 100
	}
	if c.Migrate.Workers <= 0 {
		c.Migrate.Workers = 4
	}
	if c.Search.SemanticWeight == 0 && c.Search.LexicalWeight == 0 {
		c.Search.SemanticWeight = 0.7
		c.Search.LexicalWeight = 0.3
	}
	if c.Search.RRFK <= 0 {
		c.Search.RRFK = 60
	}
	if c.Search.TopK <= 0 {
		c.Search.TopK = 10
	}
	if c.Search.Prefetch < c.Search.TopK {
		c.Search.Prefetch = c.Search.TopK
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	if c.Embedding.Model == "" {
		return fmt.Errorf("embedding.model is required")
	}
	if !collectionNameRegex.MatchString(c.Migrate.Collection) {
		return fmt.Errorf("migrate.collection %q must be alphanumeric with underscores and hyphens",
			c.Migrate.Collection)
	}
	if c.Search.SemanticWeight < 0 || c.Search.LexicalWeight < 0 {
		return fmt.Errorf("search weights must be non-negative, got %g/%g",
			c.Search.SemanticWeight, c.Search.LexicalWeight)
	}
	if c.Metrics.Port < 0 || c.Metrics.Port > 65535 {
		return fmt.Errorf("metrics.port must be between 0 and 65535, got %d", c.Metrics.Port)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
