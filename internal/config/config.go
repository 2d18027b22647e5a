// Package config provides configuration loading and structs for the kioku server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug      bool             `yaml:"debug"`
	Server     ServerConfig     `yaml:"server"`
	Storage    StorageConfig    `yaml:"storage"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Vector     VectorConfig     `yaml:"vector"`
	Chunking   ChunkingConfig   `yaml:"chunking"`
	QA         QAConfig         `yaml:"qa"`
	Search     SearchConfig     `yaml:"search"`
	Summarizer SummarizerConfig `yaml:"summarizer"`
	OpenAI     OpenAIConfig     `yaml:"openai"`
	Watch      WatchConfig      `yaml:"watch"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	MaxUploadMB int    `yaml:"max_upload_mb"`
}

// StorageConfig holds paths for the source database and the knowledge files.
type StorageConfig struct {
	DatabasePath    string `yaml:"database_path"`
	BleveIndexPath  string `yaml:"bleve_index_path"`
	VectorIndexPath string `yaml:"vector_index_path"`
	DocumentsPath   string `yaml:"documents_path"`
	// Persist controls whether the knowledge files are written at all; nil means true.
	Persist *bool `yaml:"persist"`
}

// PersistOrDefault returns whether knowledge files are persisted; defaults to true when unset.
func (s *StorageConfig) PersistOrDefault() bool {
	if s.Persist != nil {
		return *s.Persist
	}
	return true
}

// EmbeddingConfig selects and configures the embedder.
type EmbeddingConfig struct {
	// Provider is one of "onnx", "openai" or "hash".
	Provider   string `yaml:"provider"`
	ModelPath  string `yaml:"model_path"`
	VocabPath  string `yaml:"vocab_path"`
	Dimensions int    `yaml:"dimensions"`
	MaxTokens  int    `yaml:"max_tokens"`
	CacheSize  int    `yaml:"cache_size"`
	// Model is the remote embedding model name (openai provider).
	Model string `yaml:"model"`
}

// VectorConfig selects the vector index implementation.
type VectorConfig struct {
	IndexType string `yaml:"index_type"`
}

// ChunkingConfig holds sentence-aware chunking limits, in characters.
type ChunkingConfig struct {
	MaxChars int `yaml:"max_chars"`
	Overlap  int `yaml:"overlap"`
}

// QAConfig configures question answering.
type QAConfig struct {
	// Mode is "extractive" or "generative".
	Mode     string  `yaml:"mode"`
	TopK     int     `yaml:"top_k"`
	MinScore float64 `yaml:"min_score"`
	// MaxDistance drops retrieved chunks farther than this squared L2 distance. 0 disables.
	MaxDistance float64 `yaml:"max_distance"`
	Model       string  `yaml:"model"`
	MaxTokens   int     `yaml:"max_tokens"`
}

// SearchConfig weights the two halves of source search.
type SearchConfig struct {
	KeywordWeight  float64 `yaml:"keyword_weight"`
	SemanticWeight float64 `yaml:"semantic_weight"`
	TopKCandidates int     `yaml:"top_k_candidates"`
	// MaxDistance bounds the chunks that count as semantic evidence for a source.
	MaxDistance float64 `yaml:"max_distance"`
	MinScore    float64 `yaml:"min_score"`
}

// SummarizerConfig configures summaries and key points.
type SummarizerConfig struct {
	// Provider is "frequency" or "openai".
	Provider  string `yaml:"provider"`
	MinLength int    `yaml:"min_length"`
	MaxLength int    `yaml:"max_length"`
	KeyPoints int    `yaml:"key_points"`
	Model     string `yaml:"model"`
}

// OpenAIConfig holds settings shared by every OpenAI-compatible client.
type OpenAIConfig struct {
	BaseURL   string `yaml:"base_url"`
	APIKeyEnv string `yaml:"api_key_env"`
}

// APIKey returns the API key from the configured environment variable.
func (o *OpenAIConfig) APIKey() string {
	return os.Getenv(o.APIKeyEnv)
}

// WatchConfig holds directory watch settings.
type WatchConfig struct {
	Directories []string `yaml:"directories"`
	Extensions  []string `yaml:"extensions"`
	Recursive   *bool    `yaml:"recursive"`
}

// RecursiveOrDefault returns whether to watch recursively; defaults to true when unset.
func (w *WatchConfig) RecursiveOrDefault() bool {
	if w.Recursive != nil {
		return *w.Recursive
	}
	return true
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)
	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	configDir := filepath.Dir(path)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	cfg.Storage.BleveIndexPath = expandPath(cfg.Storage.BleveIndexPath, configDir)
	cfg.Storage.VectorIndexPath = expandPath(cfg.Storage.VectorIndexPath, configDir)
	cfg.Storage.DocumentsPath = expandPath(cfg.Storage.DocumentsPath, configDir)
	if cfg.Embedding.ModelPath != "" {
		cfg.Embedding.ModelPath = expandPath(cfg.Embedding.ModelPath, configDir)
	}
	if cfg.Embedding.VocabPath != "" {
		cfg.Embedding.VocabPath = expandPath(cfg.Embedding.VocabPath, configDir)
	}
	for i := range cfg.Watch.Directories {
		cfg.Watch.Directories[i] = expandPath(cfg.Watch.Directories[i], configDir)
	}

	return &cfg, nil
}

// Validate rejects settings that ApplyDefaults cannot repair.
func Validate(cfg *Config) error {
	switch cfg.QA.Mode {
	case QAModeExtractive, QAModeGenerative:
	default:
		return fmt.Errorf("invalid qa.mode %q (supported: %s, %s)", cfg.QA.Mode, QAModeExtractive, QAModeGenerative)
	}
	switch cfg.Embedding.Provider {
	case EmbeddingONNX, EmbeddingOpenAI, EmbeddingHash:
	default:
		return fmt.Errorf("invalid embedding.provider %q", cfg.Embedding.Provider)
	}
	switch cfg.Summarizer.Provider {
	case SummarizerFrequency, SummarizerOpenAI:
	default:
		return fmt.Errorf("invalid summarizer.provider %q", cfg.Summarizer.Provider)
	}
	if cfg.Search.KeywordWeight < 0 || cfg.Search.SemanticWeight < 0 {
		return fmt.Errorf("search weights must not be negative")
	}
	if cfg.Search.KeywordWeight == 0 && cfg.Search.SemanticWeight == 0 {
		return fmt.Errorf("at least one of search.keyword_weight and search.semantic_weight must be positive")
	}
	if cfg.Chunking.Overlap < 0 {
		return fmt.Errorf("chunking.overlap must not be negative")
	}
	return nil
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
