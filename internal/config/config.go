// Package config provides configuration loading and structs for the Kotae server.
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
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Cache     CacheConfig     `yaml:"cache"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Bedrock   BedrockConfig   `yaml:"bedrock"`
	FAQ       FAQConfig       `yaml:"faq"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig holds paths for the database, vector cache, and keyword index.
type StorageConfig struct {
	DatabasePath     string `yaml:"database_path"`
	CacheDir         string `yaml:"cache_dir"`
	KeywordIndexPath string `yaml:"keyword_index_path"`
}

// EmbeddingConfig holds embedder settings. ModelID names the embedding model for
// cache compatibility checks; ModelPath points at the ONNX file when CGO is used.
type EmbeddingConfig struct {
	ModelPath  string `yaml:"model_path"`
	ModelID    string `yaml:"model_id"`
	Dimensions int    `yaml:"dimensions"`
	MaxTokens  int    `yaml:"max_tokens"`
	CacheSize  int    `yaml:"cache_size"`
}

// CacheConfig holds rebuild settings for the vector cache.
type CacheConfig struct {
	// Metric is the distance metric: "l2" or "cosine".
	Metric string `yaml:"metric"`
	// EmbedWorkers bounds concurrent embedding calls during a rebuild.
	EmbedWorkers int `yaml:"embed_workers"`
	// EmbedRetries is the number of attempts per document before it is skipped.
	EmbedRetries int `yaml:"embed_retries"`
}

// RetrievalConfig holds semantic search settings.
type RetrievalConfig struct {
	TopK    int `yaml:"top_k"`
	MaxTopK int `yaml:"max_top_k"`
	// ContextPrefix is prepended to the primary query phrasing, e.g. a product
	// name followed by "について：" for Japanese queries.
	ContextPrefix string `yaml:"context_prefix"`
}

// BedrockConfig holds answer composer settings.
type BedrockConfig struct {
	Region    string `yaml:"region"`
	ModelID   string `yaml:"model_id"`
	MaxTokens int    `yaml:"max_tokens"`
}

// FAQConfig holds validation limits for FAQ content.
type FAQConfig struct {
	MaxQuestionLength int `yaml:"max_question_length"`
	MaxAnswerLength   int `yaml:"max_answer_length"`
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

	configDir := filepath.Dir(path)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	cfg.Storage.CacheDir = expandPath(cfg.Storage.CacheDir, configDir)
	cfg.Storage.KeywordIndexPath = expandPath(cfg.Storage.KeywordIndexPath, configDir)
	cfg.Embedding.ModelPath = expandPath(cfg.Embedding.ModelPath, configDir)

	return &cfg, nil
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
