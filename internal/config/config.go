// Package config provides configuration loading and structs for the picsearch server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the environment variable that overrides the config file location.
const EnvConfigPath = "PICSEARCH_CONFIG"

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Log       LogConfig       `yaml:"log"`
	Server    ServerConfig    `yaml:"server"`
	Corpus    CorpusConfig    `yaml:"corpus"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Search    SearchConfig    `yaml:"search"`
}

// LogConfig holds logger settings. Level is one of debug, info, warn, error.
type LogConfig struct {
	Level    string `yaml:"level"`
	Encoding string `yaml:"encoding"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	// RateLimit is the sustained number of search requests per second; 0 disables limiting.
	RateLimit float64 `yaml:"rate_limit"`
	RateBurst int     `yaml:"rate_burst"`
	// RequestTimeout is in seconds.
	RequestTimeout int `yaml:"request_timeout"`
}

// CorpusConfig holds the locations of the photo directory and its precomputed embeddings.
type CorpusConfig struct {
	EmbeddingsPath string `yaml:"embeddings_path"`
	PhotosDir      string `yaml:"photos_dir"`
}

// EmbeddingConfig holds text encoder settings.
type EmbeddingConfig struct {
	Backend      string       `yaml:"backend"`
	ModelPath    string       `yaml:"model_path"`
	VocabPath    string       `yaml:"vocab_path"`
	MergesPath   string       `yaml:"merges_path"`
	LibraryPath  string       `yaml:"onnx_library_path"`
	OutputName   string       `yaml:"output_name"`
	Dimensions   int          `yaml:"dimensions"`
	MaxTokens    int          `yaml:"max_tokens"`
	CacheSize    int          `yaml:"cache_size"`
	DisableCache bool         `yaml:"disable_cache"`
	// Fallback lets the onnx backend degrade to the hashing embedder when the model
	// cannot be loaded. Hashing vectors are not in CLIP space, so rankings are only
	// useful against corpora embedded the same way.
	Fallback bool         `yaml:"fallback"`
	OpenAI   OpenAIConfig `yaml:"openai"`
}

// OpenAIConfig configures an OpenAI-compatible embeddings endpoint serving a CLIP text tower.
type OpenAIConfig struct {
	BaseURL   string `yaml:"base_url"`
	Model     string `yaml:"model"`
	APIKeyEnv string `yaml:"api_key_env"`
}

// SearchConfig holds query handler settings.
type SearchConfig struct {
	TopK          int `yaml:"top_k"`
	MaxConcurrent int `yaml:"max_concurrent"`
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
	cfg.Corpus.EmbeddingsPath = expandPath(cfg.Corpus.EmbeddingsPath, configDir)
	cfg.Corpus.PhotosDir = expandPath(cfg.Corpus.PhotosDir, configDir)
	cfg.Embedding.ModelPath = expandPath(cfg.Embedding.ModelPath, configDir)
	cfg.Embedding.VocabPath = expandPath(cfg.Embedding.VocabPath, configDir)
	cfg.Embedding.MergesPath = expandPath(cfg.Embedding.MergesPath, configDir)
	if cfg.Embedding.LibraryPath != "" {
		cfg.Embedding.LibraryPath = expandPath(cfg.Embedding.LibraryPath, configDir)
	}

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
