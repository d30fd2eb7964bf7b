package embedding

import (
	"fmt"
	"os"

	"github.com/hyperjump/picsearch/internal/config"
	"go.uber.org/zap"
)

// New builds the embedder selected by cfg.Backend and wraps it in the query cache.
// When the ONNX backend cannot start (missing model, tokenizer files, or CGO), New fails
// unless cfg.Fallback is set, in which case it logs a warning and uses the hashing embedder.
func New(cfg config.EmbeddingConfig, logger *zap.Logger) (Embedder, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	var (
		e   Embedder
		err error
	)
	switch cfg.Backend {
	case config.BackendONNX, "":
		e, err = newONNX(cfg)
		if err != nil {
			if !cfg.Fallback {
				return nil, fmt.Errorf("onnx embedder unavailable (set embedding.fallback to use the hashing embedder): %w", err)
			}
			logger.Warn("ONNX embedder unavailable, falling back to hashing embedder",
				zap.String("model_path", cfg.ModelPath),
				zap.Error(err))
			e = NewHashingEmbedder(cfg.Dimensions)
		}
	case config.BackendOpenAI:
		e, err = NewOpenAIEmbedder(OpenAIOptions{
			APIKey:     os.Getenv(cfg.OpenAI.APIKeyEnv),
			BaseURL:    cfg.OpenAI.BaseURL,
			Model:      cfg.OpenAI.Model,
			Dimensions: cfg.Dimensions,
		})
		if err != nil {
			return nil, err
		}
	case config.BackendHashing:
		e = NewHashingEmbedder(cfg.Dimensions)
	default:
		return nil, fmt.Errorf("unknown embedding backend: %s (supported: onnx, openai, hashing)", cfg.Backend)
	}
	logger.Info("embedder initialized",
		zap.String("backend", Backend(e)),
		zap.Int("dimensions", e.Dimensions()),
		zap.Int("cache_size", cfg.CacheSize))
	return WithCache(e, cfg.CacheSize), nil
}

func newONNX(cfg config.EmbeddingConfig) (Embedder, error) {
	tok, err := LoadCLIPTokenizer(cfg.VocabPath, cfg.MergesPath)
	if err != nil {
		return nil, err
	}
	return NewONNXEmbedder(ONNXOptions{
		ModelPath:   cfg.ModelPath,
		LibraryPath: cfg.LibraryPath,
		OutputName:  cfg.OutputName,
		Dimensions:  cfg.Dimensions,
		MaxTokens:   cfg.MaxTokens,
		Tokenizer:   tok,
	})
}

// Backend names the implementation behind e, looking through the cache wrapper.
func Backend(e Embedder) string {
	switch v := e.(type) {
	case *CachedEmbedder:
		return Backend(v.Embedder)
	case *ONNXEmbedder:
		return config.BackendONNX
	case *OpenAIEmbedder:
		return config.BackendOpenAI
	case *HashingEmbedder:
		return config.BackendHashing
	default:
		return fmt.Sprintf("%T", e)
	}
}
