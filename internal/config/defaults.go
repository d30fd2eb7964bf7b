package config

// Embedding backends.
const (
	BackendONNX    = "onnx"
	BackendOpenAI  = "openai"
	BackendHashing = "hashing"
)

// DefaultTopK is the number of photos returned per query.
const DefaultTopK = 8

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
		if cfg.Debug {
			cfg.Log.Level = "debug"
		}
	}
	if cfg.Log.Encoding == "" {
		cfg.Log.Encoding = "json"
		if cfg.Debug {
			cfg.Log.Encoding = "console"
		}
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 7860
	}
	if cfg.Server.RateLimit > 0 && cfg.Server.RateBurst == 0 {
		cfg.Server.RateBurst = 1
	}
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = 60
	}
	if cfg.Corpus.EmbeddingsPath == "" {
		cfg.Corpus.EmbeddingsPath = "/usr/local/var/picsearch/data/unsplash-25k-photos-embeddings.msgpack"
	}
	if cfg.Corpus.PhotosDir == "" {
		cfg.Corpus.PhotosDir = "/usr/local/var/picsearch/data/photos"
	}
	if cfg.Embedding.Backend == "" {
		cfg.Embedding.Backend = BackendONNX
	}
	if cfg.Embedding.ModelPath == "" {
		cfg.Embedding.ModelPath = "/usr/local/var/picsearch/data/models/clip-vit-base-patch32-text.onnx"
	}
	if cfg.Embedding.VocabPath == "" {
		cfg.Embedding.VocabPath = "/usr/local/var/picsearch/data/models/vocab.json"
	}
	if cfg.Embedding.MergesPath == "" {
		cfg.Embedding.MergesPath = "/usr/local/var/picsearch/data/models/merges.txt"
	}
	if cfg.Embedding.OutputName == "" {
		cfg.Embedding.OutputName = "text_embeds"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 512
	}
	if cfg.Embedding.MaxTokens == 0 {
		cfg.Embedding.MaxTokens = 77
	}
	if cfg.Embedding.CacheSize == 0 && !cfg.Embedding.DisableCache {
		cfg.Embedding.CacheSize = 1024
	}
	if cfg.Embedding.OpenAI.APIKeyEnv == "" {
		cfg.Embedding.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
	}
	if cfg.Search.TopK == 0 {
		cfg.Search.TopK = DefaultTopK
	}
	if cfg.Search.MaxConcurrent == 0 {
		cfg.Search.MaxConcurrent = 1
	}
}
