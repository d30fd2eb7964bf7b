package main

import (
	"fmt"

	"github.com/hyperjump/picsearch/internal/config"
	"github.com/hyperjump/picsearch/internal/corpus"
	"github.com/hyperjump/picsearch/internal/embedding"
	"github.com/hyperjump/picsearch/internal/photos"
	"github.com/hyperjump/picsearch/internal/search"
	"github.com/hyperjump/picsearch/internal/vector"
	"go.uber.org/zap"
)

// Components holds the immutable search context built once at startup.
type Components struct {
	Corpus   *corpus.Corpus
	Photos   *photos.Library
	Embedder embedding.Embedder
	Index    *vector.MemoryIndex
	Handler  *search.Handler
}

func (c *Components) Close() {
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	c, err := corpus.Load(cfg.Corpus.EmbeddingsPath)
	if err != nil {
		return nil, err
	}
	logger.Info("corpus loaded",
		zap.String("path", cfg.Corpus.EmbeddingsPath),
		zap.Int("photos", c.Len()),
		zap.Int("dimensions", c.Dimensions()))

	if c.Len() > 0 && cfg.Embedding.Dimensions != c.Dimensions() {
		logger.Warn("embedding dimensions differ from corpus, using corpus dimensions",
			zap.Int("configured", cfg.Embedding.Dimensions),
			zap.Int("corpus", c.Dimensions()))
		cfg.Embedding.Dimensions = c.Dimensions()
	}
	embedder, err := embedding.New(cfg.Embedding, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}

	index, err := vector.NewMemoryIndex(c.Vectors())
	if err != nil {
		_ = embedder.Close()
		return nil, fmt.Errorf("failed to build vector index: %w", err)
	}
	logger.Info("vector index initialized",
		zap.String("type", index.Type()),
		zap.Int("size", index.Size()))

	lib := photos.NewLibrary(cfg.Corpus.PhotosDir)
	handler, err := search.NewHandler(embedder, index, c, lib,
		search.WithTopK(cfg.Search.TopK),
		search.WithMaxConcurrent(cfg.Search.MaxConcurrent),
		search.WithLogger(logger),
	)
	if err != nil {
		_ = embedder.Close()
		return nil, err
	}
	return &Components{
		Corpus:   c,
		Photos:   lib,
		Embedder: embedder,
		Index:    index,
		Handler:  handler,
	}, nil
}
