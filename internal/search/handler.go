// Package search turns a text query into a ranked list of photos from the corpus.
package search

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hyperjump/picsearch/internal/config"
	"github.com/hyperjump/picsearch/internal/corpus"
	"github.com/hyperjump/picsearch/internal/embedding"
	"github.com/hyperjump/picsearch/internal/models"
	"github.com/hyperjump/picsearch/internal/photos"
	"github.com/hyperjump/picsearch/internal/vector"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// Handler answers text queries against a fixed photo corpus. It is built once at
// startup, never mutated afterwards, and safe for concurrent use.
type Handler struct {
	embedder embedding.Embedder
	index    vector.Searcher
	corpus   *corpus.Corpus
	photos   *photos.Library
	topK     int
	slots    *semaphore.Weighted
	logger   *zap.Logger
}

// Option configures a Handler.
type Option func(*Handler)

// WithTopK sets how many photos a query returns.
func WithTopK(k int) Option {
	return func(h *Handler) {
		if k > 0 {
			h.topK = k
		}
	}
}

// WithMaxConcurrent bounds how many queries encode and search at once. Callers
// beyond the limit wait until a slot frees up or their context ends.
func WithMaxConcurrent(n int) Option {
	return func(h *Handler) {
		if n > 0 {
			h.slots = semaphore.NewWeighted(int64(n))
		}
	}
}

// WithLogger sets a logger for per-query debug output.
func WithLogger(l *zap.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

// NewHandler wires the embedder, similarity index, corpus, and photo library together.
// The index must hold the corpus vectors in corpus order, and the embedder must
// produce vectors of the corpus dimension.
func NewHandler(
	embedder embedding.Embedder,
	index vector.Searcher,
	c *corpus.Corpus,
	lib *photos.Library,
	opts ...Option,
) (*Handler, error) {
	if index.Size() != c.Len() {
		return nil, fmt.Errorf("index holds %d vectors, corpus has %d photos", index.Size(), c.Len())
	}
	if c.Len() > 0 && embedder.Dimensions() != c.Dimensions() {
		return nil, fmt.Errorf("embedder produces %d-dimensional vectors, corpus has %d", embedder.Dimensions(), c.Dimensions())
	}
	h := &Handler{
		embedder: embedder,
		index:    index,
		corpus:   c,
		photos:   lib,
		topK:     config.DefaultTopK,
		slots:    semaphore.NewWeighted(1),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Search encodes query, ranks the corpus by cosine similarity, and loads the top photos.
// It returns min(topK, corpus size) items ordered by descending score. Any failing
// photo fails the whole query.
func (h *Handler) Search(ctx context.Context, query string) (*models.SearchResponse, error) {
	if err := h.slots.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer h.slots.Release(1)

	startTime := time.Now()
	queryEmbedding, err := h.embedder.Embed(ctx, query)
	if err != nil {
		return nil, &EncodingError{Query: query, Err: err}
	}
	hits, err := h.index.Search(ctx, queryEmbedding, h.topK)
	if err != nil {
		return nil, fmt.Errorf("similarity search failed: %w", err)
	}

	results := make([]*models.ResultItem, 0, len(hits))
	for i, hit := range hits {
		name := h.corpus.Name(hit.Index)
		img, err := h.photos.Load(name)
		if err != nil {
			return nil, err
		}
		results = append(results, &models.ResultItem{
			Rank:   i + 1,
			Index:  hit.Index,
			Name:   name,
			Score:  hit.Score,
			Label:  FormatScore(hit.Score),
			Format: img.Format,
			Width:  img.Width,
			Height: img.Height,
			Path:   img.Path,
		})
	}

	response := &models.SearchResponse{
		ID:        uuid.NewString(),
		Query:     query,
		Results:   results,
		Total:     len(results),
		QueryTime: time.Since(startTime).Milliseconds(),
	}
	h.logger.Debug("search completed",
		zap.String("id", response.ID),
		zap.String("query", query),
		zap.Int("results", len(results)),
		zap.Int64("query_time_ms", response.QueryTime))
	return response, nil
}

// CorpusSize returns the number of searchable photos.
func (h *Handler) CorpusSize() int {
	return h.corpus.Len()
}

// Dimensions returns the embedding dimension of the corpus.
func (h *Handler) Dimensions() int {
	return h.corpus.Dimensions()
}

// TopK returns the number of photos a query returns at most.
func (h *Handler) TopK() int {
	return h.topK
}

// Backend names the embedding implementation.
func (h *Handler) Backend() string {
	return embedding.Backend(h.embedder)
}
