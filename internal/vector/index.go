// Package vector provides cosine similarity search over a fixed set of embedding vectors.
package vector

import "context"

// Searcher ranks corpus vectors against a query vector.
type Searcher interface {
	Search(ctx context.Context, query []float32, k int) ([]Hit, error)
	Size() int
	Dimensions() int
}

// Hit is a single search result: the position of a vector in the corpus and its score.
type Hit struct {
	Index int     `json:"index"`
	Score float64 `json:"score"` // cosine similarity in [-1, 1]
}
