package vector

import (
	"context"
	"fmt"
	"slices"
)

// MemoryIndex is an in-memory vector index using brute-force cosine search.
// Vectors are normalized once at construction and never mutated afterwards,
// so concurrent searches need no locking.
type MemoryIndex struct {
	dimensions int
	vectors    [][]float32
}

// NewMemoryIndex builds an index over vectors. Position i in vectors is reported as Hit.Index i.
// All vectors must share one dimension; an empty set is allowed.
func NewMemoryIndex(vectors [][]float32) (*MemoryIndex, error) {
	m := &MemoryIndex{vectors: make([][]float32, len(vectors))}
	for i, v := range vectors {
		if i == 0 {
			m.dimensions = len(v)
			if m.dimensions == 0 {
				return nil, fmt.Errorf("vector 0 is empty")
			}
		}
		if len(v) != m.dimensions {
			return nil, fmt.Errorf("vector dimension mismatch at %d: got %d, expected %d", i, len(v), m.dimensions)
		}
		m.vectors[i] = Normalized(v)
	}
	return m, nil
}

// Search returns the top-k vectors by cosine similarity, highest first.
// Equal scores keep corpus order. An empty index returns no hits for any query.
func (m *MemoryIndex) Search(ctx context.Context, query []float32, k int) ([]Hit, error) {
	if k <= 0 || len(m.vectors) == 0 {
		return []Hit{}, nil
	}
	if len(query) != m.dimensions {
		return nil, fmt.Errorf("query dimension mismatch: got %d, expected %d", len(query), m.dimensions)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	q := Normalized(query)
	hits := make([]Hit, len(m.vectors))
	for i, vec := range m.vectors {
		hits[i] = Hit{Index: i, Score: InnerProduct(q, vec)}
	}
	slices.SortStableFunc(hits, func(a, b Hit) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		}
		return 0
	})
	if k > len(hits) {
		k = len(hits)
	}
	return hits[:k:k], nil
}

// Size returns the number of vectors in the index.
func (m *MemoryIndex) Size() int {
	return len(m.vectors)
}

// Dimensions returns the vector dimension, or 0 for an empty index.
func (m *MemoryIndex) Dimensions() int {
	return m.dimensions
}

// Type returns the index type identifier.
func (m *MemoryIndex) Type() string {
	return "memory"
}
