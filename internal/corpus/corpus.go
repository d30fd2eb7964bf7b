// Package corpus loads the photo corpus: image filenames paired one-to-one with
// precomputed image embeddings. A Corpus is immutable once built.
package corpus

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"
)

// Format identifies an on-disk corpus encoding.
type Format string

const (
	// FormatMsgpack is a msgpack array of [names, vectors].
	FormatMsgpack Format = "msgpack"
	// FormatSQLite is a SQLite database with a photos(idx, name, embedding) table.
	FormatSQLite Format = "sqlite"
)

// Corpus is an ordered sequence of photo names with the embedding at the same position.
type Corpus struct {
	names      []string
	vectors    [][]float32
	dimensions int
}

// New validates and copies names and vectors into a Corpus.
// The two slices must have equal length and every vector the same non-zero dimension
// with only finite components.
func New(names []string, vectors [][]float32) (*Corpus, error) {
	if len(names) != len(vectors) {
		return nil, fmt.Errorf("length mismatch: %d names, %d vectors", len(names), len(vectors))
	}
	c := &Corpus{
		names:   make([]string, len(names)),
		vectors: make([][]float32, len(vectors)),
	}
	copy(c.names, names)
	for i, v := range vectors {
		if i == 0 {
			c.dimensions = len(v)
		}
		if len(v) == 0 || len(v) != c.dimensions {
			return nil, fmt.Errorf("vector %d (%s) has dimension %d, expected %d", i, names[i], len(v), c.dimensions)
		}
		vec := make([]float32, len(v))
		for j, x := range v {
			if math.IsNaN(float64(x)) || math.IsInf(float64(x), 0) {
				return nil, fmt.Errorf("vector %d (%s) has non-finite component %d: %v", i, names[i], j, x)
			}
			vec[j] = x
		}
		c.vectors[i] = vec
	}
	return c, nil
}

// Len returns the number of photos.
func (c *Corpus) Len() int {
	return len(c.names)
}

// Dimensions returns the embedding dimension, or 0 for an empty corpus.
func (c *Corpus) Dimensions() int {
	return c.dimensions
}

// Name returns the photo filename at position i.
func (c *Corpus) Name(i int) string {
	return c.names[i]
}

// Names returns a copy of all photo filenames in corpus order.
func (c *Corpus) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// Vectors returns the embeddings in corpus order. The outer slice is a copy;
// the vectors themselves are shared and must be treated as read-only.
func (c *Corpus) Vectors() [][]float32 {
	out := make([][]float32, len(c.vectors))
	copy(out, c.vectors)
	return out
}

// FormatFromPath picks the encoding from the file extension. Unknown extensions are msgpack.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return FormatSQLite
	default:
		return FormatMsgpack
	}
}

// Load reads the corpus at path in the format implied by its extension.
// Any failure is reported as a *LoadError.
func Load(path string) (*Corpus, error) {
	var (
		c   *Corpus
		err error
	)
	switch FormatFromPath(path) {
	case FormatSQLite:
		c, err = loadSQLite(path)
	default:
		c, err = loadMsgpack(path)
	}
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return c, nil
}

// Save writes c to path in the format implied by its extension, replacing any existing file.
func Save(path string, c *Corpus) error {
	switch FormatFromPath(path) {
	case FormatSQLite:
		return saveSQLite(path, c)
	default:
		return saveMsgpack(path, c)
	}
}
