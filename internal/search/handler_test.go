package search

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hyperjump/picsearch/internal/corpus"
	"github.com/hyperjump/picsearch/internal/embedding"
	"github.com/hyperjump/picsearch/internal/models"
	"github.com/hyperjump/picsearch/internal/photos"
	"github.com/hyperjump/picsearch/internal/vector"
)

// conceptEmbedder maps words to fixed axes so relevance is predictable without model weights.
type conceptEmbedder struct {
	axes map[string]int
	dims int
	err  error
}

func newConceptEmbedder() *conceptEmbedder {
	return &conceptEmbedder{
		axes: map[string]int{"cat": 0, "cats": 0, "airplane": 1, "plane": 1, "dog": 2, "beach": 3},
		dims: 4,
	}
}

func (e *conceptEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	vec := make([]float32, e.dims)
	for _, w := range embedding.Words(text) {
		if axis, ok := e.axes[w]; ok {
			vec[axis]++
		}
	}
	vector.NormalizeL2(vec)
	return vec, nil
}

func (e *conceptEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (e *conceptEmbedder) Dimensions() int { return e.dims }
func (e *conceptEmbedder) Close() error    { return nil }

type fixture struct {
	corpus *corpus.Corpus
	lib    *photos.Library
	index  *vector.MemoryIndex
}

func writePNG(t *testing.T, path string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, image.NewGray(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatal(err)
	}
}

func newFixture(t *testing.T, names []string, vectors [][]float32) *fixture {
	t.Helper()
	dir := t.TempDir()
	for _, name := range names {
		writePNG(t, filepath.Join(dir, name))
	}
	c, err := corpus.New(names, vectors)
	if err != nil {
		t.Fatal(err)
	}
	idx, err := vector.NewMemoryIndex(c.Vectors())
	if err != nil {
		t.Fatal(err)
	}
	return &fixture{corpus: c, lib: photos.NewLibrary(dir), index: idx}
}

func (f *fixture) handler(t *testing.T, e embedding.Embedder, opts ...Option) *Handler {
	t.Helper()
	h, err := NewHandler(e, f.index, f.corpus, f.lib, opts...)
	if err != nil {
		t.Fatal(err)
	}
	return h
}

// pseudo-random but reproducible corpus of n photos in 4 dimensions
func generated(n int) ([]string, [][]float32) {
	names := make([]string, n)
	vectors := make([][]float32, n)
	for i := range n {
		names[i] = fmt.Sprintf("photo-%02d.png", i)
		vectors[i] = []float32{
			float32((i*7)%11) - 5,
			float32((i*3)%5) + 1,
			float32((i*13)%17) - 8,
			float32(i%4) + 0.5,
		}
	}
	return names, vectors
}

func TestHandler_ResultCount(t *testing.T) {
	tests := []struct {
		corpusSize int
		want       int
	}{
		{0, 0},
		{1, 1},
		{5, 5},
		{8, 8},
		{9, 8},
		{30, 8},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("n=%d", tt.corpusSize), func(t *testing.T) {
			names, vectors := generated(tt.corpusSize)
			f := newFixture(t, names, vectors)
			h := f.handler(t, newConceptEmbedder())

			resp, err := h.Search(context.Background(), "cat on the beach")
			if err != nil {
				t.Fatalf("Search() error = %v", err)
			}
			if len(resp.Results) != tt.want || resp.Total != tt.want {
				t.Errorf("got %d results (total %d), want %d", len(resp.Results), resp.Total, tt.want)
			}
		})
	}
}

func TestHandler_DescendingScores(t *testing.T) {
	names, vectors := generated(20)
	f := newFixture(t, names, vectors)
	h := f.handler(t, newConceptEmbedder())

	resp, err := h.Search(context.Background(), "dog")
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i < len(resp.Results); i++ {
		if resp.Results[i].Score > resp.Results[i-1].Score {
			t.Errorf("result %d score %f above previous %f", i, resp.Results[i].Score, resp.Results[i-1].Score)
		}
	}
	for i, item := range resp.Results {
		if item.Rank != i+1 {
			t.Errorf("result %d has rank %d", i, item.Rank)
		}
		if item.Label != FormatScore(item.Score) {
			t.Errorf("label %q does not match score %f", item.Label, item.Score)
		}
		if item.Name != names[item.Index] {
			t.Errorf("name %q does not match corpus index %d", item.Name, item.Index)
		}
		if item.Format != "png" || item.Width != 2 || item.Height != 2 {
			t.Errorf("image not loaded: %+v", item)
		}
	}
}

func TestHandler_Deterministic(t *testing.T) {
	names, vectors := generated(15)
	f := newFixture(t, names, vectors)
	h := f.handler(t, embedding.NewHashingEmbedder(4))

	first, err := h.Search(context.Background(), "a plane over the beach")
	if err != nil {
		t.Fatal(err)
	}
	for range 3 {
		again, err := h.Search(context.Background(), "a plane over the beach")
		if err != nil {
			t.Fatal(err)
		}
		if len(again.Results) != len(first.Results) {
			t.Fatalf("result count changed: %d vs %d", len(again.Results), len(first.Results))
		}
		for i := range first.Results {
			a, b := first.Results[i], again.Results[i]
			if a.Name != b.Name || a.Score != b.Score || a.Label != b.Label {
				t.Errorf("result %d differs: %+v vs %+v", i, a, b)
			}
		}
	}
}

func TestHandler_IdenticalVectorScoresFull(t *testing.T) {
	e := newConceptEmbedder()
	target, _ := e.Embed(context.Background(), "dog")
	names := []string{"a.png", "b.png", "dog.png"}
	vectors := [][]float32{{1, 0, 0, 0}, {0, 1, 0, 0}, target}
	f := newFixture(t, names, vectors)
	h := f.handler(t, e)

	resp, err := h.Search(context.Background(), "dog")
	if err != nil {
		t.Fatal(err)
	}
	top := resp.Results[0]
	if top.Name != "dog.png" || top.Label != "100.00%" {
		t.Errorf("top result = %s %s, want dog.png 100.00%%", top.Name, top.Label)
	}
}

func TestHandler_CatsAboveAirplane(t *testing.T) {
	names := []string{"airplane.png", "beach.png", "cat.png", "dog.png"}
	vectors := [][]float32{
		{0.05, 0.95, 0.1, 0.2},
		{0.1, 0.1, 0.1, 0.9},
		{0.9, 0.05, 0.3, 0.1},
		{0.3, 0.05, 0.9, 0.1},
	}
	f := newFixture(t, names, vectors)
	h := f.handler(t, newConceptEmbedder())

	resp, err := h.Search(context.Background(), "Two cats")
	if err != nil {
		t.Fatal(err)
	}
	rank := func(name string) int {
		return slices.IndexFunc(resp.Results, func(item *models.ResultItem) bool { return item.Name == name })
	}
	if rank("cat.png") != 0 {
		t.Errorf("cat.png ranked %d, want 0", rank("cat.png"))
	}
	if rank("cat.png") > rank("airplane.png") {
		t.Errorf("cat.png should rank above airplane.png")
	}
}

func TestHandler_EmptyCorpus(t *testing.T) {
	f := newFixture(t, nil, nil)
	h := f.handler(t, embedding.NewHashingEmbedder(512))

	resp, err := h.Search(context.Background(), "anything")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if resp.Results == nil || len(resp.Results) != 0 {
		t.Errorf("expected empty non-nil results, got %v", resp.Results)
	}
}

func TestHandler_EmptyQuery(t *testing.T) {
	names, vectors := generated(3)
	f := newFixture(t, names, vectors)
	h := f.handler(t, newConceptEmbedder())

	resp, err := h.Search(context.Background(), "")
	if err != nil {
		t.Fatalf("empty query should be passed through, got %v", err)
	}
	for _, item := range resp.Results {
		if item.Label != "0.00%" {
			t.Errorf("zero query vector should score 0, got %s", item.Label)
		}
	}
}

func TestHandler_EncodingError(t *testing.T) {
	names, vectors := generated(3)
	f := newFixture(t, names, vectors)
	e := newConceptEmbedder()
	cause := errors.New("model exploded")
	e.err = cause
	h := f.handler(t, e)

	_, err := h.Search(context.Background(), "cat")
	var encErr *EncodingError
	if !errors.As(err, &encErr) {
		t.Fatalf("expected *EncodingError, got %v", err)
	}
	if encErr.Query != "cat" || !errors.Is(err, cause) {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestHandler_ImageLoadError(t *testing.T) {
	names, vectors := generated(4)
	f := newFixture(t, names, vectors)
	if err := os.Remove(filepath.Join(f.lib.Dir(), names[2])); err != nil {
		t.Fatal(err)
	}
	h := f.handler(t, newConceptEmbedder())

	resp, err := h.Search(context.Background(), "cat")
	if resp != nil {
		t.Error("failed search should not return partial results")
	}
	var loadErr *photos.LoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("expected *photos.LoadError, got %v", err)
	}
	if loadErr.Name != names[2] {
		t.Errorf("Name = %s, want %s", loadErr.Name, names[2])
	}
}

func TestNewHandler_Mismatch(t *testing.T) {
	names, vectors := generated(3)
	f := newFixture(t, names, vectors)

	if _, err := NewHandler(embedding.NewHashingEmbedder(8), f.index, f.corpus, f.lib); err == nil {
		t.Error("expected dimension mismatch error")
	}

	other, err := vector.NewMemoryIndex(vectors[:2])
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewHandler(newConceptEmbedder(), other, f.corpus, f.lib); err == nil {
		t.Error("expected index size mismatch error")
	}
}

func TestHandler_Options(t *testing.T) {
	names, vectors := generated(10)
	f := newFixture(t, names, vectors)
	h := f.handler(t, newConceptEmbedder(), WithTopK(3), WithMaxConcurrent(2), WithLogger(nil))

	if h.TopK() != 3 {
		t.Errorf("TopK() = %d", h.TopK())
	}
	if h.CorpusSize() != 10 || h.Dimensions() != 4 {
		t.Errorf("CorpusSize() = %d, Dimensions() = %d", h.CorpusSize(), h.Dimensions())
	}
	resp, err := h.Search(context.Background(), "cat")
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Results) != 3 {
		t.Errorf("got %d results, want 3", len(resp.Results))
	}
	if !strings.HasPrefix(resp.Query, "cat") || resp.ID == "" {
		t.Errorf("unexpected response header: %+v", resp)
	}
}

func TestHandler_ConcurrentSearches(t *testing.T) {
	names, vectors := generated(12)
	f := newFixture(t, names, vectors)
	h := f.handler(t, newConceptEmbedder(), WithMaxConcurrent(2))

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := range 16 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			query := []string{"cat", "dog", "plane", "beach"}[i%4]
			if _, err := h.Search(context.Background(), query); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestHandler_CanceledWhileWaiting(t *testing.T) {
	names, vectors := generated(3)
	f := newFixture(t, names, vectors)
	h := f.handler(t, newConceptEmbedder(), WithMaxConcurrent(1))

	// hold the only slot
	if err := h.slots.Acquire(context.Background(), 1); err != nil {
		t.Fatal(err)
	}
	defer h.slots.Release(1)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := h.Search(ctx, "cat"); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}
