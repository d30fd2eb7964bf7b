package embedding

import (
	"context"
	"testing"
)

func TestEmbeddingCache_GetSet(t *testing.T) {
	c := NewEmbeddingCache(2)
	if v, ok := c.Get("a"); ok || v != nil {
		t.Fatal("expected miss")
	}
	c.Set("a", []float32{1, 2, 3})
	v, ok := c.Get("a")
	if !ok || len(v) != 3 || v[0] != 1 {
		t.Errorf("Get: got %v, %v", v, ok)
	}
	c.Set("b", []float32{4, 5})
	c.Set("c", []float32{6}) // evicts a
	if _, ok := c.Get("a"); ok {
		t.Error("expected a to be evicted")
	}
	if _, ok := c.Get("b"); !ok {
		t.Error("expected b to remain")
	}
	if _, ok := c.Get("c"); !ok {
		t.Error("expected c to be present")
	}
	if c.Len() != 2 {
		t.Errorf("Len=%d", c.Len())
	}
}

type countingEmbedder struct {
	*HashingEmbedder
	calls int
}

func (c *countingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	c.calls++
	return c.HashingEmbedder.Embed(ctx, text)
}

func TestWithCache(t *testing.T) {
	inner := &countingEmbedder{HashingEmbedder: NewHashingEmbedder(8)}
	e := WithCache(inner, 4)
	ctx := context.Background()

	first, err := e.Embed(ctx, "two cats")
	if err != nil {
		t.Fatal(err)
	}
	second, err := e.Embed(ctx, "two cats")
	if err != nil {
		t.Fatal(err)
	}
	if inner.calls != 1 {
		t.Errorf("inner embedder called %d times, want 1", inner.calls)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatal("cached embedding differs")
		}
	}
	if _, err := e.EmbedBatch(ctx, []string{"two cats", "a plane"}); err != nil {
		t.Fatal(err)
	}
	if inner.calls != 2 {
		t.Errorf("batch should reuse cache, inner calls = %d", inner.calls)
	}
	if e.Dimensions() != 8 {
		t.Errorf("Dimensions=%d", e.Dimensions())
	}
}

func TestWithCache_Disabled(t *testing.T) {
	inner := NewHashingEmbedder(8)
	if got := WithCache(inner, 0); got != Embedder(inner) {
		t.Error("size 0 should return the embedder unchanged")
	}
}
