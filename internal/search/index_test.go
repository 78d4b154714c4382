package search

import (
	"context"
	"errors"
	"testing"

	openai "github.com/sashabaranov/go-openai"

	"negobot/internal/catalog"
	"negobot/internal/model"
)

func seedCatalog() *catalog.Memory {
	return catalog.NewMemory(
		model.Product{ID: 1, Name: "Wireless Headphones", Description: "Noise cancelling over-ear headphones", Price: 2500000, Stock: 20},
		model.Product{ID: 2, Name: "Bluetooth Speaker", Description: "Portable party speaker", Price: 1000000, Stock: 2},
		model.Product{ID: 3, Name: "Running Shoes", Description: "Lightweight running shoes", Price: 450000, Stock: 8},
	)
}

func TestHashingEmbedderDeterministic(t *testing.T) {
	e := NewHashing()
	a, err := e.Embed(context.Background(), "wireless headphones")
	if err != nil {
		t.Fatal(err)
	}
	b, _ := e.Embed(context.Background(), "wireless headphones")
	for i := range a {
		if a[i] != b[i] {
			t.Fatal("hashing embedder not deterministic")
		}
	}
	if len(a) != HashDims {
		t.Errorf("dims = %d, want %d", len(a), HashDims)
	}
}

func TestHashingEmbedderNormalized(t *testing.T) {
	e := NewHashing()
	vec, _ := e.Embed(context.Background(), "portable party speaker")
	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm < 0.999 || norm > 1.001 {
		t.Errorf("vector norm = %f, want 1", norm)
	}
}

func TestIndexRebuildAndSearch(t *testing.T) {
	cat := seedCatalog()
	ix := NewIndex(cat, NewHashing())
	ctx := context.Background()

	n, err := ix.Rebuild(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Fatalf("indexed %d products, want 3", n)
	}

	results, err := ix.Search(ctx, "noise cancelling headphones", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Product.ID != 1 {
		t.Errorf("top hit = %d (%s), want the headphones", results[0].Product.ID, results[0].Product.Name)
	}
	if results[0].Score < results[1].Score {
		t.Error("results not sorted by score")
	}
}

func TestIndexPersistsAndReloads(t *testing.T) {
	cat := seedCatalog()
	ctx := context.Background()

	first := NewIndex(cat, NewHashing())
	if _, err := first.Rebuild(ctx); err != nil {
		t.Fatal(err)
	}

	// A fresh index over the same catalog loads the persisted vectors.
	second := NewIndex(cat, NewHashing())
	if err := second.Load(ctx); err != nil {
		t.Fatal(err)
	}
	results, err := second.Search(ctx, "running shoes", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Product.ID != 3 {
		t.Errorf("reloaded index gave %+v", results)
	}
}

func TestIndexSkipsUnembeddedProducts(t *testing.T) {
	cat := seedCatalog()
	ix := NewIndex(cat, NewHashing())
	ctx := context.Background()

	// No rebuild: nothing embedded, nothing returned.
	results, err := ix.Search(ctx, "headphones", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results from an empty index", len(results))
	}
}

// fakeEmbeddingClient fails every call.
type fakeEmbeddingClient struct{ err error }

func (f *fakeEmbeddingClient) CreateEmbeddings(context.Context, openai.EmbeddingRequestConverter) (openai.EmbeddingResponse, error) {
	return openai.EmbeddingResponse{}, f.err
}

func TestOpenAIEmbedderError(t *testing.T) {
	e := newOpenAIWithClient(&fakeEmbeddingClient{err: errors.New("quota")})
	if _, err := e.Embed(context.Background(), "anything"); err == nil {
		t.Fatal("expected error")
	}
}

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 0}, []float32{1, 0}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"mismatched dims", []float32{1}, []float32{1, 0}, 0},
		{"zero vector", []float32{0, 0}, []float32{1, 0}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cosine(tt.a, tt.b)
			if got < tt.want-1e-9 || got > tt.want+1e-9 {
				t.Errorf("cosine = %f, want %f", got, tt.want)
			}
		})
	}
}
