package search

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"negobot/internal/catalog"
	"negobot/internal/model"
)

// Result is one ranked search hit.
type Result struct {
	Product model.Product `json:"product"`
	Score   float64       `json:"score"`
}

// Index ranks catalog products against a query by cosine similarity.
// Vectors live in memory and are persisted through the catalog store so a
// restart can reload them without re-embedding.
type Index struct {
	catalog  catalog.Store
	embedder Embedder

	mu      sync.RWMutex
	vectors map[int64][]float32
}

// NewIndex creates an index over the catalog using the given embedder.
func NewIndex(cat catalog.Store, embedder Embedder) *Index {
	return &Index{
		catalog:  cat,
		embedder: embedder,
		vectors:  make(map[int64][]float32),
	}
}

// Load pulls previously persisted embeddings from the catalog.
func (ix *Index) Load(ctx context.Context) error {
	vectors, err := ix.catalog.GetEmbeddings(ctx)
	if err != nil {
		return fmt.Errorf("load embeddings: %w", err)
	}
	ix.mu.Lock()
	ix.vectors = vectors
	ix.mu.Unlock()
	return nil
}

// Rebuild re-embeds every product and persists the vectors.
// Returns the number of products indexed.
func (ix *Index) Rebuild(ctx context.Context) (int, error) {
	products, err := ix.catalog.ListProducts(ctx)
	if err != nil {
		return 0, fmt.Errorf("rebuild index: %w", err)
	}

	fresh := make(map[int64][]float32, len(products))
	for i := range products {
		p := &products[i]
		vec, err := ix.embedder.Embed(ctx, productText(p))
		if err != nil {
			return 0, fmt.Errorf("embed product %d: %w", p.ID, err)
		}
		if err := ix.catalog.UpdateEmbedding(ctx, p.ID, vec); err != nil {
			return 0, err
		}
		fresh[p.ID] = vec
	}

	ix.mu.Lock()
	ix.vectors = fresh
	ix.mu.Unlock()
	return len(fresh), nil
}

// Search returns the top-k products for the query, best first.
// Products without an embedding are skipped.
func (ix *Index) Search(ctx context.Context, query string, k int) ([]Result, error) {
	if k <= 0 {
		k = 3
	}
	qvec, err := ix.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	products, err := ix.catalog.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	ix.mu.RLock()
	results := make([]Result, 0, len(products))
	for _, p := range products {
		vec, ok := ix.vectors[p.ID]
		if !ok {
			continue
		}
		results = append(results, Result{Product: p, Score: cosine(qvec, vec)})
	}
	ix.mu.RUnlock()

	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// productText is the text embedded per product. Price is included so
// budget-phrased queries land near cheaper products.
func productText(p *model.Product) string {
	return fmt.Sprintf("%s Price %s Description %s", p.Name, model.FormatRupees(p.Price), p.Description)
}

// cosine computes cosine similarity; mismatched or zero vectors score 0.
func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
