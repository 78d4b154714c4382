// Package search implements product discovery over embedding vectors:
// embed the catalog, embed the query, rank by cosine similarity. The
// OpenAI embedder is the production path; the hashing embedder is a
// deterministic offline substitute so search still works without an API
// key. Ranking quality is explicitly not a goal of this core.
package search

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// Embedder turns text into a dense vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// embeddingCreator is the slice of the OpenAI client the embedder needs.
type embeddingCreator interface {
	CreateEmbeddings(ctx context.Context, req openai.EmbeddingRequestConverter) (openai.EmbeddingResponse, error)
}

// OpenAI embeds text with the embeddings API.
type OpenAI struct {
	client embeddingCreator
	model  openai.EmbeddingModel
}

// NewOpenAI creates an embedder using the given API key.
func NewOpenAI(apiKey string) *OpenAI {
	return &OpenAI{client: openai.NewClient(apiKey), model: openai.SmallEmbedding3}
}

// newOpenAIWithClient is the test seam.
func newOpenAIWithClient(client embeddingCreator) *OpenAI {
	return &OpenAI{client: client, model: openai.SmallEmbedding3}
}

func (e *OpenAI) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: e.model,
	})
	if err != nil {
		return nil, fmt.Errorf("create embedding: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("create embedding: empty response")
	}
	return resp.Data[0].Embedding, nil
}

// HashDims is the vector size of the hashing embedder.
const HashDims = 256

// Hashing is a deterministic bag-of-words embedder using feature hashing.
// Same text always produces the same vector, so dev and test search
// results are reproducible with no network at all.
type Hashing struct{}

func NewHashing() *Hashing { return &Hashing{} }

func (Hashing) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, HashDims)
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		tok = strings.Trim(tok, ".,!?;:\"'()[]")
		if tok == "" {
			continue
		}
		h := fnv.New32a()
		h.Write([]byte(tok))
		vec[h.Sum32()%HashDims]++
	}
	// L2-normalize so cosine reduces to a dot product.
	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		inv := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= inv
		}
	}
	return vec, nil
}
