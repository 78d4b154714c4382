package catalog

import (
	"context"
	"sort"
	"sync"

	"negobot/internal/model"
)

// Memory is an in-memory Store for tests and DB-less development.
type Memory struct {
	mu         sync.RWMutex
	products   map[int64]model.Product
	embeddings map[int64][]float32
}

// NewMemory creates an in-memory store seeded with the given products.
func NewMemory(seed ...model.Product) *Memory {
	m := &Memory{
		products:   make(map[int64]model.Product, len(seed)),
		embeddings: make(map[int64][]float32),
	}
	for _, p := range seed {
		m.products[p.ID] = p
	}
	return m
}

func (m *Memory) GetProduct(_ context.Context, id int64) (*model.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.products[id]
	if !ok {
		return nil, model.NewNotFoundError("product")
	}
	return &p, nil
}

func (m *Memory) ListProducts(_ context.Context) ([]model.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]model.Product, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) UpsertProduct(_ context.Context, p *model.Product) error {
	if err := p.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[p.ID] = *p
	return nil
}

func (m *Memory) UpdateEmbedding(_ context.Context, id int64, embedding []float32) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.products[id]; !ok {
		return model.NewNotFoundError("product")
	}
	vec := make([]float32, len(embedding))
	copy(vec, embedding)
	m.embeddings[id] = vec
	return nil
}

func (m *Memory) GetEmbeddings(_ context.Context) (map[int64][]float32, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[int64][]float32, len(m.embeddings))
	for id, vec := range m.embeddings {
		cp := make([]float32, len(vec))
		copy(cp, vec)
		out[id] = cp
	}
	return out, nil
}
