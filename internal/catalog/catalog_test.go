package catalog

import (
	"context"
	"errors"
	"strings"
	"testing"

	"negobot/internal/model"
)

func TestMemoryGetProduct(t *testing.T) {
	m := NewMemory(
		model.Product{ID: 1, Name: "Headphones", Price: 2500000, Stock: 20},
		model.Product{ID: 2, Name: "Speaker", Price: 1000000, MinPrice: 980000, Stock: 2},
	)

	p, err := m.GetProduct(context.Background(), 2)
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "Speaker" || p.MinPrice != 980000 {
		t.Errorf("unexpected product: %+v", p)
	}

	_, err = m.GetProduct(context.Background(), 99)
	if !errors.Is(err, model.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryGetProductReturnsCopy(t *testing.T) {
	m := NewMemory(model.Product{ID: 1, Name: "Headphones", Price: 2500000, Stock: 20})

	p, _ := m.GetProduct(context.Background(), 1)
	p.Price = 1 // caller mutation must not leak into the store

	again, _ := m.GetProduct(context.Background(), 1)
	if again.Price != 2500000 {
		t.Error("store row mutated through returned pointer")
	}
}

func TestMemoryListSorted(t *testing.T) {
	m := NewMemory(
		model.Product{ID: 3, Name: "c", Price: 100, Stock: 1},
		model.Product{ID: 1, Name: "a", Price: 100, Stock: 1},
		model.Product{ID: 2, Name: "b", Price: 100, Stock: 1},
	)
	list, err := m.ListProducts(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	for i, p := range list {
		if p.ID != int64(i+1) {
			t.Fatalf("list not in ID order: %+v", list)
		}
	}
}

func TestMemoryUpsertValidates(t *testing.T) {
	m := NewMemory()
	err := m.UpsertProduct(context.Background(), &model.Product{ID: 1, Name: "bad", Price: 0, Stock: 1})
	if !errors.Is(err, model.ErrInvalidProduct) {
		t.Errorf("expected ErrInvalidProduct, got %v", err)
	}
}

func TestMemoryEmbeddings(t *testing.T) {
	m := NewMemory(model.Product{ID: 1, Name: "Headphones", Price: 2500000, Stock: 20})

	if err := m.UpdateEmbedding(context.Background(), 1, []float32{0.1, 0.2}); err != nil {
		t.Fatal(err)
	}
	if err := m.UpdateEmbedding(context.Background(), 99, []float32{0.1}); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	embs, err := m.GetEmbeddings(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(embs) != 1 || len(embs[1]) != 2 {
		t.Errorf("unexpected embeddings: %v", embs)
	}
}

func TestLoadCSV(t *testing.T) {
	input := strings.Join([]string{
		"name,mrp,min_price,stock,description",
		"Wireless Headphones,25000,,20,Noise cancelling over-ear",
		"Bluetooth Speaker,10000,9800,2,Portable speaker",
	}, "\n")

	m := NewMemory()
	n, err := loadCSV(context.Background(), m, strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("loaded = %d, want 2", n)
	}

	p, err := m.GetProduct(context.Background(), 2)
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "Bluetooth Speaker" {
		t.Errorf("name = %q", p.Name)
	}
	if p.Price != 1000000 || p.MinPrice != 980000 || p.Stock != 2 {
		t.Errorf("unexpected row: %+v", p)
	}
}

func TestLoadCSVExplicitIDs(t *testing.T) {
	input := strings.Join([]string{
		"id,name,mrp,stock",
		"7,Keyboard,1500,12",
	}, "\n")

	m := NewMemory()
	if _, err := loadCSV(context.Background(), m, strings.NewReader(input)); err != nil {
		t.Fatal(err)
	}
	if _, err := m.GetProduct(context.Background(), 7); err != nil {
		t.Errorf("explicit id not honored: %v", err)
	}
}

func TestLoadCSVErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"missing required column", "name,stock\nKeyboard,5"},
		{"bad stock", "name,mrp,stock\nKeyboard,1500,lots"},
		{"invalid product row", "name,mrp,stock\nKeyboard,0,5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMemory()
			if _, err := loadCSV(context.Background(), m, strings.NewReader(tt.input)); err == nil {
				t.Error("expected error")
			}
		})
	}
}
