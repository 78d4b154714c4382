// Package catalog provides product lookup for the negotiation core.
// The MySQL store is the production collaborator; the in-memory store
// backs tests and local development without a database.
package catalog

import (
	"context"

	"negobot/internal/model"
)

// Store abstracts the product catalog. A missing product surfaces as an
// INVALID_PRODUCT / NOT_FOUND error to the negotiation core, never as a
// nil product.
type Store interface {
	// GetProduct returns the product by ID.
	GetProduct(ctx context.Context, id int64) (*model.Product, error)

	// ListProducts returns the full catalog, ID order.
	ListProducts(ctx context.Context) ([]model.Product, error)

	// UpsertProduct inserts or replaces a product row. Used by the CSV
	// seed loader and admin tooling.
	UpsertProduct(ctx context.Context, p *model.Product) error

	// UpdateEmbedding persists the search embedding for a product.
	UpdateEmbedding(ctx context.Context, id int64, embedding []float32) error

	// GetEmbeddings returns all products that have an embedding, with
	// their vectors, for building the search index.
	GetEmbeddings(ctx context.Context) (map[int64][]float32, error)
}
