// Package model defines the shared domain types for the negotiation service:
// products, offer decisions, transcript records, money helpers, and the
// structured error taxonomy.
package model

import "fmt"

// Product is a catalog row as seen by the negotiation core.
// All money fields are paise. MinPrice is an optional explicit floor:
// zero means no per-product floor is configured.
type Product struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Price       int64  `json:"price"`
	MinPrice    int64  `json:"min_price,omitempty"`
	Stock       int    `json:"stock"`
	Image       string `json:"image,omitempty"`
}

// HasMinPrice reports whether an explicit per-product floor is set.
func (p *Product) HasMinPrice() bool {
	return p.MinPrice > 0
}

// Validate checks the catalog invariants the offer engine relies on.
// Returns an INVALID_PRODUCT error so a bad row rejects the turn
// without touching the session.
func (p *Product) Validate() error {
	if p == nil {
		return NewInvalidProductError("product data missing")
	}
	if p.Price <= 0 {
		return NewInvalidProductError(fmt.Sprintf("product %d has non-positive price", p.ID))
	}
	if p.Stock < 0 {
		return NewInvalidProductError(fmt.Sprintf("product %d has negative stock", p.ID))
	}
	if p.HasMinPrice() && p.MinPrice > p.Price {
		return NewInvalidProductError(fmt.Sprintf("product %d min_price exceeds list price", p.ID))
	}
	return nil
}
