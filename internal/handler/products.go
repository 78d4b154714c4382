package handler

import (
	"net/http"
	"strconv"

	"negobot/internal/model"
)

// handleListProducts returns the full catalog.
// GET /products
func (h *Handler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListProducts(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"products": products})
}

// handleGetProduct returns one product by ID.
// GET /products/{id}
func (h *Handler) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		h.writeError(w, model.NewValidationError("id", "must be an integer"))
		return
	}

	product, err := h.catalog.GetProduct(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, product)
}

// searchRequest is the body for POST /products/search.
type searchRequest struct {
	Query string `json:"query"`
	K     int    `json:"k,omitempty"`
}

// handleSearchProducts ranks the catalog against a free-text query.
// POST /products/search {"query": ..., "k": ...}
func (h *Handler) handleSearchProducts(w http.ResponseWriter, r *http.Request) {
	if h.index == nil {
		h.writeError(w, model.NewValidationError("search", "not enabled"))
		return
	}

	var req searchRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, err)
		return
	}
	if req.Query == "" {
		h.writeError(w, model.NewValidationError("query", "required"))
		return
	}

	results, err := h.index.Search(r.Context(), req.Query, req.K)
	if err != nil {
		h.writeError(w, model.NewUpstreamError("embedding", err))
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"results": results})
}

// handleReindex re-embeds the whole catalog and persists the vectors.
// POST /products/reindex
func (h *Handler) handleReindex(w http.ResponseWriter, r *http.Request) {
	if h.index == nil {
		h.writeError(w, model.NewValidationError("search", "not enabled"))
		return
	}

	n, err := h.index.Rebuild(r.Context())
	if err != nil {
		h.writeError(w, model.NewUpstreamError("embedding", err))
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]int{"indexed": n})
}
