// Package handler provides HTTP handlers for the negotiation service API.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"negobot/internal/catalog"
	"negobot/internal/chat"
	"negobot/internal/model"
	"negobot/internal/policy"
	"negobot/internal/search"
	"negobot/internal/session"
	"negobot/internal/transcript"
)

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	chat     *chat.Service
	catalog  catalog.Store
	policies *policy.Store
	sessions *session.Store
	recorder transcript.Recorder
	index    *search.Index // nil disables search endpoints
	logger   *slog.Logger
}

// Config collects the Handler dependencies.
type Config struct {
	Chat     *chat.Service
	Catalog  catalog.Store
	Policies *policy.Store
	Sessions *session.Store
	Recorder transcript.Recorder
	Index    *search.Index
	Logger   *slog.Logger
}

// New creates a new Handler.
func New(cfg Config) *Handler {
	return &Handler{
		chat:     cfg.Chat,
		catalog:  cfg.Catalog,
		policies: cfg.Policies,
		sessions: cfg.Sessions,
		recorder: cfg.Recorder,
		index:    cfg.Index,
		logger:   cfg.Logger,
	}
}

// RegisterRoutes registers all HTTP routes with the given ServeMux.
// Uses Go 1.22+ method routing patterns.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Conversation endpoint
	mux.HandleFunc("POST /chat", h.handleChat)

	// Catalog
	mux.HandleFunc("GET /products", h.handleListProducts)
	mux.HandleFunc("GET /products/{id}", h.handleGetProduct)
	mux.HandleFunc("POST /products/search", h.handleSearchProducts)
	mux.HandleFunc("POST /products/reindex", h.handleReindex)

	// Admin policy
	mux.HandleFunc("GET /admin/policy", h.handleGetPolicy)
	mux.HandleFunc("PATCH /admin/policy", h.handlePatchPolicy)

	// Negotiation state and audit
	mux.HandleFunc("GET /sessions/{user_id}/{product_id}", h.handleGetSession)
	mux.HandleFunc("GET /transcripts/{user_id}", h.handleTranscripts)

	// MCP transport - JSON-RPC endpoint using official MCP SDK
	mux.Handle("/mcp", h.NewMCPHandler())

	// Health check
	mux.HandleFunc("GET /health", h.handleHealth)
	mux.HandleFunc("GET /healthz", h.handleHealth)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// === Response Helpers ===

// writeJSON sends a JSON response with the given status code.
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

// writeError sends an error response, extracting status/code from APIError if present.
// Uses errors.As() to unwrap error chains (e.g., fmt.Errorf wrapping).
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError

	if errors.As(err, &apiErr) {
		// Found APIError in error chain - use it
	} else {
		// Wrap unexpected errors
		apiErr = &model.APIError{
			Code:       "INTERNAL_ERROR",
			Message:    "an internal error occurred",
			StatusCode: http.StatusInternalServerError,
		}
		h.logger.Error("internal error", slog.String("error", err.Error()))
	}

	h.writeJSON(w, apiErr.StatusCode, errorResponse{
		Error: errorBody{
			Code:    apiErr.Code,
			Message: apiErr.Message,
		},
	})
}

// errorResponse is the JSON structure for error responses.
type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// MaxRequestBodySize limits JSON request bodies to 1MB to prevent DoS.
const MaxRequestBodySize = 1 << 20 // 1MB

// decodeJSON reads JSON from request body into v.
// Limits body size to MaxRequestBodySize to prevent memory exhaustion.
// Returns an APIError if decoding fails.
func decodeJSON(r *http.Request, v interface{}) error {
	// Limit request body size to prevent DoS
	r.Body = http.MaxBytesReader(nil, r.Body, MaxRequestBodySize)

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		// Don't expose internal error details to client
		return model.NewValidationError("body", "invalid JSON")
	}
	return nil
}
