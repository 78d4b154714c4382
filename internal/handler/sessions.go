package handler

import (
	"net/http"
	"strconv"

	"negobot/internal/model"
	"negobot/internal/session"
)

// handleGetSession returns the live negotiation session for a (user,
// product) pair, with the full audit history when ?history=true.
// GET /sessions/{user_id}/{product_id}
func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("user_id")
	productID, err := strconv.ParseInt(r.PathValue("product_id"), 10, 64)
	if err != nil {
		h.writeError(w, model.NewValidationError("product_id", "must be an integer"))
		return
	}

	if r.URL.Query().Get("history") == "true" {
		history := h.sessions.History(userID, productID)
		h.writeJSON(w, http.StatusOK, map[string][]session.Session{"sessions": history})
		return
	}

	sess, ok := h.sessions.Get(userID, productID)
	if !ok {
		h.writeError(w, model.NewNotFoundError("session"))
		return
	}
	h.writeJSON(w, http.StatusOK, sess)
}

// handleTranscripts returns recent conversation turns for a user, newest
// first. Optional product_id and limit query parameters narrow the window.
// GET /transcripts/{user_id}?product_id=7&limit=20
func (h *Handler) handleTranscripts(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("user_id")

	var productID int64
	if raw := r.URL.Query().Get("product_id"); raw != "" {
		var err error
		productID, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.writeError(w, model.NewValidationError("product_id", "must be an integer"))
			return
		}
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		var err error
		limit, err = strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			h.writeError(w, model.NewValidationError("limit", "must be a positive integer"))
			return
		}
	}

	records, err := h.recorder.Recent(r.Context(), userID, productID, limit)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if records == nil {
		records = []model.TurnRecord{}
	}
	h.writeJSON(w, http.StatusOK, map[string][]model.TurnRecord{"turns": records})
}
