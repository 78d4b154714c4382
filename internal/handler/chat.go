package handler

import (
	"net/http"

	"negobot/internal/chat"
)

// handleChat processes one conversation turn.
// POST /chat {"user_id": ..., "product_id": ..., "message": ...}
func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chat.Request
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	resp, err := h.chat.Respond(r.Context(), &req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}
