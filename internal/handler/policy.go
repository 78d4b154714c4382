package handler

import (
	"net/http"

	"negobot/internal/policy"
)

// handleGetPolicy returns the live negotiation policy.
// GET /admin/policy
func (h *Handler) handleGetPolicy(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.policies.Get())
}

// handlePatchPolicy applies a partial policy update. Fields omitted from
// the body keep their current values; an update that breaks the ordering
// invariant is rejected whole and the previous policy stays in force.
// PATCH /admin/policy
func (h *Handler) handlePatchPolicy(w http.ResponseWriter, r *http.Request) {
	var patch policy.Patch
	if err := decodeJSON(r, &patch); err != nil {
		h.writeError(w, err)
		return
	}

	updated, err := h.policies.Update(patch)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, updated)
}
