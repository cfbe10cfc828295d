package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/HarminderAI/Vedic-Market-Energy/internal/daystate"
)

// StateHandler exposes the deduplicated run state
type StateHandler struct {
	state *daystate.Coordinator
}

// NewStateHandler creates a state handler
func NewStateHandler(state *daystate.Coordinator) *StateHandler {
	return &StateHandler{state: state}
}

// List returns every key
// GET /api/state
func (h *StateHandler) List(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"today": h.state.Today(),
		"state": h.state.ReadAll(r.Context()),
	})
}

// Get returns one key
// GET /api/state/{key}
func (h *StateHandler) Get(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	value, ok := h.state.Get(r.Context(), key)
	if !ok {
		respondError(w, http.StatusNotFound, "key not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"key":        key,
		"value":      value,
		"done_today": value == h.state.Today(),
	})
}
