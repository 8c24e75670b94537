package handlers

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/recordprep/internal/store"
)

// RunsHandler serves stored run summaries.
type RunsHandler struct {
	Store *store.Store
}

// GetRun handles GET /api/runs/{id}.
func (h *RunsHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	sum, err := h.Store.LoadSummary(r.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "run %s not found", id)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load run %s", id)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}
