package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/recordprep/internal/batch"
	"github.com/recordprep/internal/store"
	"github.com/recordprep/internal/table"
)

// StandardizeRequest carries the tables of one run.
type StandardizeRequest struct {
	Tables []table.Table `json:"tables"`
}

// StandardizeHandler runs uploaded tables through the batch standardizer
// and, when Store is set, persists the run.
type StandardizeHandler struct {
	Std   *batch.Standardizer
	Store *store.Store
	Log   *zap.Logger
}

// Addresses handles POST /api/addresses/standardize.
func (h *StandardizeHandler) Addresses(w http.ResponseWriter, r *http.Request) {
	tables, ok := h.tables(w, r)
	if !ok {
		return
	}
	res := h.Std.StandardizeAddresses(r.Context(), tables)
	if h.Store != nil {
		if err := h.Store.SaveAddressResult(r.Context(), res); err != nil {
			h.Log.Error("failed to save address run", zap.String("run_id", res.Summary.RunID), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to save run %s", res.Summary.RunID)
			return
		}
	}
	writeJSON(w, http.StatusOK, res)
}

// Names handles POST /api/names/standardize.
func (h *StandardizeHandler) Names(w http.ResponseWriter, r *http.Request) {
	tables, ok := h.tables(w, r)
	if !ok {
		return
	}
	res := h.Std.StandardizeNames(r.Context(), tables)
	if h.Store != nil {
		if err := h.Store.SaveNameResult(r.Context(), res); err != nil {
			h.Log.Error("failed to save name run", zap.String("run_id", res.Summary.RunID), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to save run %s", res.Summary.RunID)
			return
		}
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *StandardizeHandler) tables(w http.ResponseWriter, r *http.Request) ([]table.Table, bool) {
	var req StandardizeRequest
	if !decode(w, r, &req) {
		return nil, false
	}
	if len(req.Tables) == 0 {
		writeError(w, http.StatusBadRequest, "no tables in request")
		return nil, false
	}
	return req.Tables, true
}
