package handlers

import (
	"net/http"
	"strings"

	"github.com/recordprep/internal/batch"
)

// ParseRequest is the body of the single-value parse endpoints.
type ParseRequest struct {
	Text string `json:"text"`
}

// ParseHandler exposes the parsers for one-off inspection.
type ParseHandler struct {
	Std *batch.Standardizer
}

const requestLabel = "request"

// Address handles POST /api/parse/address.
func (h *ParseHandler) Address(w http.ResponseWriter, r *http.Request) {
	if text, ok := h.text(w, r); ok {
		writeJSON(w, http.StatusOK, h.Std.InspectAddress(text, requestLabel))
	}
}

// Name handles POST /api/parse/name.
func (h *ParseHandler) Name(w http.ResponseWriter, r *http.Request) {
	if text, ok := h.text(w, r); ok {
		writeJSON(w, http.StatusOK, h.Std.InspectName(text, requestLabel))
	}
}

func (h *ParseHandler) text(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req ParseRequest
	if !decode(w, r, &req) {
		return "", false
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return "", false
	}
	return req.Text, true
}
