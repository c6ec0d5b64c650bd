package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wfahren/Enhanced-Sphinx-Search/internal/clearcmd"
)

// HandleIntercept answers a client widget that caught a search submission
// and needs to know whether it was the clear command
func (h *Handler) HandleIntercept(w http.ResponseWriter, r *http.Request) {
	var req InterceptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn().Err(err).Msg("invalid intercept request")
		writeError(w, http.StatusBadRequest, "invalid JSON", "INVALID_JSON")
		return
	}

	trigger, err := clearcmd.ParseTrigger(req.Trigger)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "UNKNOWN_TRIGGER")
		return
	}

	out, err := h.clear.Route(r.Context(), h.sessionFrom(r), trigger, req.Query, req.URL)
	if err != nil {
		if errors.Is(err, clearcmd.ErrUnknownTrigger) {
			writeError(w, http.StatusBadRequest, err.Error(), "UNKNOWN_TRIGGER")
			return
		}
		h.logger.Error().Err(err).Msg("failed to route clear command")
		writeError(w, http.StatusInternalServerError, "failed to update highlight state", "STATE_ERROR")
		return
	}

	h.logger.Debug().
		Stringer("trigger", trigger).
		Stringer("state", out.State).
		Msg("intercept handled")

	writeJSON(w, http.StatusOK, InterceptResponse{Outcome: out})
}
