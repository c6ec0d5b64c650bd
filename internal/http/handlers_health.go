package httpapi

import "net/http"

// counter is implemented by engines that know their document count
type counter interface {
	Count() int
}

// HandleHealth returns API health status and document count
func (h *Handler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	resp := HealthResponse{Status: "healthy"}

	if engine, ok := h.engines.Get(); ok {
		resp.EngineReady = true
		if c, ok := engine.(counter); ok {
			resp.DocCount = c.Count()
		}
	}

	h.logger.Debug().Bool("engine_ready", resp.EngineReady).Int("doc_count", resp.DocCount).Msg("health check")

	writeJSON(w, http.StatusOK, resp)
}
