package handlers

import (
	"context"
	"net/http"
	"time"
)

// HealthHandler godoc
// @Summary Liveness and storage check
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /healthz [get]
func (h *Handlers) HealthHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.storage.Ping(ctx); err != nil {
		h.log.WithError(err).Warn("health check failed")
		h.respond(w, r, http.StatusServiceUnavailable, HealthResponse{Status: "unavailable", Error: err.Error()})
		return
	}
	h.respond(w, r, http.StatusOK, HealthResponse{Status: "ok"})
}
