package handlers

import (
	"net/http"

	"github.com/rogerio-castellano/inventory-app/internal/repo"
)

// GetDashboardMetricsHandler godoc
// @Summary Dashboard metrics
// @Description Totals over the whole inventory. Low stock counts products in stock but under the threshold.
// @Tags metrics
// @Produce json
// @Param lowStock query int false "Low stock threshold (default 5)"
// @Success 200 {object} repo.Metrics
// @Failure 400 {array} repo.ValidationError
// @Failure 500 {string} string "Internal error"
// @Router /metrics/dashboard [get]
func (h *Handlers) GetDashboardMetricsHandler(w http.ResponseWriter, r *http.Request) {
	p := newQueryParser(r.URL.Query())
	threshold := p.int64Ptr("lowStock")
	if err := p.err(); err != nil {
		h.writeRepoError(w, r, err, "fetch metrics")
		return
	}
	if threshold == nil {
		threshold = repo.Int(repo.DefaultLowStockThreshold)
	}

	m, err := h.metrics.GetDashboardMetrics(r.Context(), *threshold)
	if err != nil {
		h.writeRepoError(w, r, err, "fetch metrics")
		return
	}
	h.respond(w, r, http.StatusOK, m)
}
