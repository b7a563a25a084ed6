package handlers_test_suite

import (
	"net/http"
	"testing"

	"github.com/rogerio-castellano/inventory-app/internal/repo"
)

func TestGetDashboardMetricsHandler(t *testing.T) {
	t.Cleanup(clearAllProducts)

	for _, qty := range []int64{0, 2, 10} {
		p := widget()
		p.Quantity = repo.Int(qty)
		mustCreateProduct(api, p)
	}

	w := do(api, http.MethodGet, "/metrics/dashboard", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", w.Code)
	}

	got := decode[repo.Metrics](w)
	want := repo.Metrics{
		TotalProducts:   3,
		TotalUnits:      12,
		OutOfStockCount: 1,
		LowStockCount:   1,
		InventoryValue:  6000,
	}
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}

	w = do(api, http.MethodGet, "/metrics/dashboard?lowStock=20", nil)
	if got := decode[repo.Metrics](w); got.LowStockCount != 2 {
		t.Errorf("expected 2 low stock products with threshold 20, got %d", got.LowStockCount)
	}

	if w := do(api, http.MethodGet, "/metrics/dashboard?lowStock=many", nil); w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for a malformed threshold, got %d", w.Code)
	}
}
