package handlers_integrated_test_suite

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	handler "github.com/rogerio-castellano/inventory-app/internal/http/handlers"
	"github.com/rogerio-castellano/inventory-app/internal/repo"
)

func TestProductLifecycle(t *testing.T) {
	t.Cleanup(clearAllProducts)

	created := createProduct(api, "Widget", 500, 3)
	if created.ID != 1 {
		t.Fatalf("expected id 1, got %d", created.ID)
	}
	target := fmt.Sprintf("/products/%d", created.ID)

	if w := do(api, http.MethodPatch, target, `{"quantity": 4}`); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var got handler.ProductResponse
	json.NewDecoder(do(api, http.MethodGet, target, "").Body).Decode(&got)
	if got.Quantity != 4 || got.Name != "Widget" {
		t.Errorf("unexpected product %+v", got)
	}

	if w := do(api, http.MethodPost, target+"/adjust", `{"delta": -5}`); w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}

	if w := do(api, http.MethodDelete, target, ""); w.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", w.Code)
	}
	if w := do(api, http.MethodDelete, target, ""); w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestListAndMetrics(t *testing.T) {
	t.Cleanup(clearAllProducts)
	createProduct(api, "Bolt", 100, 0)
	createProduct(api, "Anchor", 200, 2)
	createProduct(api, "Cable", 300, 10)

	w := do(api, http.MethodGet, "/products?name=a&sort=-price&limit=1", "")
	var page struct {
		Data []handler.ProductResponse `json:"data"`
		Meta handler.Meta              `json:"meta"`
	}
	json.NewDecoder(w.Body).Decode(&page)
	if len(page.Data) != 1 || page.Data[0].Name != "Cable" || page.Meta.TotalCount != 2 {
		t.Errorf("unexpected page %+v", page)
	}

	var m repo.Metrics
	json.NewDecoder(do(api, http.MethodGet, "/metrics/dashboard", "").Body).Decode(&m)
	want := repo.Metrics{TotalProducts: 3, TotalUnits: 12, OutOfStockCount: 1, LowStockCount: 1, InventoryValue: 3400}
	if m != want {
		t.Errorf("expected %+v, got %+v", want, m)
	}

	w = do(api, http.MethodDelete, "/products?all=true", "")
	var res handler.WriteResult
	json.NewDecoder(w.Body).Decode(&res)
	if res.RowsAffected != 3 {
		t.Errorf("expected 3 rows deleted, got %d", res.RowsAffected)
	}
}
