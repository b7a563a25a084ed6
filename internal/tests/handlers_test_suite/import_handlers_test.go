package handlers_test_suite

import (
	"net/http"
	"testing"

	handler "github.com/rogerio-castellano/inventory-app/internal/http/handlers"
	"github.com/rogerio-castellano/inventory-app/internal/repo"
)

func TestImportProductsHandler(t *testing.T) {
	t.Run("File with unique valid products", func(t *testing.T) {
		t.Cleanup(clearAllProducts)
		csvData := `name,price,quantity,supplier_name,supplier_phone
Mouse,2599,10,Acme,555-0100
Keyboard,4500,5,Acme,555-0100`

		w := importCSV(api, csvData, "")
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200 OK, got %d", w.Code)
		}

		resp := decode[handler.ImportProductsResult](w)
		if resp.ImportedProductsCount != 2 {
			t.Errorf("expected 2 imported products, got %d", resp.ImportedProductsCount)
		}
		if len(resp.Errors) != 0 {
			t.Errorf("expected no errors, got %v", resp.Errors)
		}
	})

	t.Run("File with invalid rows", func(t *testing.T) {
		t.Cleanup(clearAllProducts)
		csvData := `name,price,quantity,supplier_name,supplier_phone
Mouse,2599,10,Acme,555-0100
Broken,-1,3,Acme,555-0100
Cheap,free,3,Acme,555-0100
NoSupplier,100,3,,555-0100
Keyboard,4500,5,Acme,555-0100`

		w := importCSV(api, csvData, "")
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200 OK, got %d", w.Code)
		}

		resp := decode[handler.ImportProductsResult](w)
		if resp.ImportedProductsCount != 2 {
			t.Errorf("expected 2 imported products, got %d", resp.ImportedProductsCount)
		}

		want := map[int]string{3: "price", 4: "price", 5: "supplier_name"}
		if len(resp.Errors) != len(want) {
			t.Fatalf("expected %d errors, got %v", len(want), resp.Errors)
		}
		for _, e := range resp.Errors {
			if want[e.Row] != e.Field {
				t.Errorf("unexpected error %+v", e)
			}
		}
	})

	t.Run("Existing products are skipped by default", func(t *testing.T) {
		t.Cleanup(clearAllProducts)
		mustCreateProduct(api, widget())

		csvData := `name,price,quantity,supplier_name,supplier_phone
Widget,999,1,Acme,555-0100`

		resp := decode[handler.ImportProductsResult](importCSV(api, csvData, ""))
		if resp.ImportedProductsCount != 0 || len(resp.Errors) != 1 {
			t.Fatalf("expected the duplicate to be reported, got %+v", resp)
		}

		got := decode[handler.ProductResponse](do(api, http.MethodGet, "/products/1", nil))
		if got.Price != 500 {
			t.Errorf("skip mode must leave the product untouched, price is %d", got.Price)
		}
	})

	t.Run("Existing products are updated in update mode", func(t *testing.T) {
		t.Cleanup(clearAllProducts)
		mustCreateProduct(api, widget())

		csvData := `name,price
Widget,999
Gadget,10`

		resp := decode[handler.ImportProductsResult](importCSV(api, csvData, "update"))
		if resp.UpdatedProductsCount != 1 {
			t.Errorf("expected 1 updated product, got %d", resp.UpdatedProductsCount)
		}
		// Gadget has no supplier columns and cannot be created
		if resp.ImportedProductsCount != 0 || len(resp.Errors) != 2 {
			t.Errorf("expected Gadget to be rejected, got %+v", resp)
		}

		got := decode[handler.ProductResponse](do(api, http.MethodGet, "/products/1", nil))
		if got.Price != 999 || got.Quantity != 3 {
			t.Errorf("expected only the price to change, got %+v", got)
		}
	})

	t.Run("Rows with nothing to change are not counted as updated", func(t *testing.T) {
		t.Cleanup(clearAllProducts)
		mustCreateProduct(api, widget())

		resp := decode[handler.ImportProductsResult](importCSV(api, "name\nWidget", "update"))
		if resp.UpdatedProductsCount != 0 {
			t.Errorf("expected no updated products, got %d", resp.UpdatedProductsCount)
		}
		if len(resp.Errors) != 1 || resp.Errors[0].Row != 2 {
			t.Errorf("expected row 2 to be reported, got %+v", resp.Errors)
		}
	})

	t.Run("Missing file", func(t *testing.T) {
		w := do(api, http.MethodPost, "/products/import", nil)
		if w.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", w.Code)
		}
	})

	t.Run("Header without name", func(t *testing.T) {
		w := importCSV(api, "price,quantity\n1,2", "")
		if w.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", w.Code)
		}
	})

	count, err := productRepo.Count(t.Context(), repo.Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("expected subtests to clean up, found %d products", count)
	}
}
