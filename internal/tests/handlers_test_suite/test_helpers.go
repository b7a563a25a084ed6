package handlers_test_suite

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"

	"github.com/rogerio-castellano/inventory-app/internal/db"
	handler "github.com/rogerio-castellano/inventory-app/internal/http/handlers"
	"github.com/rogerio-castellano/inventory-app/internal/http/router"
	"github.com/rogerio-castellano/inventory-app/internal/notify"
	"github.com/rogerio-castellano/inventory-app/internal/repo"
)

var (
	engine      *db.Engine
	hub         *notify.Hub
	productRepo *repo.SQLProductRepository
	api         http.Handler
)

func setupTestRepos(path string) {
	engine = db.NewEngine(db.Config{Driver: "sqlite3", DSN: path})
	if _, err := engine.Open(context.Background()); err != nil {
		panic(fmt.Sprintf("could not open test database: %v", err))
	}

	hub = notify.NewHub()
	productRepo = repo.NewSQLProductRepository(engine, hub)

	h := handler.New(handler.Config{
		Products: productRepo,
		Metrics:  repo.NewSQLMetricsRepository(engine),
		Hub:      hub,
		Storage:  engine,
	})
	api = router.NewRouter(h, router.Options{})
}

// clearAllProducts empties the table and restarts ids at 1.
func clearAllProducts() {
	ctx := context.Background()
	if _, err := productRepo.Delete(ctx, repo.All()); err != nil {
		panic(err)
	}
	conn, err := engine.Open(ctx)
	if err != nil {
		panic(err)
	}
	conn.MustExec("DELETE FROM sqlite_sequence WHERE name = ?", db.ProductsTable)
}

func widget() handler.ProductRequest {
	return handler.ProductRequest{
		Name:          repo.String("Widget"),
		Price:         repo.Int(500),
		Quantity:      repo.Int(3),
		SupplierName:  repo.String("Acme"),
		SupplierPhone: repo.String("555-0100"),
	}
}

func do(r http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, _ := json.Marshal(b)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func createProduct(r http.Handler, p handler.ProductRequest) *httptest.ResponseRecorder {
	return do(r, http.MethodPost, "/products", p)
}

func mustCreateProduct(r http.Handler, p handler.ProductRequest) handler.ProductResponse {
	w := createProduct(r, p)
	if w.Code != http.StatusCreated {
		panic(fmt.Sprintf("create product: expected 201, got %d: %s", w.Code, w.Body.String()))
	}
	var resp handler.ProductResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		panic(err)
	}
	return resp
}

func adjustProduct(r http.Handler, productID int64, adj handler.QuantityAdjustmentRequest) *httptest.ResponseRecorder {
	return do(r, http.MethodPost, fmt.Sprintf("/products/%d/adjust", productID), adj)
}

func multipartCSV(csvContent string, filename string) (*bytes.Buffer, string) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, _ := writer.CreateFormFile("file", filename)
	part.Write([]byte(csvContent))

	writer.Close()
	return &buf, writer.FormDataContentType()
}

func importCSV(r http.Handler, csvContent, mode string) *httptest.ResponseRecorder {
	body, contentType := multipartCSV(csvContent, "products.csv")
	target := "/products/import"
	if mode != "" {
		target += "?mode=" + mode
	}
	req := httptest.NewRequest(http.MethodPost, target, body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](w *httptest.ResponseRecorder) T {
	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		panic(fmt.Sprintf("decode %T: %v (body %q)", v, err, w.Body.String()))
	}
	return v
}

func tempDatabasePath() (string, func()) {
	dir, err := os.MkdirTemp("", "inventory-handlers-*")
	if err != nil {
		panic(err)
	}
	return dir + "/inventory_test.db", func() { os.RemoveAll(dir) }
}
