package handlers_integrated_test_suite

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"

	"github.com/rogerio-castellano/inventory-app/internal/db"
	handler "github.com/rogerio-castellano/inventory-app/internal/http/handlers"
	"github.com/rogerio-castellano/inventory-app/internal/http/router"
	"github.com/rogerio-castellano/inventory-app/internal/notify"
	"github.com/rogerio-castellano/inventory-app/internal/repo"
)

var (
	engine      *db.Engine
	productRepo *repo.SQLProductRepository
	api         http.Handler
)

func setupTestRepos(dbURL string) error {
	engine = db.NewEngine(db.Config{Driver: string(db.DialectPostgres), DSN: dbURL})
	if _, err := engine.Open(context.Background()); err != nil {
		return err
	}

	hub := notify.NewHub()
	productRepo = repo.NewSQLProductRepository(engine, hub)
	api = router.NewRouter(handler.New(handler.Config{
		Products: productRepo,
		Metrics:  repo.NewSQLMetricsRepository(engine),
		Hub:      hub,
		Storage:  engine,
	}), router.Options{})
	return nil
}

func clearAllProducts() {
	ctx := context.Background()
	conn, err := engine.Open(ctx)
	if err != nil {
		panic(err)
	}
	conn.MustExec(fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY", db.ProductsTable))
}

func do(r http.Handler, method, target string, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func createProduct(r http.Handler, name string, price, qty int64) handler.ProductResponse {
	body := fmt.Sprintf(`{"name": %q, "price": %d, "quantity": %d, "supplier_name": "Acme", "supplier_phone": "555-0100"}`, name, price, qty)
	w := do(r, http.MethodPost, "/products", body)
	if w.Code != http.StatusCreated {
		panic(fmt.Sprintf("create product: expected 201, got %d: %s", w.Code, w.Body.String()))
	}
	var resp handler.ProductResponse
	json.NewDecoder(w.Body).Decode(&resp)
	return resp
}

func multipartCSV(csvContent string, filename string) (*bytes.Buffer, string) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, _ := writer.CreateFormFile("file", filename)
	part.Write([]byte(csvContent))

	writer.Close()
	return &buf, writer.FormDataContentType()
}
