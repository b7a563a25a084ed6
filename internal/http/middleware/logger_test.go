package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func TestRequestLogger(t *testing.T) {
	log, hook := test.NewNullLogger()

	h := chimw.RequestID(RequestLogger(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "product not found", http.StatusNotFound)
	})))

	req := httptest.NewRequest(http.MethodGet, "/products/9", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)

	entry := hook.LastEntry()
	if entry == nil {
		t.Fatal("expected a log entry")
	}
	if entry.Level != logrus.WarnLevel {
		t.Errorf("expected warn level for 404, got %v", entry.Level)
	}
	if entry.Data["status"] != http.StatusNotFound {
		t.Errorf("expected status 404, got %v", entry.Data["status"])
	}
	if entry.Data["path"] != "/products/9" {
		t.Errorf("unexpected path %v", entry.Data["path"])
	}
	if id, _ := entry.Data["request_id"].(string); id == "" {
		t.Error("expected a request id")
	}
}
