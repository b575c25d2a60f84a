package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"library-backend/internal/infrastructure/metrics"

	"github.com/labstack/echo/v4"
)

func TestHealth(t *testing.T) {
	before := time.Now().UTC().Add(-time.Second)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/health", nil), rec)
	if err := NewHandler(metrics.New()).Health(c); err != nil {
		t.Fatalf("health: %v", err)
	}
	if rec.Code != http.StatusOK || !strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		t.Fatalf("got %d %q", rec.Code, rec.Header().Get(echo.HeaderContentType))
	}

	var out map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %s: %v", rec.Body.String(), err)
	}
	at, err := time.Parse(time.RFC3339Nano, out["time"])
	if out["status"] != "ok" || err != nil || !strings.HasSuffix(out["time"], "Z") {
		t.Fatalf("unexpected body %v (time err=%v)", out, err)
	}
	if at.Before(before) || at.After(time.Now().UTC().Add(time.Second)) {
		t.Fatalf("time %v outside request window", at)
	}
}

func TestMetrics_ExposesLibrarySeries(t *testing.T) {
	m := metrics.New()
	m.ObserveLoanOp("create", nil)
	m.SetAvailable("B1", 2)
	h := NewHandler(m)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	if err := h.Metrics(echo.New().NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		`library_loan_operations_total{op="create",outcome="ok"} 1`,
		`library_book_available_copies{book_id="B1"} 2`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("metrics output missing %q", want)
		}
	}
}
