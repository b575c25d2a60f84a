package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveLoanOp(t *testing.T) {
	m := New()
	m.ObserveLoanOp("create", nil)
	m.ObserveLoanOp("create", nil)
	m.ObserveLoanOp("create", errors.New("x"))

	if got := testutil.ToFloat64(m.LoanOps.WithLabelValues("create", "ok")); got != 2 {
		t.Fatalf("create/ok = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.LoanOps.WithLabelValues("create", "error")); got != 1 {
		t.Fatalf("create/error = %v, want 1", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveLoanOp("return", nil)
	m.SetAvailable("B1", 3)
}

func TestHandlerExposesRegistry(t *testing.T) {
	m := New()
	m.SetAvailable("B1", 3)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `library_book_available_copies{book_id="B1"} 3`) {
		t.Fatalf("gauge missing from exposition:\n%s", rec.Body.String())
	}
}
