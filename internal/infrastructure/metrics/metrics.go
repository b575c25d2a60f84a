package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so tests can build as many as they like.
type Metrics struct {
	Registry        *prometheus.Registry
	LoanOps         *prometheus.CounterVec
	AvailableCopies *prometheus.GaugeVec
	HTTPRequests    *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		LoanOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "library_loan_operations_total",
			Help: "Loan lifecycle operations by outcome.",
		}, []string{"op", "outcome"}),
		AvailableCopies: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "library_book_available_copies",
			Help: "Available copies per book as last written.",
		}, []string{"book_id"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "library_http_requests_total",
			Help: "HTTP requests by route and status code.",
		}, []string{"method", "route", "code"}),
	}
	m.Registry.MustRegister(
		m.LoanOps, m.AvailableCopies, m.HTTPRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveLoanOp records one loan operation; a nil receiver is a no-op.
func (m *Metrics) ObserveLoanOp(op string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.LoanOps.WithLabelValues(op, outcome).Inc()
}

func (m *Metrics) SetAvailable(bookID string, n int) {
	if m == nil {
		return
	}
	m.AvailableCopies.WithLabelValues(bookID).Set(float64(n))
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
