package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"library-backend/internal/adapter/repository/kv"
	"library-backend/internal/config"
	"library-backend/internal/infrastructure/metrics"
	"library-backend/internal/testutil/memstore"

	"go.uber.org/zap"
)

func newTestApp() *app {
	s := memstore.New()
	return &app{
		cfg: &config.Config{
			AppPort:            "0",
			LoanPeriodDays:     14,
			ReactivationPolicy: config.ReactivationReject,
			RateLimitRPS:       100,
			RateLimitBurst:     100,
			CORSAllowedOrigins: []string{"https://library.example"},
		},
		log:     zap.NewNop(),
		metrics: metrics.New(),
		repos:   kv.NewRepos(s),
		uow:     memstore.NewUoW(s),
	}
}

func TestNewEcho_Routes(t *testing.T) {
	e := newEcho(newTestApp())

	tests := []struct {
		name   string
		method string
		path   string
		role   string
		want   int
	}{
		{"health", http.MethodGet, "/health", "", http.StatusOK},
		{"metrics", http.MethodGet, "/metrics", "", http.StatusOK},
		{"public books", http.MethodGet, "/public/books", "", http.StatusOK},
		{"api needs caller", http.MethodGet, "/api/books", "", http.StatusUnauthorized},
		{"api as admin", http.MethodGet, "/api/loans", "admin", http.StatusOK},
		{"bad role", http.MethodGet, "/api/loans", "root", http.StatusBadRequest},
		{"unknown route", http.MethodGet, "/nope", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.role != "" {
				req.Header.Set("Ax-Caller-Id", "ADM-1")
				req.Header.Set("Ax-Caller-Role", tt.role)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d; body=%s", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestNewEcho_CORSPreflight(t *testing.T) {
	e := newEcho(newTestApp())
	req := httptest.NewRequest(http.MethodOptions, "/api/books", nil)
	req.Header.Set("Origin", "https://library.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://library.example" {
		t.Fatalf("allow origin = %q", got)
	}
	if !strings.Contains(rec.Header().Get("Access-Control-Allow-Headers"), "Ax-Caller-Id") {
		t.Fatalf("caller header not allowed: %q", rec.Header().Get("Access-Control-Allow-Headers"))
	}
}

func TestLoanConfig(t *testing.T) {
	a := newTestApp()
	a.cfg.LoanPeriodDays = 7
	a.cfg.ReactivationPolicy = config.ReactivationOversubscribe
	lc := a.loanConfig()
	if lc.LoanPeriod.Hours() != 7*24 || string(lc.Reactivation) != "oversubscribe" {
		t.Fatalf("unexpected loan config: %+v", lc)
	}
}
