package http

import (
	"net/http"
	"time"

	"library-backend/internal/infrastructure/metrics"

	"github.com/labstack/echo/v4"
)

type Handler struct{ metrics *metrics.Metrics }

func NewHandler(m *metrics.Metrics) *Handler { return &Handler{metrics: m} }

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339Nano),
	})
}

func (h *Handler) Metrics(c echo.Context) error {
	h.metrics.Handler().ServeHTTP(c.Response(), c.Request())
	return nil
}
