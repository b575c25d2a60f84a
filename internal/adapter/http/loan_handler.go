package http

import (
	"context"
	"net/http"

	"library-backend/internal/adapter/middleware"
	"library-backend/internal/domain/actor"
	"library-backend/internal/usecase/loan"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type LoanHandler struct {
	responder
	uc *loan.Usecase
}

func NewLoanHandler(uc *loan.Usecase, log *zap.Logger) *LoanHandler {
	return &LoanHandler{responder: newResponder(log), uc: uc}
}

func (h *LoanHandler) CreateLoan(c echo.Context) error {
	var req loan.CreateLoanInput
	if ok, err := decode(c, &req); !ok {
		return err
	}
	out, err := h.uc.Create(c.Request().Context(), middleware.ActorFrom(c), req)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *LoanHandler) GetLoan(c echo.Context) error {
	dto, err := h.uc.Get(c.Request().Context(), middleware.ActorFrom(c), c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) ListLoans(c echo.Context) error {
	out, err := h.uc.List(c.Request().Context(), middleware.ActorFrom(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *LoanHandler) ReturnLoan(c echo.Context) error { return h.apply(c, h.uc.Return) }

func (h *LoanHandler) DeactivateLoan(c echo.Context) error { return h.apply(c, h.uc.Deactivate) }

func (h *LoanHandler) ReactivateLoan(c echo.Context) error { return h.apply(c, h.uc.Reactivate) }

func (h *LoanHandler) apply(c echo.Context, op func(context.Context, actor.Actor, string) (*loan.LoanDTO, error)) error {
	dto, err := op(c.Request().Context(), middleware.ActorFrom(c), c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
