package http

import (
	"context"
	"net/http"

	"library-backend/internal/adapter/middleware"
	"library-backend/internal/domain/actor"
	domain "library-backend/internal/domain/fine"
	"library-backend/internal/usecase/fine"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type FineHandler struct {
	responder
	uc *fine.Usecase
}

func NewFineHandler(uc *fine.Usecase, log *zap.Logger) *FineHandler {
	return &FineHandler{responder: newResponder(log), uc: uc}
}

func (h *FineHandler) ListFines(c echo.Context) error {
	out, err := h.uc.List(c.Request().Context(), middleware.ActorFrom(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *FineHandler) CreateFine(c echo.Context) error {
	var req fine.CreateFineInput
	if ok, err := decode(c, &req); !ok {
		return err
	}
	out, err := h.uc.Create(c.Request().Context(), middleware.ActorFrom(c), req)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *FineHandler) PayFine(c echo.Context) error { return h.apply(c, h.uc.Pay) }

func (h *FineHandler) DisableFine(c echo.Context) error { return h.apply(c, h.uc.Disable) }

func (h *FineHandler) EnableFine(c echo.Context) error { return h.apply(c, h.uc.Enable) }

func (h *FineHandler) apply(c echo.Context, op func(context.Context, actor.Actor, string) (*domain.Fine, error)) error {
	out, err := op(c.Request().Context(), middleware.ActorFrom(c), c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
