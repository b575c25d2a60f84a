package http

import (
	"context"
	"net/http"

	"library-backend/internal/adapter/middleware"
	"library-backend/internal/domain/actor"
	domain "library-backend/internal/domain/client"
	"library-backend/internal/usecase/client"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type ClientHandler struct {
	responder
	uc *client.Usecase
}

func NewClientHandler(uc *client.Usecase, log *zap.Logger) *ClientHandler {
	return &ClientHandler{responder: newResponder(log), uc: uc}
}

func (h *ClientHandler) ListClients(c echo.Context) error {
	out, err := h.uc.List(c.Request().Context(), middleware.ActorFrom(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ClientHandler) GetClient(c echo.Context) error {
	out, err := h.uc.Get(c.Request().Context(), middleware.ActorFrom(c), c.Param("identification"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ClientHandler) CreateClient(c echo.Context) error {
	var req client.CreateClientInput
	if ok, err := decode(c, &req); !ok {
		return err
	}
	out, err := h.uc.Create(c.Request().Context(), middleware.ActorFrom(c), req)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *ClientHandler) UpdateClient(c echo.Context) error {
	var req client.UpdateClientInput
	if ok, err := decode(c, &req); !ok {
		return err
	}
	out, err := h.uc.Update(c.Request().Context(), middleware.ActorFrom(c), c.Param("identification"), req)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ClientHandler) DeleteClient(c echo.Context) error {
	if err := h.uc.Delete(c.Request().Context(), middleware.ActorFrom(c), c.Param("identification")); err != nil {
		return h.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *ClientHandler) RestoreClient(c echo.Context) error { return h.apply(c, h.uc.Restore) }

func (h *ClientHandler) BlockClient(c echo.Context) error { return h.apply(c, h.uc.Block) }

func (h *ClientHandler) UnblockClient(c echo.Context) error { return h.apply(c, h.uc.Unblock) }

func (h *ClientHandler) apply(c echo.Context, op func(context.Context, actor.Actor, string) (*domain.Client, error)) error {
	out, err := op(c.Request().Context(), middleware.ActorFrom(c), c.Param("identification"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
