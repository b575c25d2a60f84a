package http

import (
	"net/http"

	"library-backend/internal/adapter/middleware"
	"library-backend/internal/domain/actor"
	"library-backend/internal/usecase/category"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type CategoryHandler struct {
	responder
	uc *category.Usecase
}

func NewCategoryHandler(uc *category.Usecase, log *zap.Logger) *CategoryHandler {
	return &CategoryHandler{responder: newResponder(log), uc: uc}
}

func (h *CategoryHandler) ListCategories(c echo.Context) error {
	return h.list(c, middleware.ActorFrom(c))
}

func (h *CategoryHandler) PublicCategories(c echo.Context) error {
	return h.list(c, actor.Anonymous())
}

func (h *CategoryHandler) list(c echo.Context, a actor.Actor) error {
	out, err := h.uc.List(c.Request().Context(), a)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CategoryHandler) CreateCategory(c echo.Context) error {
	var req category.CategoryInput
	if ok, err := decode(c, &req); !ok {
		return err
	}
	out, err := h.uc.Create(c.Request().Context(), middleware.ActorFrom(c), req)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *CategoryHandler) UpdateCategory(c echo.Context) error {
	var req category.UpdateCategoryInput
	if ok, err := decode(c, &req); !ok {
		return err
	}
	out, err := h.uc.Update(c.Request().Context(), middleware.ActorFrom(c), c.Param("id"), req)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CategoryHandler) DeleteCategory(c echo.Context) error {
	if err := h.uc.Delete(c.Request().Context(), middleware.ActorFrom(c), c.Param("id")); err != nil {
		return h.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CategoryHandler) RestoreCategory(c echo.Context) error {
	out, err := h.uc.Restore(c.Request().Context(), middleware.ActorFrom(c), c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
