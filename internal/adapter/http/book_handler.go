package http

import (
	"net/http"

	"library-backend/internal/adapter/middleware"
	"library-backend/internal/domain/actor"
	"library-backend/internal/usecase/book"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type BookHandler struct {
	responder
	uc *book.Usecase
}

func NewBookHandler(uc *book.Usecase, log *zap.Logger) *BookHandler {
	return &BookHandler{responder: newResponder(log), uc: uc}
}

func (h *BookHandler) ListBooks(c echo.Context) error {
	return h.list(c, middleware.ActorFrom(c))
}

// PublicBooks ignores any caller headers and lists live books only.
func (h *BookHandler) PublicBooks(c echo.Context) error {
	return h.list(c, actor.Anonymous())
}

func (h *BookHandler) list(c echo.Context, a actor.Actor) error {
	books, err := h.uc.List(c.Request().Context(), a)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, books)
}

func (h *BookHandler) GetBook(c echo.Context) error {
	b, err := h.uc.Get(c.Request().Context(), middleware.ActorFrom(c), c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

func (h *BookHandler) CreateBook(c echo.Context) error {
	var req book.CreateBookInput
	if ok, err := decode(c, &req); !ok {
		return err
	}
	b, err := h.uc.Create(c.Request().Context(), middleware.ActorFrom(c), req)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, b)
}

func (h *BookHandler) UpdateBook(c echo.Context) error {
	var req book.UpdateBookInput
	if ok, err := decode(c, &req); !ok {
		return err
	}
	b, err := h.uc.Update(c.Request().Context(), middleware.ActorFrom(c), c.Param("id"), req)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

func (h *BookHandler) DeleteBook(c echo.Context) error {
	if err := h.uc.Delete(c.Request().Context(), middleware.ActorFrom(c), c.Param("id")); err != nil {
		return h.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *BookHandler) RestoreBook(c echo.Context) error {
	b, err := h.uc.Restore(c.Request().Context(), middleware.ActorFrom(c), c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

func (h *BookHandler) Reconcile(c echo.Context) error {
	report, err := h.uc.Reconcile(c.Request().Context(), middleware.ActorFrom(c))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, report)
}
