package http

import (
	"errors"
	"net/http"

	"library-backend/internal/domain/apperr"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// decode binds and validates the request body. When ok is false the error
// response has already been written and err is what the handler returns.
func decode(c echo.Context, in any) (ok bool, err error) {
	if err := c.Bind(in); err != nil {
		return false, c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(in); err != nil {
		return false, c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	return true, nil
}

func statusOf(kind apperr.Kind) int {
	switch kind {
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindInvalidArgument:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

type responder struct{ log *zap.Logger }

func newResponder(log *zap.Logger) responder {
	if log == nil {
		log = zap.NewNop()
	}
	return responder{log: log}
}

// fail maps err to its HTTP status. Errors outside the domain taxonomy are
// logged and hidden behind a generic message.
func (r responder) fail(c echo.Context, err error) error {
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		r.log.Error("request failed",
			zap.String("method", c.Request().Method),
			zap.String("route", c.Path()),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
	if ae.Kind == apperr.KindPartialFailure {
		r.log.Error("request partially applied",
			zap.String("route", c.Path()),
			zap.Strings("keys", ae.Keys),
			zap.Error(err))
	}
	return c.JSON(statusOf(ae.Kind), ErrorResponse{Error: err.Error(), Kind: string(ae.Kind)})
}
