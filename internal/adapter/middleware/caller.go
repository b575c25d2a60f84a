package middleware

import (
	"net/http"
	"strings"

	"library-backend/internal/domain/actor"

	"github.com/labstack/echo/v4"
)

const (
	HeaderCallerID   = "Ax-Caller-Id"
	HeaderCallerRole = "Ax-Caller-Role"

	actorKey = "caller"
)

// Caller reads the identity forwarded by the upstream gateway. Requests
// without a role header run as anonymous.
func Caller() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rawRole := strings.TrimSpace(c.Request().Header.Get(HeaderCallerRole))
			if rawRole == "" {
				c.Set(actorKey, actor.Anonymous())
				return next(c)
			}
			role, ok := actor.ParseRole(rawRole)
			if !ok {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid " + HeaderCallerRole})
			}
			id := strings.TrimSpace(c.Request().Header.Get(HeaderCallerID))
			if id == "" {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": "missing " + HeaderCallerID})
			}
			c.Set(actorKey, actor.Actor{Identification: id, Role: role})
			return next(c)
		}
	}
}

// RequireCaller rejects anonymous callers.
func RequireCaller() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if ActorFrom(c).Role == actor.RoleAnonymous {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "caller identity required"})
			}
			return next(c)
		}
	}
}

// ActorFrom returns the caller set by Caller, or anonymous.
func ActorFrom(c echo.Context) actor.Actor {
	if a, ok := c.Get(actorKey).(actor.Actor); ok {
		return a
	}
	return actor.Anonymous()
}
