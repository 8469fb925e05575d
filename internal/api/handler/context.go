package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/todolist/todo-api/internal/api/middleware"
)

// ContextKeyUserID is where the Auth middleware stores the token subject.
const ContextKeyUserID = middleware.ContextKeyUserID

// requestID returns the id assigned by the RequestID middleware, if any.
func requestID(c echo.Context) string {
	if id := c.Response().Header().Get(echo.HeaderXRequestID); id != "" {
		return id
	}
	return c.Request().Header.Get(echo.HeaderXRequestID)
}

// ctxUserID extracts the authenticated user id and fails fast when the
// middleware did not run or the token carried no subject.
func ctxUserID(c echo.Context) (string, error) {
	id, _ := c.Get(ContextKeyUserID).(string)
	if id == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return id, nil
}
