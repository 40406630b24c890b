package errors

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// Map converts repo/service errors into HTTP-friendly echo errors.
// Keeps handlers clean by centralizing error mapping.
func Map(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "record not found")

	case errors.Is(err, ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, "not authorized")

	case errors.Is(err, ErrConflict):
		return echo.NewHTTPError(http.StatusConflict, "conflicting state")

	case errors.Is(err, context.DeadlineExceeded):
		return echo.NewHTTPError(http.StatusGatewayTimeout, "request timed out")

	case errors.Is(err, context.Canceled):
		return echo.NewHTTPError(499, "request was canceled")

	default:
		// fallback → bubble up error message for debugging
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

// BadRequest creates an HTTP 400 error.
// Use this in handlers for input validation failures.
func BadRequest(msg string) error {
	return echo.NewHTTPError(http.StatusBadRequest, msg)
}
