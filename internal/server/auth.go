package server

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// userIDKey is the echo context key holding the acting user's id.
const userIDKey = "acting_user_id"

// UserIDHeader carries the authenticated user's stable id, injected by
// the upstream gateway after ticket validation. Session handling
// itself lives outside this service.
const UserIDHeader = "X-User-ID"

// RequireUser resolves the acting user id from the request and rejects
// requests without one.
func RequireUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw := c.Request().Header.Get(UserIDHeader)
		if raw == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing user identity")
		}
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid user identity")
		}
		c.Set(userIDKey, id)
		return next(c)
	}
}

// CurrentUserID returns the acting user's id placed by RequireUser.
func CurrentUserID(c echo.Context) uint64 {
	id, _ := c.Get(userIDKey).(uint64)
	return id
}
