package server

import (
	"fmt"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/wandermatch/wandermatch/internal/config"
)

// StartHTTPServer boots the echo server and registers all provided
// route groups under /api/v1. The API sits behind a gateway that
// validates sessions; see auth.go for how the acting user arrives.
func StartHTTPServer(cfg *config.Config, registrars ...Registrar) error {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())

	api := e.Group("/api/v1", RequireUser)
	for _, r := range registrars {
		r.Register(api)
	}

	addr := fmt.Sprintf("%s:%s", cfg.HTTP.Host, cfg.HTTP.Port)
	return e.Start(addr)
}
