package server

import "github.com/labstack/echo/v4"

// Registrar is a common interface for all HTTP route registrars
type Registrar interface {
	Register(g *echo.Group)
}
