package discover

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/wandermatch/wandermatch/internal/app"
	svcErr "github.com/wandermatch/wandermatch/internal/errors"
	"github.com/wandermatch/wandermatch/internal/server"
)

// Registrar ties the discover service into the HTTP server
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the discover service
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register attaches the discovery route to the API group
func (r *Registrar) Register(g *echo.Group) {
	svc := NewService(r.appCtx)
	h := &handler{svc: svc}

	g.GET("/discover", h.getCandidates)
}

type handler struct {
	svc *Service
}

func (h *handler) getCandidates(c echo.Context) error {
	limit := 20
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 100 {
			return svcErr.BadRequest("limit must be between 1 and 100")
		}
		limit = n
	}

	candidates, err := h.svc.GetCandidates(c.Request().Context(), server.CurrentUserID(c), limit)
	if err != nil {
		return svcErr.Map(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"candidates": candidates})
}
