package profile

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/wandermatch/wandermatch/internal/app"
	svcErr "github.com/wandermatch/wandermatch/internal/errors"
	"github.com/wandermatch/wandermatch/internal/server"
)

// Registrar ties the profile service into the HTTP server
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the profile service
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register attaches the profile routes to the API group
func (r *Registrar) Register(g *echo.Group) {
	svc := NewService(r.appCtx)
	h := &handler{svc: svc}

	g.GET("/profile", h.get)
	g.PUT("/profile/preferences", h.updatePreferences)
}

type handler struct {
	svc *Service
}

type profileResponse struct {
	ID             uint64            `json:"id"`
	Username       string            `json:"username"`
	PreferredTypes []string          `json:"preferred_types"`
	Preferences    map[string]string `json:"preferences"`
}

type preferencesRequest struct {
	PreferredTypes []string          `json:"preferred_types"`
	Preferences    map[string]string `json:"preferences"`
}

func (h *handler) get(c echo.Context) error {
	user, err := h.svc.Get(c.Request().Context(), server.CurrentUserID(c))
	if err != nil {
		return svcErr.Map(err)
	}
	return c.JSON(http.StatusOK, profileResponse{
		ID:             user.ID,
		Username:       user.Username,
		PreferredTypes: user.PreferredTypes,
		Preferences:    user.Preferences,
	})
}

func (h *handler) updatePreferences(c echo.Context) error {
	var req preferencesRequest
	if err := c.Bind(&req); err != nil {
		return svcErr.BadRequest("invalid request body")
	}

	user, err := h.svc.UpdatePreferences(c.Request().Context(), server.CurrentUserID(c), req.PreferredTypes, req.Preferences)
	if err != nil {
		return svcErr.Map(err)
	}
	return c.JSON(http.StatusOK, profileResponse{
		ID:             user.ID,
		Username:       user.Username,
		PreferredTypes: user.PreferredTypes,
		Preferences:    user.Preferences,
	})
}
