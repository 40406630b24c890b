package match

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/wandermatch/wandermatch/internal/app"
	svcErr "github.com/wandermatch/wandermatch/internal/errors"
	"github.com/wandermatch/wandermatch/internal/server"
)

// Registrar ties the match service into the HTTP server
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the match service
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register attaches the swipe/match routes to the API group
func (r *Registrar) Register(g *echo.Group) {
	svc := NewService(r.appCtx)
	h := &handler{svc: svc}

	g.POST("/swipes", h.recordSwipe)
	g.GET("/matches", h.listMatches)
	g.POST("/matches/:id/accept", h.acceptMatch)
	g.POST("/matches/:id/reject", h.rejectMatch)
}

type handler struct {
	svc *Service
}

type swipeRequest struct {
	ExperienceID uint64 `json:"experience_id"`
	Direction    string `json:"direction"`
}

type swipeResponse struct {
	MatchCreated bool    `json:"match_created"`
	MatchID      *uint64 `json:"match_id,omitempty"`
	MatchStatus  string  `json:"match_status,omitempty"`
}

func (h *handler) recordSwipe(c echo.Context) error {
	var req swipeRequest
	if err := c.Bind(&req); err != nil {
		return svcErr.BadRequest("invalid request body")
	}
	if req.ExperienceID == 0 {
		return svcErr.BadRequest("experience_id is required")
	}
	direction := Direction(req.Direction)
	if !direction.Valid() {
		return svcErr.BadRequest("direction must be \"like\" or \"pass\"")
	}

	result, err := h.svc.RecordSwipe(c.Request().Context(), server.CurrentUserID(c), req.ExperienceID, direction)
	if err != nil {
		return svcErr.Map(err)
	}

	resp := swipeResponse{MatchCreated: result.MatchCreated}
	if result.Match != nil {
		resp.MatchID = &result.Match.ID
		resp.MatchStatus = result.Match.Status
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *handler) listMatches(c echo.Context) error {
	list, err := h.svc.ListMatchesForUser(c.Request().Context(), server.CurrentUserID(c))
	if err != nil {
		return svcErr.Map(err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *handler) acceptMatch(c echo.Context) error {
	matchID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return svcErr.BadRequest("match id must be a valid uint64")
	}

	m, err := h.svc.AcceptMatch(c.Request().Context(), server.CurrentUserID(c), matchID)
	if err != nil {
		return svcErr.Map(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"id": m.ID, "status": m.Status})
}

func (h *handler) rejectMatch(c echo.Context) error {
	matchID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return svcErr.BadRequest("match id must be a valid uint64")
	}

	if err := h.svc.RejectMatch(c.Request().Context(), server.CurrentUserID(c), matchID); err != nil {
		return svcErr.Map(err)
	}
	return c.NoContent(http.StatusNoContent)
}
