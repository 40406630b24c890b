package experience

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/wandermatch/wandermatch/internal/app"
	svcErr "github.com/wandermatch/wandermatch/internal/errors"
	"github.com/wandermatch/wandermatch/internal/server"
)

// Registrar ties the experience service into the HTTP server
type Registrar struct {
	appCtx  *app.AppContext
	indexer Indexer
}

// NewRegistrar creates a new Registrar for the experience service
func NewRegistrar(appCtx *app.AppContext, indexer Indexer) *Registrar {
	return &Registrar{appCtx: appCtx, indexer: indexer}
}

// Register attaches the experience routes to the API group
func (r *Registrar) Register(g *echo.Group) {
	svc := NewService(r.appCtx, r.indexer)
	h := &handler{svc: svc}

	g.POST("/experiences", h.create)
	g.GET("/experiences", h.list)
	g.GET("/experiences/mine", h.listOwn)
	g.GET("/experiences/:id", h.get)
	g.GET("/experiences/:id/likes", h.countLikes)
	g.PUT("/experiences/:id", h.update)
	g.DELETE("/experiences/:id", h.remove)
}

type handler struct {
	svc *Service
}

func (h *handler) create(c echo.Context) error {
	var in Input
	if err := c.Bind(&in); err != nil {
		return svcErr.BadRequest("invalid request body")
	}
	if in.Title == "" || in.ExperienceType == "" {
		return svcErr.BadRequest("title and experience_type are required")
	}

	exp, err := h.svc.Create(c.Request().Context(), server.CurrentUserID(c), in)
	if err != nil {
		return svcErr.Map(err)
	}
	return c.JSON(http.StatusCreated, exp)
}

func (h *handler) list(c echo.Context) error {
	limit := 20
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 100 {
			return svcErr.BadRequest("limit must be between 1 and 100")
		}
		limit = n
	}
	var token *string
	if raw := c.QueryParam("page_token"); raw != "" {
		token = &raw
	}

	exps, next, err := h.svc.ListAll(c.Request().Context(), token, limit)
	if err != nil {
		return svcErr.Map(err)
	}
	resp := echo.Map{"experiences": exps}
	if next != nil {
		resp["next_page_token"] = *next
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *handler) listOwn(c echo.Context) error {
	exps, err := h.svc.ListOwn(c.Request().Context(), server.CurrentUserID(c))
	if err != nil {
		return svcErr.Map(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"experiences": exps})
}

func (h *handler) get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	exp, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return svcErr.Map(err)
	}
	return c.JSON(http.StatusOK, exp)
}

func (h *handler) countLikes(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	count, err := h.svc.CountLikes(c.Request().Context(), id)
	if err != nil {
		return svcErr.Map(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"count": count})
}

func (h *handler) update(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var in Input
	if err := c.Bind(&in); err != nil {
		return svcErr.BadRequest("invalid request body")
	}
	if in.Title == "" || in.ExperienceType == "" {
		return svcErr.BadRequest("title and experience_type are required")
	}

	exp, err := h.svc.Update(c.Request().Context(), server.CurrentUserID(c), id, in)
	if err != nil {
		return svcErr.Map(err)
	}
	return c.JSON(http.StatusOK, exp)
}

func (h *handler) remove(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), server.CurrentUserID(c), id); err != nil {
		return svcErr.Map(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func parseID(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, svcErr.BadRequest("experience id must be a valid uint64")
	}
	return id, nil
}
