package adminapi

import (
	"github.com/labstack/echo/v4"

	"github.com/fruitables/fruitables/internal/catalog"
	"github.com/fruitables/fruitables/internal/webserver"
)

type tagPayload struct {
	ID   int64  `json:"id"`
	Name string `json:"name" validate:"required,min=1,max=100"`
}

// TagHandler serves the tag management endpoints.
type TagHandler struct {
	svc *catalog.TagService
}

func NewTagHandler(svc *catalog.TagService) *TagHandler {
	return &TagHandler{svc: svc}
}

func (h *TagHandler) Register(g *echo.Group) {
	g.GET("/tags", h.list)
	g.GET("/tags/:id", h.detail)
	g.POST("/tags", h.create)
	g.PUT("/tags/:id", h.update)
	g.DELETE("/tags/:id", h.delete)
}

func (h *TagHandler) list(c echo.Context) error {
	tags, err := h.svc.List(c.Request().Context())
	if err != nil {
		return webserver.FailFromError(c, err)
	}
	return webserver.OK(c, tags)
}

func (h *TagHandler) detail(c echo.Context) error {
	id, err := webserver.ParseIDParam(c, "id")
	if err != nil {
		return webserver.FailFromError(c, err)
	}
	tag, err := h.svc.Detail(c.Request().Context(), id)
	if err != nil {
		return webserver.FailFromError(c, err)
	}
	return webserver.OK(c, tag)
}

func (h *TagHandler) create(c echo.Context) error {
	var payload tagPayload
	if err := c.Bind(&payload); err != nil {
		return webserver.Fail(c, 400, "INVALID_REQUEST", "Unable to parse tag parameters", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return webserver.FailValidation(c, err)
	}

	tag, err := h.svc.Create(c.Request().Context(), payload.Name)
	if err != nil {
		return webserver.FailFromError(c, err)
	}
	return webserver.OK(c, tag)
}

func (h *TagHandler) update(c echo.Context) error {
	id, err := webserver.ParseIDParam(c, "id")
	if err != nil {
		return webserver.FailFromError(c, err)
	}

	var payload tagPayload
	if err := c.Bind(&payload); err != nil {
		return webserver.Fail(c, 400, "INVALID_REQUEST", "Unable to parse tag parameters", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return webserver.FailValidation(c, err)
	}

	tag, err := h.svc.Update(c.Request().Context(), id, payload.ID, payload.Name)
	if err != nil {
		return webserver.FailFromError(c, err)
	}
	return webserver.OK(c, tag)
}

func (h *TagHandler) delete(c echo.Context) error {
	id, err := webserver.ParseIDParam(c, "id")
	if err != nil {
		return webserver.FailFromError(c, err)
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return webserver.FailFromError(c, err)
	}
	return webserver.OK(c, map[string]interface{}{"id": id})
}
