package adminapi

import (
	"github.com/labstack/echo/v4"

	"github.com/fruitables/fruitables/internal/catalog"
	"github.com/fruitables/fruitables/internal/webserver"
)

type categoryPayload struct {
	ID   int64  `json:"id"`
	Name string `json:"name" validate:"required,min=1,max=100"`
}

// CategoryHandler serves the category management endpoints.
type CategoryHandler struct {
	svc *catalog.CategoryService
}

func NewCategoryHandler(svc *catalog.CategoryService) *CategoryHandler {
	return &CategoryHandler{svc: svc}
}

func (h *CategoryHandler) Register(g *echo.Group) {
	g.GET("/categories", h.list)
	g.GET("/categories/:id", h.detail)
	g.POST("/categories", h.create)
	g.PUT("/categories/:id", h.update)
	g.DELETE("/categories/:id", h.delete)
}

func (h *CategoryHandler) list(c echo.Context) error {
	categories, err := h.svc.List(c.Request().Context())
	if err != nil {
		return webserver.FailFromError(c, err)
	}
	return webserver.OK(c, categories)
}

func (h *CategoryHandler) detail(c echo.Context) error {
	id, err := webserver.ParseIDParam(c, "id")
	if err != nil {
		return webserver.FailFromError(c, err)
	}
	category, err := h.svc.Detail(c.Request().Context(), id)
	if err != nil {
		return webserver.FailFromError(c, err)
	}
	return webserver.OK(c, category)
}

func (h *CategoryHandler) create(c echo.Context) error {
	var payload categoryPayload
	if err := c.Bind(&payload); err != nil {
		return webserver.Fail(c, 400, "INVALID_REQUEST", "Unable to parse category parameters", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return webserver.FailValidation(c, err)
	}

	category, err := h.svc.Create(c.Request().Context(), payload.Name)
	if err != nil {
		return webserver.FailFromError(c, err)
	}
	return webserver.OK(c, category)
}

func (h *CategoryHandler) update(c echo.Context) error {
	id, err := webserver.ParseIDParam(c, "id")
	if err != nil {
		return webserver.FailFromError(c, err)
	}

	var payload categoryPayload
	if err := c.Bind(&payload); err != nil {
		return webserver.Fail(c, 400, "INVALID_REQUEST", "Unable to parse category parameters", nil)
	}
	if err := c.Validate(&payload); err != nil {
		return webserver.FailValidation(c, err)
	}

	category, err := h.svc.Update(c.Request().Context(), id, payload.ID, payload.Name)
	if err != nil {
		return webserver.FailFromError(c, err)
	}
	return webserver.OK(c, category)
}

func (h *CategoryHandler) delete(c echo.Context) error {
	id, err := webserver.ParseIDParam(c, "id")
	if err != nil {
		return webserver.FailFromError(c, err)
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return webserver.FailFromError(c, err)
	}
	return webserver.OK(c, map[string]interface{}{"id": id})
}
