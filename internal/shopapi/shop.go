// Package shopapi exposes the storefront JSON endpoints: home payload,
// product detail, search, sort and price filtering.
package shopapi

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cast"

	"github.com/fruitables/fruitables/internal/shop"
	"github.com/fruitables/fruitables/internal/webserver"
)

// ShopHandler serves the storefront query endpoints.
type ShopHandler struct {
	svc *shop.QueryService
}

func NewShopHandler(svc *shop.QueryService) *ShopHandler {
	return &ShopHandler{svc: svc}
}

func (h *ShopHandler) Register(g *echo.Group) {
	g.GET("", h.home)
	g.GET("/products/:id", h.detail)
	g.GET("/search", h.search)
	g.GET("/sort", h.sort)
	g.GET("/filter", h.filterByPrice)
}

func (h *ShopHandler) home(c echo.Context) error {
	view, err := h.svc.Home(c.Request().Context())
	if err != nil {
		return webserver.FailFromError(c, err)
	}
	return webserver.OK(c, view)
}

func (h *ShopHandler) detail(c echo.Context) error {
	id, err := webserver.ParseIDParam(c, "id")
	if err != nil {
		return webserver.FailFromError(c, err)
	}
	view, err := h.svc.ProductDetail(c.Request().Context(), id)
	if err != nil {
		return webserver.FailFromError(c, err)
	}
	return webserver.OK(c, view)
}

func (h *ShopHandler) search(c echo.Context) error {
	searchText := strings.TrimSpace(c.QueryParam("q"))
	categoryID := cast.ToInt64(c.QueryParam("category_id"))

	views, err := h.svc.Search(c.Request().Context(), searchText, categoryID)
	if err != nil {
		return webserver.FailFromError(c, err)
	}
	return webserver.OK(c, views)
}

func (h *ShopHandler) sort(c echo.Context) error {
	views, err := h.svc.Sort(c.Request().Context(), c.QueryParam("sort"))
	if err != nil {
		return webserver.FailFromError(c, err)
	}
	return webserver.OK(c, views)
}

func (h *ShopHandler) filterByPrice(c echo.Context) error {
	views, err := h.svc.FilterByPrice(c.Request().Context(), c.QueryParam("max_price"))
	if err != nil {
		return webserver.FailFromError(c, err)
	}
	return webserver.OK(c, views)
}
