// Package adminapi exposes the catalog management endpoints. Handlers stay
// thin: parse transport input, call the injected service, translate errors.
package adminapi

import (
	"mime/multipart"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"

	"github.com/fruitables/fruitables/internal/catalog"
	"github.com/fruitables/fruitables/internal/webserver"
)

// ProductHandler serves the admin product CRUD endpoints.
type ProductHandler struct {
	svc *catalog.Service
}

func NewProductHandler(svc *catalog.Service) *ProductHandler {
	return &ProductHandler{svc: svc}
}

func (h *ProductHandler) Register(g *echo.Group) {
	g.GET("/products", h.list)
	g.GET("/products/:id", h.detail)
	g.POST("/products", h.create)
	g.PUT("/products/:id", h.update)
	g.DELETE("/products/:id", h.delete)
}

func (h *ProductHandler) list(c echo.Context) error {
	page, pageSize := webserver.ParsePagination(c)
	result, err := h.svc.List(c.Request().Context(), page, pageSize)
	if err != nil {
		return webserver.FailFromError(c, err)
	}
	return webserver.OK(c, result)
}

func (h *ProductHandler) detail(c echo.Context) error {
	id, err := webserver.ParseIDParam(c, "id")
	if err != nil {
		return webserver.FailFromError(c, err)
	}
	detail, err := h.svc.Detail(c.Request().Context(), id)
	if err != nil {
		return webserver.FailFromError(c, err)
	}
	return webserver.OK(c, detail)
}

func (h *ProductHandler) create(c echo.Context) error {
	input, file, err := parseProductForm(c)
	if err != nil {
		return webserver.FailFromError(c, err)
	}
	if file != nil {
		defer file.Close()
	}

	detail, err := h.svc.Create(c.Request().Context(), input)
	if err != nil {
		return webserver.FailFromError(c, err)
	}
	return webserver.OK(c, detail)
}

func (h *ProductHandler) update(c echo.Context) error {
	id, err := webserver.ParseIDParam(c, "id")
	if err != nil {
		return webserver.FailFromError(c, err)
	}

	input, file, err := parseProductForm(c)
	if err != nil {
		return webserver.FailFromError(c, err)
	}
	if file != nil {
		defer file.Close()
	}

	detail, err := h.svc.Update(c.Request().Context(), id, input)
	if err != nil {
		return webserver.FailFromError(c, err)
	}
	return webserver.OK(c, detail)
}

func (h *ProductHandler) delete(c echo.Context) error {
	id, err := webserver.ParseIDParam(c, "id")
	if err != nil {
		return webserver.FailFromError(c, err)
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return webserver.FailFromError(c, err)
	}
	return webserver.OK(c, map[string]interface{}{"id": id})
}

// parseProductForm reads the multipart product form. The returned file must
// be closed by the caller once the service is done with the upload.
func parseProductForm(c echo.Context) (*catalog.ProductInput, multipart.File, error) {
	var price *decimal.Decimal
	if raw := c.FormValue("price"); raw != "" {
		parsed, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, nil, &catalog.ValidationError{
				Fields: map[string]string{"price": "Price must be a decimal number"},
			}
		}
		price = &parsed
	}

	input := &catalog.ProductInput{
		ID:          cast.ToInt64(c.FormValue("id")),
		Name:        c.FormValue("name"),
		Description: c.FormValue("description"),
		Price:       price,
		CategoryID:  cast.ToInt64(c.FormValue("category_id")),
	}

	if form, err := c.MultipartForm(); err == nil && form != nil {
		for _, raw := range form.Value["tag_ids"] {
			if id := cast.ToInt64(raw); id > 0 {
				input.TagIDs = append(input.TagIDs, id)
			}
		}
	}

	fh, err := c.FormFile("image")
	if err != nil {
		// no file part submitted, image stays optional here and the
		// service decides whether that is allowed
		return input, nil, nil
	}
	f, err := fh.Open()
	if err != nil {
		return nil, nil, &catalog.BadRequestError{Reason: "unable to read uploaded image"}
	}
	input.Image = &catalog.ImageUpload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Reader:      f,
	}
	return input, f, nil
}
