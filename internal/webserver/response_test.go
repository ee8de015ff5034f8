package webserver

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fruitables/fruitables/internal/catalog"
)

func newContext(t *testing.T, target string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestFailFromErrorStatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", &catalog.ValidationError{Fields: map[string]string{"name": "required"}}, http.StatusBadRequest},
		{"not found", &catalog.NotFoundError{Entity: "product", ID: 7}, http.StatusNotFound},
		{"bad request", &catalog.BadRequestError{Reason: "id mismatch"}, http.StatusBadRequest},
		{"invalid image", &catalog.InvalidImageError{Reason: "not an image"}, http.StatusBadRequest},
		{"duplicate name", &catalog.DuplicateNameError{Name: "fresh"}, http.StatusConflict},
		{"conflict", &catalog.ConflictError{Reason: "referenced"}, http.StatusConflict},
		{"parse", &catalog.ParseError{Input: "abc"}, http.StatusBadRequest},
		{"wrapped not found", errors.Wrap(&catalog.NotFoundError{Entity: "tag", ID: 3}, "detail"), http.StatusNotFound},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := newContext(t, "/")
			require.NoError(t, FailFromError(c, tc.err))
			assert.Equal(t, tc.status, rec.Code)
		})
	}
}

func TestParseIDParam(t *testing.T) {
	c, _ := newContext(t, "/")
	c.SetParamNames("id")
	c.SetParamValues("42")

	id, err := ParseIDParam(c, "id")
	require.NoError(t, err)
	assert.EqualValues(t, 42, id)

	c.SetParamValues("zero")
	_, err = ParseIDParam(c, "id")
	var brErr *catalog.BadRequestError
	require.ErrorAs(t, err, &brErr)
}

func TestParsePagination(t *testing.T) {
	c, _ := newContext(t, "/?page=3&perPage=25")
	page, pageSize := ParsePagination(c)
	assert.Equal(t, 3, page)
	assert.Equal(t, 25, pageSize)

	c, _ = newContext(t, "/?page=-2")
	page, pageSize = ParsePagination(c)
	assert.Equal(t, 1, page)
	assert.Equal(t, 0, pageSize)
}
