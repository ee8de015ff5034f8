package webserver

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/fruitables/fruitables/internal/catalog"
)

// ErrorBody is the JSON envelope for failed requests.
type ErrorBody struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// OK writes a 200 response with the payload.
func OK(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, data)
}

// Fail writes an error envelope.
func Fail(c echo.Context, status int, code, message string, details interface{}) error {
	return c.JSON(status, ErrorBody{Code: code, Message: message, Details: details})
}

// FailFromError maps service errors onto HTTP outcomes. Anything outside the
// catalog taxonomy is treated as a server fault and logged.
func FailFromError(c echo.Context, err error) error {
	var (
		validationErr *catalog.ValidationError
		notFoundErr   *catalog.NotFoundError
		badReqErr     *catalog.BadRequestError
		imageErr      *catalog.InvalidImageError
		dupErr        *catalog.DuplicateNameError
		conflictErr   *catalog.ConflictError
		parseErr      *catalog.ParseError
	)
	switch {
	case errors.As(err, &validationErr):
		return Fail(c, http.StatusBadRequest, "VALIDATION_FAILED", "Validation failed", validationErr.Fields)
	case errors.As(err, &notFoundErr):
		return Fail(c, http.StatusNotFound, "NOT_FOUND", notFoundErr.Error(), nil)
	case errors.As(err, &badReqErr):
		return Fail(c, http.StatusBadRequest, "INVALID_REQUEST", badReqErr.Error(), nil)
	case errors.As(err, &imageErr):
		return Fail(c, http.StatusBadRequest, "INVALID_IMAGE", imageErr.Error(), nil)
	case errors.As(err, &dupErr):
		return Fail(c, http.StatusConflict, "DUPLICATE_NAME", dupErr.Error(), nil)
	case errors.As(err, &conflictErr):
		return Fail(c, http.StatusConflict, "CONFLICT", conflictErr.Error(), nil)
	case errors.As(err, &parseErr):
		return Fail(c, http.StatusBadRequest, "INVALID_PRICE", parseErr.Error(), nil)
	default:
		zap.L().Error("request failed", zap.Error(err))
		return Fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Internal error", nil)
	}
}

// ParseIDParam reads a positive int64 path parameter.
func ParseIDParam(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, &catalog.BadRequestError{Reason: "invalid " + name + " parameter"}
	}
	return id, nil
}

// ParsePagination reads page and perPage query parameters with the service
// defaults; clamping happens in the catalog service.
func ParsePagination(c echo.Context) (page, pageSize int) {
	page = 1
	if p, err := strconv.Atoi(strings.TrimSpace(c.QueryParam("page"))); err == nil && p > 0 {
		page = p
	}
	if ps, err := strconv.Atoi(strings.TrimSpace(c.QueryParam("perPage"))); err == nil && ps > 0 {
		pageSize = ps
	}
	return page, pageSize
}
