package webserver

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// FailValidation converts a go-playground validation error into the field
// error envelope, matching the shape the catalog schema validation produces.
func FailValidation(c echo.Context, err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[strings.ToLower(fe.Field())] = "failed on the '" + fe.Tag() + "' rule"
		}
		return Fail(c, http.StatusBadRequest, "VALIDATION_FAILED", "Validation failed", fields)
	}
	return Fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to validate request", nil)
}
