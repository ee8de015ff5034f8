package catalog

import "fmt"

// ValidationError reports per-field schema failures. Fields maps a field
// name to a human readable message.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %d field(s)", len(e.Fields))
}

// NotFoundError reports a missing entity.
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// BadRequestError reports a malformed request, e.g. a path/payload id
// mismatch.
type BadRequestError struct {
	Reason string
}

func (e *BadRequestError) Error() string {
	return e.Reason
}

// InvalidImageError reports an upload with the wrong content type or an
// oversized body.
type InvalidImageError struct {
	Reason string
}

func (e *InvalidImageError) Error() string {
	return e.Reason
}

// DuplicateNameError reports a name collision on tags or categories. Names
// are compared trimmed and case-insensitively.
type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("name %q already exists", e.Name)
}

// ConflictError reports a delete blocked by existing references.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string {
	return e.Reason
}

// ParseError reports malformed numeric input from the storefront.
type ParseError struct {
	Input string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse %q as a decimal number", e.Input)
}
