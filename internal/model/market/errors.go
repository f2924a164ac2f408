package market

import (
	"fmt"
	"net/http"
)

// NotFoundError is returned when no record with the given id exists.
type NotFoundError struct {
	Collection string
	ID         int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s record %d not found", e.Collection, e.ID)
}

// StatusCode returns the HTTP status code for this error.
func (e *NotFoundError) StatusCode() int { return http.StatusNotFound }

// Code returns the machine-readable reason.
func (e *NotFoundError) Code() string { return "not_found" }

// ConflictError is returned when creating a record whose id is already taken.
type ConflictError struct {
	Collection string
	ID         int64
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s record %d already exists", e.Collection, e.ID)
}

func (e *ConflictError) StatusCode() int { return http.StatusConflict }

func (e *ConflictError) Code() string { return "conflict" }

// ValidationError is returned when a write body is missing a field or a
// field has the wrong shape.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %q: %s", e.Field, e.Message)
	}
	return e.Message
}

func (e *ValidationError) StatusCode() int { return http.StatusBadRequest }

func (e *ValidationError) Code() string { return "validation_failed" }

// StatusCodeError is an error that knows which HTTP status and reason code
// it maps to.
type StatusCodeError interface {
	error
	StatusCode() int
	Code() string
}
