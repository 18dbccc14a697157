package rows

import (
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// Messages surfaced to the client.
const (
	MsgAllFieldsRequired = "All fields are required"
	MsgIncompleteData    = "Incomplete data"
	MsgRowNotFound       = "Row not found"
)

// ValidationError is returned when a submitted row is missing required
// fields or carries malformed values.
type ValidationError struct {
	Message string
	Fields  validator.ValidationErrors
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	names := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		names = append(names, f.Field())
	}
	return fmt.Sprintf("%s: %v", e.Message, names)
}

// StatusCode returns the HTTP status code for this error.
func (e *ValidationError) StatusCode() int {
	return http.StatusBadRequest
}

// NotFoundError is returned when no row carries the requested id.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return MsgRowNotFound
}

// StatusCode returns the HTTP status code for this error.
func (e *NotFoundError) StatusCode() int {
	return http.StatusNotFound
}
