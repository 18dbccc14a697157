// Package response provides helpers for writing consistent JSON HTTP responses.
//
// Every handler in this application sends JSON back to the client.
// Rather than repeating the same three lines (set header, set status,
// encode JSON) in every handler, we centralise them here.
//
// Consistent response shapes also make life easier for API consumers -
// the table page always knows what error responses look like.
package response

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// ─────────────────────────────────────────────────────────────────────────────
// Response is the standard envelope returned for error cases.
//
// Success responses may return any JSON shape (a row, a list…).
// Error responses always look like:
//
//	{ "status": "error", "error": "All fields are required",
//	  "details": ["field age must be greater than 0"] }
//
// ─────────────────────────────────────────────────────────────────────────────
type Response struct {
	Status  string   `json:"status"`
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

const (
	StatusOK    = "ok"
	StatusError = "error"
)

// ─────────────────────────────────────────────────────────────────────────────
// WriteJSON writes a JSON-encoded response with the given HTTP status code.
//
// IMPORTANT ORDER: Header() → WriteHeader() → body writes.
// Once WriteHeader is called (or the first Write), headers are locked.
// ─────────────────────────────────────────────────────────────────────────────
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// GeneralError wraps any Go error into our standard Response shape.
func GeneralError(err error) Response {
	return Response{
		Status: StatusError,
		Error:  err.Error(),
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// ValidationError builds a Response whose top-level error is the operation's
// message ("All fields are required", "Incomplete data") and whose details
// carry one plain English sentence per failing field.
//
// Field names come from the json tags (validator is configured with a tag
// name func in the service), so the client sees "birthDate", not "BirthDate".
// ─────────────────────────────────────────────────────────────────────────────
func ValidationError(message string, errs validator.ValidationErrors) Response {
	details := make([]string, 0, len(errs))

	for _, e := range errs {
		switch e.ActualTag() {
		case "required":
			details = append(details,
				fmt.Sprintf("field %s is required", e.Field()))
		case "gt":
			details = append(details,
				fmt.Sprintf("field %s must be greater than %s", e.Field(), e.Param()))
		case "datetime":
			details = append(details,
				fmt.Sprintf("field %s must be a date formatted as YYYY-MM-DD", e.Field()))
		default:
			details = append(details,
				fmt.Sprintf("field %s is invalid", e.Field()))
		}
	}

	return Response{
		Status:  StatusError,
		Error:   message,
		Details: details,
	}
}
