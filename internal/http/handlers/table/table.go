// Package table contains all HTTP handlers for the /api/table resource.
//
// HANDLER PATTERN USED HERE, THE CLOSURE / FACTORY PATTERN:
// ────────────────────────────────────────────────────────────
// Each exported function accepts its dependency (the row service) once at
// startup and returns the http.HandlerFunc the router calls on every
// request:
//
//	router.HandleFunc("POST /api/table", table.New(svc))
//
// Two addressing styles are served. The browser page sends the id in the
// body ({id, newData} for PUT, {id} for DELETE); the path-style routes
// (/api/table/{id}) accept the same operations with the id in the URL.
package table

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/aanand-mishra/table-api/internal/rows"
	"github.com/aanand-mishra/table-api/internal/types"
	"github.com/aanand-mishra/table-api/internal/utils/response"
)

// BasePath is the single resource path of the API.
const BasePath = "/api/table"

// Service is the subset of the row service the handlers depend on.
type Service interface {
	List(ctx context.Context) ([]types.Row, error)
	Get(ctx context.Context, id string) (types.Row, error)
	Create(ctx context.Context, candidate types.Row) (types.Row, error)
	Update(ctx context.Context, id string, newData types.Row) (types.Row, error)
	Delete(ctx context.Context, id string) ([]types.Row, error)
}

// UpdateRequest is the PUT body sent by the table page.
type UpdateRequest struct {
	ID      string    `json:"id"`
	NewData types.Row `json:"newData"`
}

// DeleteRequest is the DELETE body sent by the table page.
type DeleteRequest struct {
	ID string `json:"id"`
}

// Register wires every route of the resource into router.
//
// Route table:
//
//	GET    /api/table        → list all rows
//	POST   /api/table        → create a row
//	PUT    /api/table        → update the row named in the body
//	DELETE /api/table        → delete the row named in the body or ?id=
//	GET    /api/table/{id}   → get one row
//	PUT    /api/table/{id}   → update one row
//	DELETE /api/table/{id}   → delete one row
func Register(router *http.ServeMux, svc Service) {
	router.HandleFunc("GET "+BasePath, List(svc))
	router.HandleFunc("POST "+BasePath, New(svc))
	router.HandleFunc("PUT "+BasePath, Update(svc))
	router.HandleFunc("DELETE "+BasePath, Delete(svc))
	router.HandleFunc("GET "+BasePath+"/{id}", GetByID(svc))
	router.HandleFunc("PUT "+BasePath+"/{id}", UpdateByID(svc))
	router.HandleFunc("DELETE "+BasePath+"/{id}", DeleteByID(svc))
}

// ─────────────────────────────────────────────────────────────────────────────
// List handles GET /api/table and returns every row as a JSON array
// (never null).
// ─────────────────────────────────────────────────────────────────────────────
func List(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("listing rows")

		all, err := svc.List(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, all)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// New handles POST /api/table.
//
// Request body (JSON), without an id:
//
//	{ "name": "Alice", "age": 30, "gender": "Female", "city": "Reno",
//	  "birthDate": "1994-01-01", "education": "Bachelors" }
//
// Success: 201 Created with the stored row, including its generated id.
// Errors:  400 for an empty/malformed body or missing fields.
// ─────────────────────────────────────────────────────────────────────────────
func New(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("creating a row")

		var candidate types.Row
		if err := decodeJSON(w, r, &candidate); err != nil {
			badBody(w, err)
			return
		}

		created, err := svc.Create(r.Context(), candidate)
		if err != nil {
			writeError(w, err)
			return
		}

		slog.Info("row created", slog.String("id", created.ID))
		response.WriteJSON(w, http.StatusCreated, created)
	}
}

// GetByID handles GET /api/table/{id}.
func GetByID(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		slog.Info("getting a row", slog.String("id", id))

		row, err := svc.Get(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, row)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Update handles PUT /api/table with a body of { "id": ..., "newData": {...} }.
// Every field of newData is required. The merged stored row is returned.
//
// Errors: 400 for a bad body or missing fields, 404 for an unknown id.
// ─────────────────────────────────────────────────────────────────────────────
func Update(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req UpdateRequest
		if err := decodeJSON(w, r, &req); err != nil {
			badBody(w, err)
			return
		}

		update(w, r, svc, req.ID, req.NewData)
	}
}

// UpdateByID handles PUT /api/table/{id}; the body is the newData object.
func UpdateByID(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var newData types.Row
		if err := decodeJSON(w, r, &newData); err != nil {
			badBody(w, err)
			return
		}

		update(w, r, svc, r.PathValue("id"), newData)
	}
}

func update(w http.ResponseWriter, r *http.Request, svc Service, id string, newData types.Row) {
	slog.Info("updating a row", slog.String("id", id))

	updated, err := svc.Update(r.Context(), id, newData)
	if err != nil {
		writeError(w, err)
		return
	}

	slog.Info("row updated", slog.String("id", id))
	response.WriteJSON(w, http.StatusOK, updated)
}

// ─────────────────────────────────────────────────────────────────────────────
// Delete handles DELETE /api/table. The id is taken from the ?id= query
// parameter when present, otherwise from a { "id": ... } body.
//
// Success: 204 No Content, no body.
// Errors:  400 when no id is supplied, 404 for an unknown id.
// ─────────────────────────────────────────────────────────────────────────────
func Delete(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Query().Get("id")
		if id == "" {
			var req DeleteRequest
			if err := decodeJSON(w, r, &req); err != nil && !errors.Is(err, errEmptyBody) {
				badBody(w, err)
				return
			}
			id = req.ID
		}

		if id == "" {
			response.WriteJSON(w, http.StatusBadRequest,
				response.GeneralError(errors.New("id is required")))
			return
		}

		remove(w, r, svc, id)
	}
}

// DeleteByID handles DELETE /api/table/{id}.
func DeleteByID(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		remove(w, r, svc, r.PathValue("id"))
	}
}

func remove(w http.ResponseWriter, r *http.Request, svc Service, id string) {
	slog.Info("deleting a row", slog.String("id", id))

	if _, err := svc.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	slog.Info("row deleted", slog.String("id", id))
	w.WriteHeader(http.StatusNoContent)
}

// maxBodyBytes caps every request body.
const maxBodyBytes = 1 << 20

var errEmptyBody = errors.New("request body is empty")

// decodeJSON reads one JSON value of at most maxBodyBytes from the request
// body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
	if errors.Is(err, io.EOF) {
		return errEmptyBody
	}
	return err
}

// badBody answers a body that could not be decoded: 413 when it was too
// large, 400 otherwise.
func badBody(w http.ResponseWriter, err error) {
	status := http.StatusBadRequest
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		status = http.StatusRequestEntityTooLarge
	}
	response.WriteJSON(w, status, response.GeneralError(err))
}

// writeError maps service errors to status codes: validation → 400,
// not found → 404, anything else → 500.
func writeError(w http.ResponseWriter, err error) {
	var vErr *rows.ValidationError
	if errors.As(err, &vErr) {
		response.WriteJSON(w, vErr.StatusCode(),
			response.ValidationError(vErr.Message, vErr.Fields))
		return
	}

	var nfErr *rows.NotFoundError
	if errors.As(err, &nfErr) {
		response.WriteJSON(w, nfErr.StatusCode(), response.GeneralError(nfErr))
		return
	}

	slog.Error("internal error", slog.String("error", err.Error()))
	response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
}
