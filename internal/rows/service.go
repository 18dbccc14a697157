// Package rows implements the Row Service: list, create, update and delete
// over a storage.Storage, plus lookup of a single row.
//
// net/http serves requests concurrently, so every operation that pairs a
// FindIndex with a positional mutation runs under the service mutex. The
// index therefore cannot shift between lookup and write.
package rows

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"dario.cat/mergo"
	"github.com/aanand-mishra/table-api/internal/storage"
	"github.com/aanand-mishra/table-api/internal/types"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// maxIDAttempts bounds regeneration when a fresh id is already taken.
const maxIDAttempts = 5

type Service struct {
	store    storage.Storage
	validate *validator.Validate
	newID    func() string
	mu       sync.Mutex
}

// Option configures a Service.
type Option func(*Service)

// WithIDGenerator replaces the default UUID generator.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// complete checks rows outside a Service, such as seed rows.
var complete = newValidator()

// newValidator reports fields by their json names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate reports whether row is a complete record, using the same rules
// as Update: every field set, a positive age and an ISO birth date.
func Validate(row types.Row) error {
	return check(complete, row, MsgIncompleteData)
}

func New(store storage.Storage, opts ...Option) *Service {
	s := &Service{
		store:    store,
		validate: newValidator(),
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns the full current sequence verbatim.
func (s *Service) List(ctx context.Context) ([]types.Row, error) {
	rows, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	return rows, nil
}

// Get returns the row carrying id.
func (s *Service) Get(ctx context.Context, id string) (types.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, err := s.indexOf(ctx, id)
	if err != nil {
		return types.Row{}, fmt.Errorf("Get: %w", err)
	}

	row, err := s.store.At(ctx, idx)
	if err != nil {
		return types.Row{}, fmt.Errorf("Get: %w", err)
	}
	return row, nil
}

// Create validates the candidate, assigns a fresh id and appends it.
// Education is not required on create.
func (s *Service) Create(ctx context.Context, candidate types.Row) (types.Row, error) {
	row := candidate.Normalize()
	if err := check(s.validate, row, MsgAllFieldsRequired, "Education"); err != nil {
		return types.Row{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.uniqueID(ctx)
	if err != nil {
		return types.Row{}, fmt.Errorf("Create: %w", err)
	}
	row.ID = id

	if err := s.store.Append(ctx, row); err != nil {
		return types.Row{}, fmt.Errorf("Create: %w", err)
	}
	return row, nil
}

// Update merges newData over the stored row: non-empty submitted fields
// win, everything else keeps its stored value, and the stored id is never
// replaced. The merged row is returned.
func (s *Service) Update(ctx context.Context, id string, newData types.Row) (types.Row, error) {
	patch := newData.Normalize()
	if err := check(s.validate, patch, MsgIncompleteData); err != nil {
		return types.Row{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx, err := s.indexOf(ctx, id)
	if err != nil {
		return types.Row{}, fmt.Errorf("Update: %w", err)
	}

	current, err := s.store.At(ctx, idx)
	if err != nil {
		return types.Row{}, fmt.Errorf("Update: %w", err)
	}

	merged := current
	if err := mergo.Merge(&merged, patch, mergo.WithOverride); err != nil {
		return types.Row{}, fmt.Errorf("Update: merge: %w", err)
	}
	merged.ID = current.ID

	if err := s.store.ReplaceAt(ctx, idx, merged); err != nil {
		return types.Row{}, fmt.Errorf("Update: %w", err)
	}
	return merged, nil
}

// Delete removes the row carrying id and returns the remaining sequence.
func (s *Service) Delete(ctx context.Context, id string) ([]types.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, err := s.indexOf(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("Delete: %w", err)
	}

	if err := s.store.RemoveAt(ctx, idx); err != nil {
		return nil, fmt.Errorf("Delete: %w", err)
	}

	remaining, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("Delete: %w", err)
	}
	return remaining, nil
}

// check validates row and drops failures on the skipped struct fields.
func check(v *validator.Validate, row types.Row, message string, skip ...string) error {
	err := v.Struct(row)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate: %w", err)
	}

	kept := make(validator.ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		if !contains(skip, fe.StructField()) {
			kept = append(kept, fe)
		}
	}
	if len(kept) == 0 {
		return nil
	}
	return &ValidationError{Message: message, Fields: kept}
}

// indexOf must be called with mu held.
func (s *Service) indexOf(ctx context.Context, id string) (int, error) {
	idx, err := s.store.FindIndex(ctx, id)
	if err != nil {
		return -1, err
	}
	if idx == -1 {
		return -1, &NotFoundError{ID: id}
	}
	return idx, nil
}

// uniqueID must be called with mu held.
func (s *Service) uniqueID(ctx context.Context) (string, error) {
	for i := 0; i < maxIDAttempts; i++ {
		id := s.newID()
		if id == "" {
			continue
		}
		idx, err := s.store.FindIndex(ctx, id)
		if err != nil {
			return "", err
		}
		if idx == -1 {
			return id, nil
		}
	}
	return "", fmt.Errorf("no unique id after %d attempts", maxIDAttempts)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
