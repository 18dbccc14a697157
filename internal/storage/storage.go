// Package storage defines the Storage interface: the contract any
// record store backend must satisfy to hold the table rows.
//
// WHY AN INTERFACE?
// ─────────────────
// The service and HTTP layers should not know or care whether rows live in
// a Go slice or in an SQLite table. Both backends in this repository
// (storage/memory and storage/sqlite) satisfy this interface, and main
// picks one from configuration.
//
// The store is positional: rows keep insertion order, and updates/deletes
// address a row by its current index after a FindIndex lookup. Callers that
// combine FindIndex with ReplaceAt or RemoveAt must serialise those pairs
// themselves; each individual method is safe for concurrent use.
package storage

import (
	"context"
	"errors"

	"github.com/aanand-mishra/table-api/internal/types"
)

var (
	// ErrDuplicateID is returned when a row would share its id with
	// another row already in the store.
	ErrDuplicateID = errors.New("duplicate row id")

	// ErrIndexOutOfRange is returned when a positional operation addresses
	// a slot that does not exist.
	ErrIndexOutOfRange = errors.New("row index out of range")
)

// Storage is the record store contract.
type Storage interface {
	// List returns every row in insertion order.
	// Returns an empty slice (not nil) when the store is empty.
	List(ctx context.Context) ([]types.Row, error)

	// Append inserts a row at the end. The caller must already have
	// assigned a unique id.
	Append(ctx context.Context, row types.Row) error

	// FindIndex returns the position of the row with the given id,
	// or -1 if there is none.
	FindIndex(ctx context.Context, id string) (int, error)

	// At returns the row at the given position.
	At(ctx context.Context, index int) (types.Row, error)

	// ReplaceAt overwrites the row at the given position.
	ReplaceAt(ctx context.Context, index int, row types.Row) error

	// RemoveAt deletes the row at the given position, shifting every
	// later row down by one.
	RemoveAt(ctx context.Context, index int) error

	// Close releases any resources held by the backend.
	Close() error
}
