// Package memory provides the default storage.Storage backend: an ordered
// slice of rows held for the lifetime of the process.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/aanand-mishra/table-api/internal/storage"
	"github.com/aanand-mishra/table-api/internal/types"
)

// Memory is an in-process, non-durable record store.
type Memory struct {
	mu   sync.RWMutex
	rows []types.Row
}

// New creates an empty store.
func New() *Memory {
	return &Memory{rows: make([]types.Row, 0)}
}

// List returns a copy of every row in insertion order.
func (m *Memory) List(_ context.Context) ([]types.Row, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]types.Row, len(m.rows))
	copy(out, m.rows)
	return out, nil
}

func (m *Memory) Append(_ context.Context, row types.Row) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.indexOf(row.ID) != -1 {
		return fmt.Errorf("Append: %q: %w", row.ID, storage.ErrDuplicateID)
	}
	m.rows = append(m.rows, row)
	return nil
}

func (m *Memory) FindIndex(_ context.Context, id string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.indexOf(id), nil
}

func (m *Memory) At(_ context.Context, index int) (types.Row, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if index < 0 || index >= len(m.rows) {
		return types.Row{}, fmt.Errorf("At: %d: %w", index, storage.ErrIndexOutOfRange)
	}
	return m.rows[index], nil
}

func (m *Memory) ReplaceAt(_ context.Context, index int, row types.Row) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if index < 0 || index >= len(m.rows) {
		return fmt.Errorf("ReplaceAt: %d: %w", index, storage.ErrIndexOutOfRange)
	}
	if other := m.indexOf(row.ID); other != -1 && other != index {
		return fmt.Errorf("ReplaceAt: %q: %w", row.ID, storage.ErrDuplicateID)
	}
	m.rows[index] = row
	return nil
}

func (m *Memory) RemoveAt(_ context.Context, index int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if index < 0 || index >= len(m.rows) {
		return fmt.Errorf("RemoveAt: %d: %w", index, storage.ErrIndexOutOfRange)
	}
	m.rows = append(m.rows[:index], m.rows[index+1:]...)
	return nil
}

// Close is a no-op; the rows are dropped with the process.
func (m *Memory) Close() error { return nil }

// indexOf must be called with mu held.
func (m *Memory) indexOf(id string) int {
	for i, row := range m.rows {
		if row.ID == id {
			return i
		}
	}
	return -1
}
