// Package seed loads the initial rows placed into the record store once at
// process start.
//
// Seed files may be JSON or YAML; both are decoded with gopkg.in/yaml.v3,
// which accepts JSON as a YAML flow document.
package seed

import (
	"context"
	_ "embed"
	"fmt"
	"os"

	"github.com/aanand-mishra/table-api/internal/rows"
	"github.com/aanand-mishra/table-api/internal/storage"
	"github.com/aanand-mishra/table-api/internal/types"
	"gopkg.in/yaml.v3"
)

//go:embed rows.json
var defaultRows []byte

// Default returns the seed set compiled into the binary.
func Default() ([]types.Row, error) {
	return Parse(defaultRows)
}

// LoadFile reads and parses a seed file.
func LoadFile(path string) ([]types.Row, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("seed.LoadFile: %w", err)
	}
	return Parse(data)
}

// Parse decodes a JSON or YAML sequence of rows.
func Parse(data []byte) ([]types.Row, error) {
	parsed := make([]types.Row, 0)
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("seed.Parse: %w", err)
	}
	return parsed, nil
}

// Apply appends rows to the store in order. Rows without an id get one
// from newID. Every row must be complete, and a repeated id anywhere in the
// seed is an error. Rows before the failing one stay in the store.
func Apply(ctx context.Context, store storage.Storage, initial []types.Row, newID func() string) (int, error) {
	seen := make(map[string]int, len(initial))

	for i, row := range initial {
		row = row.Normalize()
		if err := rows.Validate(row); err != nil {
			return i, fmt.Errorf("seed: row %d: %w", i, err)
		}
		if row.ID == "" {
			row.ID = newID()
		}

		if first, dup := seen[row.ID]; dup {
			return i, fmt.Errorf("seed: duplicate id %q at index %d (first at %d)", row.ID, i, first)
		}
		seen[row.ID] = i

		if err := store.Append(ctx, row); err != nil {
			return i, fmt.Errorf("seed: append index %d: %w", i, err)
		}
	}

	return len(initial), nil
}
