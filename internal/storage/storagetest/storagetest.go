// Package storagetest holds the behavioural suite every storage.Storage
// backend must pass. Backend packages call Run from their own tests.
package storagetest

import (
	"context"
	"fmt"
	"testing"

	"github.com/aanand-mishra/table-api/internal/storage"
	"github.com/aanand-mishra/table-api/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns a fresh, empty store. It is called once per subtest.
type Factory func(t *testing.T) storage.Storage

// Row builds a complete row whose fields derive from id.
func Row(id string) types.Row {
	return types.Row{
		ID:        id,
		Name:      "Person " + id,
		Age:       30,
		Gender:    "Female",
		City:      "Reno",
		BirthDate: "1994-01-01",
		Education: "Bachelors",
	}
}

func fill(t *testing.T, s storage.Storage, n int) []types.Row {
	t.Helper()
	rows := make([]types.Row, 0, n)
	for i := 0; i < n; i++ {
		row := Row(fmt.Sprintf("r%d", i))
		require.NoError(t, s.Append(context.Background(), row))
		rows = append(rows, row)
	}
	return rows
}

// Run exercises the full Storage contract.
func Run(t *testing.T, newStore Factory) {
	ctx := context.Background()

	t.Run("EmptyListIsNotNil", func(t *testing.T) {
		s := newStore(t)
		rows, err := s.List(ctx)
		require.NoError(t, err)
		assert.NotNil(t, rows)
		assert.Empty(t, rows)
	})

	t.Run("AppendKeepsInsertionOrder", func(t *testing.T) {
		s := newStore(t)
		want := fill(t, s, 3)

		got, err := s.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("AppendRejectsDuplicateID", func(t *testing.T) {
		s := newStore(t)
		fill(t, s, 1)

		err := s.Append(ctx, Row("r0"))
		assert.ErrorIs(t, err, storage.ErrDuplicateID)

		rows, err := s.List(ctx)
		require.NoError(t, err)
		assert.Len(t, rows, 1)
	})

	t.Run("FindIndex", func(t *testing.T) {
		s := newStore(t)
		fill(t, s, 3)

		idx, err := s.FindIndex(ctx, "r2")
		require.NoError(t, err)
		assert.Equal(t, 2, idx)

		idx, err = s.FindIndex(ctx, "missing")
		require.NoError(t, err)
		assert.Equal(t, -1, idx)
	})

	t.Run("At", func(t *testing.T) {
		s := newStore(t)
		rows := fill(t, s, 2)

		got, err := s.At(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, rows[1], got)

		_, err = s.At(ctx, 2)
		assert.ErrorIs(t, err, storage.ErrIndexOutOfRange)
		_, err = s.At(ctx, -1)
		assert.ErrorIs(t, err, storage.ErrIndexOutOfRange)
	})

	t.Run("ReplaceAt", func(t *testing.T) {
		s := newStore(t)
		rows := fill(t, s, 3)

		changed := rows[1]
		changed.City = "Tahoe"
		require.NoError(t, s.ReplaceAt(ctx, 1, changed))

		got, err := s.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []types.Row{rows[0], changed, rows[2]}, got)
	})

	t.Run("ReplaceAtOutOfRange", func(t *testing.T) {
		s := newStore(t)
		rows := fill(t, s, 1)

		err := s.ReplaceAt(ctx, 5, Row("x"))
		assert.ErrorIs(t, err, storage.ErrIndexOutOfRange)

		got, err := s.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, rows, got)
	})

	t.Run("ReplaceAtRejectsForeignID", func(t *testing.T) {
		s := newStore(t)
		rows := fill(t, s, 2)

		err := s.ReplaceAt(ctx, 0, Row("r1"))
		assert.ErrorIs(t, err, storage.ErrDuplicateID)

		got, err := s.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, rows, got)
	})

	t.Run("RemoveAtShiftsLaterRows", func(t *testing.T) {
		s := newStore(t)
		rows := fill(t, s, 3)

		require.NoError(t, s.RemoveAt(ctx, 0))

		got, err := s.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, rows[1:], got)

		idx, err := s.FindIndex(ctx, "r2")
		require.NoError(t, err)
		assert.Equal(t, 1, idx)
	})

	t.Run("RemoveAtOutOfRange", func(t *testing.T) {
		s := newStore(t)
		fill(t, s, 1)

		assert.ErrorIs(t, s.RemoveAt(ctx, 1), storage.ErrIndexOutOfRange)
		assert.ErrorIs(t, s.RemoveAt(ctx, -1), storage.ErrIndexOutOfRange)
	})

	t.Run("AppendAfterRemoveGoesLast", func(t *testing.T) {
		s := newStore(t)
		rows := fill(t, s, 2)

		require.NoError(t, s.RemoveAt(ctx, 0))
		extra := Row("late")
		require.NoError(t, s.Append(ctx, extra))

		got, err := s.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []types.Row{rows[1], extra}, got)
	})
}
