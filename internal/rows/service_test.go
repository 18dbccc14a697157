package rows_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/aanand-mishra/table-api/internal/rows"
	"github.com/aanand-mishra/table-api/internal/storage/memory"
	"github.com/aanand-mishra/table-api/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func alice() types.Row {
	return types.Row{
		Name:      "Alice",
		Age:       30,
		Gender:    "Female",
		City:      "Reno",
		BirthDate: "1994-01-01",
		Education: "Bachelors",
	}
}

func newService(t *testing.T, opts ...rows.Option) (*rows.Service, *memory.Memory) {
	t.Helper()
	store := memory.New()
	return rows.New(store, opts...), store
}

func TestCreateAssignsUniqueID(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		row, err := svc.Create(ctx, alice())
		require.NoError(t, err)
		assert.NotEmpty(t, row.ID)
		assert.False(t, seen[row.ID])
		seen[row.ID] = true
	}
}

func TestCreateIgnoresClientID(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t, rows.WithIDGenerator(func() string { return "server-id" }))

	candidate := alice()
	candidate.ID = "new-1700000000000"
	row, err := svc.Create(ctx, candidate)
	require.NoError(t, err)
	assert.Equal(t, "server-id", row.ID)
}

func TestCreateRegeneratesCollidingID(t *testing.T) {
	ctx := context.Background()
	ids := []string{"a", "a", "b"}
	svc, _ := newService(t, rows.WithIDGenerator(func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}))

	first, err := svc.Create(ctx, alice())
	require.NoError(t, err)
	second, err := svc.Create(ctx, alice())
	require.NoError(t, err)

	assert.Equal(t, "a", first.ID)
	assert.Equal(t, "b", second.ID)
}

func TestCreateGivesUpWhenIDsKeepColliding(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t, rows.WithIDGenerator(func() string { return "same" }))

	_, err := svc.Create(ctx, alice())
	require.NoError(t, err)
	_, err = svc.Create(ctx, alice())
	assert.ErrorContains(t, err, "no unique id")
}

func TestCreateValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*types.Row)
		field  string
	}{
		{"missing name", func(r *types.Row) { r.Name = "" }, "name"},
		{"blank city", func(r *types.Row) { r.City = "   " }, "city"},
		{"zero age", func(r *types.Row) { r.Age = 0 }, "age"},
		{"negative age", func(r *types.Row) { r.Age = -3 }, "age"},
		{"missing gender", func(r *types.Row) { r.Gender = "" }, "gender"},
		{"missing birth date", func(r *types.Row) { r.BirthDate = "" }, "birthDate"},
		{"malformed birth date", func(r *types.Row) { r.BirthDate = "01/01/1994" }, "birthDate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			svc, store := newService(t)

			candidate := alice()
			tt.mutate(&candidate)
			_, err := svc.Create(ctx, candidate)

			var vErr *rows.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, rows.MsgAllFieldsRequired, vErr.Message)
			require.Len(t, vErr.Fields, 1)
			assert.Equal(t, tt.field, vErr.Fields[0].Field())

			all, err := store.List(ctx)
			require.NoError(t, err)
			assert.Empty(t, all)
		})
	}
}

func TestCreateAllowsMissingEducation(t *testing.T) {
	svc, _ := newService(t)
	candidate := alice()
	candidate.Education = ""

	row, err := svc.Create(context.Background(), candidate)
	require.NoError(t, err)
	assert.Empty(t, row.Education)
}

func TestListIncludesCreatedRow(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	created, err := svc.Create(ctx, alice())
	require.NoError(t, err)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []types.Row{created}, all)
}

func TestUpdateMergesOverStoredRow(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	created, err := svc.Create(ctx, alice())
	require.NoError(t, err)

	patch := alice()
	patch.Name = "B"
	patch.ID = "someone-else"
	merged, err := svc.Update(ctx, created.ID, patch)
	require.NoError(t, err)

	assert.Equal(t, created.ID, merged.ID)
	assert.Equal(t, "B", merged.Name)
	assert.Equal(t, created.City, merged.City)
	assert.Equal(t, created.Age, merged.Age)

	stored, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, merged, stored)
}

func TestUpdateRequiresEducation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	created, err := svc.Create(ctx, alice())
	require.NoError(t, err)

	patch := alice()
	patch.Education = ""
	_, err = svc.Update(ctx, created.ID, patch)

	var vErr *rows.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, rows.MsgIncompleteData, vErr.Message)
}

func TestUpdateValidatesBeforeLookup(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.Update(context.Background(), "missing", types.Row{})

	var vErr *rows.ValidationError
	assert.ErrorAs(t, err, &vErr)
}

func TestUpdateUnknownIDLeavesStoreUntouched(t *testing.T) {
	ctx := context.Background()
	svc, store := newService(t)
	_, err := svc.Create(ctx, alice())
	require.NoError(t, err)

	before, err := store.List(ctx)
	require.NoError(t, err)

	_, err = svc.Update(ctx, "missing", alice())
	var nfErr *rows.NotFoundError
	require.ErrorAs(t, err, &nfErr)
	assert.Equal(t, "missing", nfErr.ID)
	assert.Equal(t, rows.MsgRowNotFound, nfErr.Error())

	after, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestDeleteRemovesExactlyOne(t *testing.T) {
	ctx := context.Background()
	next := 0
	svc, _ := newService(t, rows.WithIDGenerator(func() string {
		next++
		return fmt.Sprintf("id-%d", next)
	}))

	var created []types.Row
	for i := 0; i < 3; i++ {
		row, err := svc.Create(ctx, alice())
		require.NoError(t, err)
		created = append(created, row)
	}

	remaining, err := svc.Delete(ctx, created[1].ID)
	require.NoError(t, err)
	assert.Equal(t, []types.Row{created[0], created[2]}, remaining)
}

func TestDeleteTwice(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	created, err := svc.Create(ctx, alice())
	require.NoError(t, err)

	_, err = svc.Delete(ctx, created.ID)
	require.NoError(t, err)

	_, err = svc.Delete(ctx, created.ID)
	var nfErr *rows.NotFoundError
	assert.ErrorAs(t, err, &nfErr)
}

func TestDeleteUnknownIDLeavesStoreUntouched(t *testing.T) {
	ctx := context.Background()
	svc, store := newService(t)
	_, err := svc.Create(ctx, alice())
	require.NoError(t, err)
	before, err := store.List(ctx)
	require.NoError(t, err)

	_, err = svc.Delete(ctx, "missing")
	var nfErr *rows.NotFoundError
	require.ErrorAs(t, err, &nfErr)

	after, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestGetUnknownID(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.Get(context.Background(), "missing")

	var nfErr *rows.NotFoundError
	assert.ErrorAs(t, err, &nfErr)
}

func TestConcurrentOperations(t *testing.T) {
	ctx := context.Background()
	svc, store := newService(t)

	const seeded = 50
	ids := make([]string, seeded)
	for i := range ids {
		row, err := svc.Create(ctx, alice())
		require.NoError(t, err)
		ids[i] = row.ID
	}

	const creates = 20
	var (
		wg       sync.WaitGroup
		deleted  atomic.Int32
		notFound atomic.Int32
		created  = make(chan string, creates)
		failures = make(chan error, 4*seeded+creates)
	)

	// Every id is deleted twice, racing with updates of the same ids
	// and with fresh creates.
	for round := 0; round < 2; round++ {
		for _, id := range ids {
			wg.Add(2)
			go func(id string) {
				defer wg.Done()
				_, err := svc.Delete(ctx, id)
				var nfErr *rows.NotFoundError
				switch {
				case err == nil:
					deleted.Add(1)
				case errors.As(err, &nfErr):
					notFound.Add(1)
				default:
					failures <- err
				}
			}(id)
			go func(id string) {
				defer wg.Done()
				patch := alice()
				patch.City = "Elko"
				_, err := svc.Update(ctx, id, patch)
				var nfErr *rows.NotFoundError
				if err != nil && !errors.As(err, &nfErr) {
					failures <- err
				}
			}(id)
		}
	}
	for i := 0; i < creates; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			row, err := svc.Create(ctx, alice())
			if err != nil {
				failures <- err
				return
			}
			created <- row.ID
		}()
	}
	wg.Wait()
	close(failures)
	close(created)

	for err := range failures {
		t.Errorf("unexpected error: %v", err)
	}
	assert.Equal(t, int32(seeded), deleted.Load())
	assert.Equal(t, int32(seeded), notFound.Load())

	remaining, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, remaining, creates)

	want := make(map[string]bool, creates)
	for id := range created {
		want[id] = true
	}
	for _, row := range remaining {
		assert.True(t, want[row.ID], "unexpected row %s", row.ID)
		assert.Equal(t, "Reno", row.City)
	}
}
