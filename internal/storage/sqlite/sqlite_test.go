package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/aanand-mishra/table-api/internal/config"
	"github.com/aanand-mishra/table-api/internal/storage"
	"github.com/aanand-mishra/table-api/internal/storage/sqlite"
	"github.com/aanand-mishra/table-api/internal/storage/storagetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLite(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Storage {
		s, err := sqlite.New(config.Storage{Driver: config.DriverSQLite, Path: ":memory:"})
		require.NoError(t, err)
		t.Cleanup(func() { s.Close() })
		return s
	})
}

func TestSQLiteFileSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	cfg := config.Storage{
		Driver: config.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "rows.db"),
	}

	s, err := sqlite.New(cfg)
	require.NoError(t, err)
	require.NoError(t, s.Append(ctx, storagetest.Row("kept")))
	require.NoError(t, s.Close())

	reopened, err := sqlite.New(cfg)
	require.NoError(t, err)
	defer reopened.Close()

	rows, err := reopened.List(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, storagetest.Row("kept"), rows[0])
}

func TestSQLiteEmptyPathDefaultsToMemory(t *testing.T) {
	s, err := sqlite.New(config.Storage{Driver: config.DriverSQLite})
	require.NoError(t, err)
	defer s.Close()

	rows, err := s.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, rows)
}
