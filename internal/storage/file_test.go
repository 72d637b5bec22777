package storage

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/location-creator/pkg/location"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError, // Reduce noise in tests
	}))
}

func TestFileStorage_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "locations.json")
	fs := NewFileStorage(path, testLogger())
	ctx := context.Background()

	require.NoError(t, fs.Ping(ctx))
	require.NoError(t, fs.SaveLocations(ctx, []byte(`{"0": {}}`)))

	data, err := fs.LoadLocations(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{"0": {}}`, string(data))
	assert.Equal(t, path, fs.Describe())
}

func TestFileStorage_LoadFailures(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	t.Run("missing file", func(t *testing.T) {
		fs := NewFileStorage(filepath.Join(dir, "nope.json"), testLogger())
		_, err := fs.LoadLocations(ctx)
		assert.ErrorIs(t, err, location.ErrPersistenceUnavailable)
		assert.Contains(t, err.Error(), "not found")
	})

	t.Run("empty file", func(t *testing.T) {
		path := filepath.Join(dir, "empty.json")
		require.NoError(t, os.WriteFile(path, []byte("\n"), 0o644))

		fs := NewFileStorage(path, testLogger())
		_, err := fs.LoadLocations(ctx)
		assert.ErrorIs(t, err, location.ErrPersistenceUnavailable)
		assert.ErrorIs(t, err, location.ErrEmptyData)
	})

	t.Run("unreadable file", func(t *testing.T) {
		if os.Geteuid() == 0 {
			t.Skip("root ignores file permissions")
		}
		path := filepath.Join(dir, "locked.json")
		require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o000))

		fs := NewFileStorage(path, testLogger())
		_, err := fs.LoadLocations(ctx)
		assert.ErrorIs(t, err, location.ErrPersistenceUnavailable)
		assert.Contains(t, err.Error(), "permission denied")
	})
}

func TestFileStorage_PingMissingDirectory(t *testing.T) {
	fs := NewFileStorage(filepath.Join(t.TempDir(), "missing", "locations.json"), testLogger())
	assert.Error(t, fs.Ping(context.Background()))
}

func TestNewFileStorage_DefaultPath(t *testing.T) {
	fs := NewFileStorage("", testLogger())
	assert.Equal(t, location.DefaultFile, fs.Describe())
}
