package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jwebster45206/location-creator/pkg/location"
)

// FileStorage keeps the locations document in a JSON file on disk.
type FileStorage struct {
	path   string
	logger *slog.Logger
}

// Ensure FileStorage implements Storage interface
var _ Storage = (*FileStorage)(nil)

// NewFileStorage creates a file-backed storage for path.
func NewFileStorage(path string, logger *slog.Logger) *FileStorage {
	if path == "" {
		path = location.DefaultFile
	}
	return &FileStorage{
		path:   path,
		logger: logger,
	}
}

// Ping checks that the directory holding the save file exists.
func (f *FileStorage) Ping(ctx context.Context) error {
	dir := filepath.Dir(f.path)
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("locations directory unavailable: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("locations directory unavailable: %s is not a directory", dir)
	}
	return nil
}

func (f *FileStorage) Close() error {
	return nil
}

func (f *FileStorage) Describe() string {
	return f.path
}

func (f *FileStorage) LoadLocations(ctx context.Context) ([]byte, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		switch {
		case errors.Is(err, fs.ErrNotExist):
			f.logger.Warn("Locations file doesn't exist", "path", f.path)
			return nil, fmt.Errorf("%w: %s not found", location.ErrPersistenceUnavailable, f.path)
		case errors.Is(err, fs.ErrPermission):
			f.logger.Warn("Invalid permissions on locations file", "path", f.path)
			return nil, fmt.Errorf("%w: permission denied reading %s", location.ErrPersistenceUnavailable, f.path)
		default:
			f.logger.Error("Failed to read locations file", "path", f.path, "error", err)
			return nil, fmt.Errorf("%w: failed to read %s: %w", location.ErrPersistenceUnavailable, f.path, err)
		}
	}

	if len(bytes.TrimSpace(data)) == 0 {
		f.logger.Warn("Locations file is empty", "path", f.path)
		return nil, fmt.Errorf("%w: %s: %w", location.ErrPersistenceUnavailable, f.path, location.ErrEmptyData)
	}

	return data, nil
}

// SaveLocations overwrites the file in place. The write is not atomic.
func (f *FileStorage) SaveLocations(ctx context.Context, data []byte) error {
	if err := os.WriteFile(f.path, data, 0o644); err != nil {
		f.logger.Error("Failed to write locations file", "path", f.path, "error", err)
		return fmt.Errorf("failed to save locations: %w", err)
	}

	f.logger.Debug("Locations saved", "path", f.path, "bytes", len(data))
	return nil
}
