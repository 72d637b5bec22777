package images

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// DefaultDir is the image directory, relative to the working directory.
const DefaultDir = "images"

// ErrImageUnavailable is returned when an image cannot be imported or rendered.
var ErrImageUnavailable = errors.New("image unavailable")

// Library manages the image directory that location records point into.
// Relative paths are resolved against Root.
type Library struct {
	Root   string
	Dir    string
	logger *slog.Logger
}

// NewLibrary creates a library rooted at root with images kept in dir.
func NewLibrary(root, dir string, logger *slog.Logger) *Library {
	if root == "" {
		root = "."
	}
	if dir == "" {
		dir = DefaultDir
	}
	return &Library{
		Root:   root,
		Dir:    dir,
		logger: logger,
	}
}

// Import copies sourcePath into the image directory unless it is already
// there, and returns the path to store on the record.
func (l *Library) Import(sourcePath string) (string, error) {
	src := l.resolve(sourcePath)
	info, err := os.Stat(src)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrImageUnavailable, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%w: %s is a directory", ErrImageUnavailable, sourcePath)
	}

	storeDir := l.storeDir()
	if err := os.MkdirAll(storeDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create image directory: %w", err)
	}

	name := filepath.Base(src)
	rel := filepath.Join(l.Dir, name)

	if l.inStore(src) {
		l.logger.Debug("Image already in library", "path", rel)
		return rel, nil
	}

	if err := copyFile(src, filepath.Join(storeDir, name)); err != nil {
		return "", fmt.Errorf("failed to copy image: %w", err)
	}

	l.logger.Info("Image imported", "source", sourcePath, "path", rel)
	return rel, nil
}

func (l *Library) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(l.Root, path)
}

// storeDir is where imported images are written. An absolute Dir is used as is.
func (l *Library) storeDir() string {
	return l.resolve(l.Dir)
}

func (l *Library) inStore(src string) bool {
	srcDir, err := filepath.Abs(filepath.Dir(src))
	if err != nil {
		return false
	}
	storeDir, err := filepath.Abs(l.storeDir())
	if err != nil {
		return false
	}
	return srcDir == storeDir
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		_ = in.Close() // Ignore error in defer
	}()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
