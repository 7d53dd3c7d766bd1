package native

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shelfworks/tana/storage"
)

// dirFileArea implements storage.FileArea on a directory of the OS
// filesystem. Payload files are written as plain text.
type dirFileArea struct {
	root string
}

var _ storage.FileArea = (*dirFileArea)(nil)

// OpenFileArea opens a file area rooted at dir.
// Creates the directory if it doesn't exist.
func OpenFileArea(dir string) (storage.FileArea, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("opening file area %s: %w", dir, err)
	}
	return &dirFileArea{root: dir}, nil
}

func (a *dirFileArea) path(name string) string {
	return filepath.Join(a.root, filepath.FromSlash(name))
}

// EnsureDir creates a directory under the area root.
// An existing directory is not an error.
func (a *dirFileArea) EnsureDir(ctx context.Context, name string) error {
	return os.MkdirAll(a.path(name), 0755)
}

// WriteFile stores text under name, replacing any previous content.
func (a *dirFileArea) WriteFile(ctx context.Context, name, text string) error {
	return os.WriteFile(a.path(name), []byte(text), 0644)
}

// ReadFile returns the content stored under name.
func (a *dirFileArea) ReadFile(ctx context.Context, name string) (storage.FileContent, error) {
	data, err := os.ReadFile(a.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return storage.FileContent{}, fmt.Errorf("reading %s: %w", name, storage.ErrNotFound)
		}
		return storage.FileContent{}, fmt.Errorf("reading %s: %w", name, err)
	}
	// Content written through WriteFile is text, never raw bytes.
	return storage.FileContent{Data: data}, nil
}

// DeleteFile removes the file under name. Absent files are not an error.
func (a *dirFileArea) DeleteFile(ctx context.Context, name string) error {
	if err := os.Remove(a.path(name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting %s: %w", name, err)
	}
	return nil
}
