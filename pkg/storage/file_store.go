package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// FileStore saves uploaded files to disk under a base directory that is
// served statically under publicPath.
type FileStore struct {
	basePath   string
	publicPath string
}

// NewFileStore creates the base directory if missing.
func NewFileStore(basePath, publicPath string) (*FileStore, error) {
	if strings.TrimSpace(basePath) == "" {
		return nil, fmt.Errorf("storage base path is required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	if publicPath == "" {
		publicPath = "/uploads"
	}
	return &FileStore{basePath: basePath, publicPath: "/" + strings.Trim(publicPath, "/")}, nil
}

// Dir returns the directory files are written to
func (f *FileStore) Dir() string {
	return f.basePath
}

// PublicPath returns the URL prefix files are served under
func (f *FileStore) PublicPath() string {
	return f.publicPath
}

// Put writes the file. Existing files are never overwritten.
func (f *FileStore) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	target := filepath.Join(f.basePath, safeFilename(key))

	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer out.Close()
	if _, err := io.Copy(out, r); err != nil {
		os.Remove(target)
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}

// URL returns the public path of a stored file
func (f *FileStore) URL(_ context.Context, key string) (string, error) {
	return path.Join(f.publicPath, safeFilename(key)), nil
}

// Delete removes a stored file. Missing files are ignored.
func (f *FileStore) Delete(_ context.Context, key string) error {
	err := os.Remove(filepath.Join(f.basePath, safeFilename(key)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete file: %w", err)
	}
	return nil
}
