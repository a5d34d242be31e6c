package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// FSStore is a filesystem-based implementation of ArtifactStore. Artifacts
// live flat under a single base directory; the storage path returned by
// Write is the absolute file path.
type FSStore struct {
	basePath string
	mu       sync.RWMutex
}

// NewFSStore creates a new filesystem-based artifact store rooted at basePath.
func NewFSStore(basePath string) (*FSStore, error) {
	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("resolve base path: %w", err)
	}
	if err := os.MkdirAll(abs, 0750); err != nil {
		return nil, fmt.Errorf("create artifact directory %s: %w", abs, err)
	}
	return &FSStore{basePath: abs}, nil
}

// BasePath returns the absolute artifact directory.
func (fs *FSStore) BasePath() string {
	return fs.basePath
}

// Write persists an artifact under name and returns its absolute path.
// The name must be a bare file name; anything resembling path traversal is
// rejected before touching the filesystem.
func (fs *FSStore) Write(ctx context.Context, name string, data []byte) (string, error) {
	path, err := fs.artifactPath(name)
	if err != nil {
		return "", err
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	if err := os.WriteFile(path, data, 0600); err != nil {
		return "", fmt.Errorf("write artifact: %w", err)
	}
	return path, nil
}

// Read returns the artifact bytes at the given storage path.
func (fs *FSStore) Read(ctx context.Context, path string) ([]byte, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	// #nosec G304 - path originates from this store's own Write
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound{Path: path}
		}
		return nil, fmt.Errorf("read artifact: %w", err)
	}
	return data, nil
}

// Exists checks whether an artifact is present at the given storage path.
func (fs *FSStore) Exists(ctx context.Context, path string) (bool, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	_, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat artifact: %w", err)
	}
	return true, nil
}

// Delete removes the artifact at the given storage path.
func (fs *FSStore) Delete(ctx context.Context, path string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound{Path: path}
		}
		return fmt.Errorf("delete artifact: %w", err)
	}
	return nil
}

// Close releases resources.
func (fs *FSStore) Close() error {
	return nil
}

// artifactPath validates name and joins it under the base directory.
func (fs *FSStore) artifactPath(name string) (string, error) {
	clean := filepath.Clean(name)
	if clean == "" || clean == "." || filepath.IsAbs(clean) ||
		strings.Contains(clean, string(filepath.Separator)) || strings.HasPrefix(clean, "..") {
		return "", fmt.Errorf("invalid artifact name: %q", name)
	}
	return filepath.Join(fs.basePath, clean), nil
}
