// Package storage provides byte-addressable storage for generated contract artifacts.
package storage

import (
	"context"
)

// ArtifactStore persists generated artifacts and serves their bytes back
// for distribution. Implementations must be safe for concurrent use: the
// generator writes while download handlers and the sweep read and delete.
type ArtifactStore interface {
	// Write persists an artifact under the given file name and returns the
	// storage path the artifact can later be read and deleted by.
	Write(ctx context.Context, name string, data []byte) (path string, err error)

	// Read returns the artifact bytes at the given storage path.
	// Returns ErrNotFound if no artifact exists there.
	Read(ctx context.Context, path string) ([]byte, error)

	// Exists checks whether an artifact is present at the given storage path.
	Exists(ctx context.Context, path string) (bool, error)

	// Delete removes the artifact at the given storage path.
	// Returns ErrNotFound if no artifact exists there.
	Delete(ctx context.Context, path string) error

	// Close releases any resources held by the store.
	Close() error
}

// ErrNotFound is returned when an artifact doesn't exist.
type ErrNotFound struct {
	Path string
}

func (e ErrNotFound) Error() string {
	return "artifact not found: " + e.Path
}

// IsNotFound returns true if the error is ErrNotFound.
func IsNotFound(err error) bool {
	_, ok := err.(ErrNotFound)
	return ok
}
