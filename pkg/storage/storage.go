// Package storage provides the artifact store that run outputs are written to.
package storage

import (
	"context"
	"io"
	"time"
)

// FileInfo contains metadata about a stored artifact
type FileInfo struct {
	Name      string    `json:"name"`
	Size      int64     `json:"size"`
	Path      string    `json:"path"` // Location on the backing store
	CreatedAt time.Time `json:"created_at"`
}

// Storage defines the interface for artifact storage operations
type Storage interface {
	// Put stores an artifact under name, replacing any previous version.
	// Readers of the store never observe a partially written artifact.
	Put(ctx context.Context, name string, r io.Reader) (*FileInfo, error)

	// Open returns a reader for a stored artifact
	Open(ctx context.Context, name string) (io.ReadCloser, error)

	// List returns every stored artifact, sorted by name
	List(ctx context.Context) ([]*FileInfo, error)
}
