// Package storage is the root-scoped file-system layer under the repository store.
package storage

import "time"

// FileMeta describes one file found by List.
type FileMeta struct {
	Path      string // relative to the provider root, slash-separated
	Checksum  string
	UpdatedAt time.Time
}

// Provider is the interface for repository file operations. All paths are
// relative to the provider root.
type Provider interface {
	// List returns metadata for every file with the given extension under dir,
	// sorted by path.
	List(dir, ext string) ([]FileMeta, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Exists reports whether a regular file exists at path.
	Exists(path string) (bool, error)
	// Write atomically writes content to path, creating parent directories.
	Write(path string, content []byte) error
	// Delete removes the file at path.
	Delete(path string) error
	// Move renames oldPath to newPath.
	Move(oldPath, newPath string) error
	// Abs returns the absolute path for path.
	Abs(path string) (string, error)
}
