// Package storage defines the data-directory file abstraction used
// for local template sources and the persisted catalog output.
package storage

import "time"

// FileInfo describes one template source file under the data root.
type FileInfo struct {
	Path      string
	Checksum  string
	UpdatedAt time.Time
}

// Provider is the interface for data-directory file operations.
type Provider interface {
	// List returns metadata for every template file (.json/.yml/.yaml)
	// under dir (relative to the data root).
	List(dir string) ([]FileInfo, error)
	// Read returns the raw bytes of the file at path (relative to the data root).
	Read(path string) ([]byte, error)
	// Write atomically writes content to path (relative to the data root).
	Write(path string, content []byte) error
	// Delete removes the file at path (relative to the data root).
	Delete(path string) error
}
