package ports

import (
	"io"
	"io/fs"
)

// FileSystem abstracts local file operations for testing.
// It is the local half of a transfer; the remote half is RemoteFS.
type FileSystem interface {
	// Stat returns file info for the named file.
	Stat(name string) (fs.FileInfo, error)

	// Open opens the named file for reading.
	Open(name string) (io.ReadCloser, error)

	// Create creates or truncates the named file for writing.
	Create(name string) (io.WriteCloser, error)

	// ReadFile reads the named file and returns its contents.
	ReadFile(name string) ([]byte, error)

	// MkdirAll creates a directory and all parent directories.
	MkdirAll(path string, perm fs.FileMode) error

	// Remove removes the named file or empty directory.
	Remove(name string) error

	// Rename renames (moves) oldpath to newpath.
	Rename(oldpath, newpath string) error
}
