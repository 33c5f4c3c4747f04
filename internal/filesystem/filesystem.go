package filesystem

import (
	"io/fs"
)

// FileSystem defines the file primitives the storage layer needs.
// Keeping them behind an interface lets the storage probe run against an
// in-memory device in tests.
type FileSystem interface {
	// ReadFile reads the named file and returns the contents.
	ReadFile(name string) ([]byte, error)

	// WriteFile writes data to the named file, creating it if necessary.
	WriteFile(name string, data []byte, perm fs.FileMode) error

	// Stat returns a FileInfo describing the named file.
	Stat(name string) (fs.FileInfo, error)

	// Exists reports whether anything is present at name.
	// Any Stat error, including permission errors, counts as absent.
	Exists(name string) bool

	// CreateExclusive creates an empty file at name.
	// It fails if the file already exists or cannot be created.
	CreateExclusive(name string, perm fs.FileMode) error

	// MkdirAll creates a directory named path along with any necessary parents.
	MkdirAll(path string, perm fs.FileMode) error

	// ReadDir reads the named directory, returning its entries sorted by filename.
	ReadDir(name string) ([]fs.DirEntry, error)

	// Remove removes the named file or (empty) directory.
	Remove(name string) error
}

// RemoveQuietly removes name and reports whether it succeeded.
// Callers use it for cleanup whose failure must not change their outcome.
func RemoveQuietly(fsys FileSystem, name string) bool {
	return fsys.Remove(name) == nil
}
