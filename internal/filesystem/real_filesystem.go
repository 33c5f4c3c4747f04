package filesystem

import (
	"io/fs"
	"os"
)

// RealFileSystem implements the FileSystem interface using the standard os package.
type RealFileSystem struct{}

// NewRealFileSystem creates a new instance of RealFileSystem.
func NewRealFileSystem() *RealFileSystem {
	return &RealFileSystem{}
}

// ReadFile reads the named file using os.ReadFile.
func (rfs *RealFileSystem) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(name)
}

// WriteFile writes data to the named file using os.WriteFile.
func (rfs *RealFileSystem) WriteFile(name string, data []byte, perm fs.FileMode) error {
	return os.WriteFile(name, data, perm)
}

// Stat returns a FileInfo using os.Stat.
func (rfs *RealFileSystem) Stat(name string) (fs.FileInfo, error) {
	return os.Stat(name)
}

func (rfs *RealFileSystem) Exists(name string) bool {
	_, err := os.Stat(name)
	return err == nil
}

// CreateExclusive opens name with O_EXCL so an existing file is an error,
// then closes it immediately. The file is left empty.
func (rfs *RealFileSystem) CreateExclusive(name string, perm fs.FileMode) error {
	f, err := os.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return err
	}
	return f.Close()
}

// MkdirAll creates a directory using os.MkdirAll.
func (rfs *RealFileSystem) MkdirAll(path string, perm fs.FileMode) error {
	return os.MkdirAll(path, perm)
}

func (rfs *RealFileSystem) ReadDir(name string) ([]fs.DirEntry, error) {
	return os.ReadDir(name)
}

// Remove removes the named file or directory using os.Remove.
func (rfs *RealFileSystem) Remove(name string) error {
	return os.Remove(name)
}
