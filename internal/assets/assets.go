// Package assets provides read-only access to content bundled with the
// application at build time.
package assets

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"strings"
)

// Reader reads bundled assets by logical name. Names always use forward
// slashes and are relative to the bundle root.
type Reader interface {
	Open(name string) (io.ReadCloser, error)
	ReadFile(name string) ([]byte, error)
	List(dir string) ([]string, error)
	Exists(name string) bool
}

// FSReader is a Reader over an fs.FS.
type FSReader struct {
	fsys fs.FS
}

// NewFSReader wraps fsys, for example an embed.FS or fstest.MapFS.
func NewFSReader(fsys fs.FS) *FSReader {
	return &FSReader{fsys: fsys}
}

// NewDirReader reads assets unpacked under dir.
func NewDirReader(dir string) *FSReader {
	return NewFSReader(os.DirFS(dir))
}

// normalize turns a logical asset name into an fs.FS path.
// Leading slashes and "./" prefixes are accepted, like the OS asset API does.
func normalize(name string) (string, error) {
	name = strings.TrimLeft(name, "/")
	if name == "" {
		return ".", nil
	}
	clean := path.Clean(name)
	if !fs.ValidPath(clean) {
		return "", &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	return clean, nil
}

func (r *FSReader) Open(name string) (io.ReadCloser, error) {
	p, err := normalize(name)
	if err != nil {
		return nil, err
	}
	f, err := r.fsys.Open(p)
	if err != nil {
		return nil, fmt.Errorf("open asset %s: %w", name, err)
	}
	return f, nil
}

func (r *FSReader) ReadFile(name string) ([]byte, error) {
	p, err := normalize(name)
	if err != nil {
		return nil, err
	}
	data, err := fs.ReadFile(r.fsys, p)
	if err != nil {
		return nil, fmt.Errorf("read asset %s: %w", name, err)
	}
	return data, nil
}

// List returns the entry names directly below dir.
func (r *FSReader) List(dir string) ([]string, error) {
	p, err := normalize(dir)
	if err != nil {
		return nil, err
	}
	entries, err := fs.ReadDir(r.fsys, p)
	if err != nil {
		return nil, fmt.Errorf("list assets %s: %w", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names, nil
}

func (r *FSReader) Exists(name string) bool {
	p, err := normalize(name)
	if err != nil {
		return false
	}
	_, err = fs.Stat(r.fsys, p)
	return err == nil
}
