// Package handle turns descriptors into file handles that perform I/O. All
// errors about missing files or permissions surface here rather than in the
// resolver.
package handle

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/stackvity/droidfs/internal/assets"
	"github.com/stackvity/droidfs/internal/files"
	"github.com/stackvity/droidfs/internal/filesystem"
)

var (
	// ErrReadOnly is returned when writing to bundled content.
	ErrReadOnly = errors.New("file kind is read-only")
	// ErrNoAssets is returned when bundled content is requested but no reader is attached.
	ErrNoAssets = errors.New("no asset reader attached")
)

// Factory opens handles against fixed roots.
type Factory struct {
	roots     files.Roots
	fs        filesystem.FileSystem
	classpath assets.Reader
}

// NewFactory creates a Factory. classpath may be nil when the application
// ships no classpath resources.
func NewFactory(roots files.Roots, fs filesystem.FileSystem, classpath assets.Reader) *Factory {
	return &Factory{roots: roots, fs: fs, classpath: classpath}
}

// Handle is a descriptor bound to the storage it lives on.
type Handle struct {
	desc    files.Descriptor
	path    string
	factory *Factory
}

// Open binds d to the factory's roots. It does not touch the file system.
func (f *Factory) Open(d files.Descriptor) *Handle {
	p := d.Path
	if root := f.roots.For(d.Kind); root != "" {
		p = filepath.Join(root, d.Path)
	}
	return &Handle{desc: d, path: p, factory: f}
}

func (h *Handle) Kind() files.Kind { return h.desc.Kind }

// Path returns the concrete path for file-system kinds and the logical name
// for bundled kinds.
func (h *Handle) Path() string { return h.path }

func (h *Handle) bundle() (assets.Reader, bool) {
	switch h.desc.Kind {
	case files.Internal:
		return h.desc.Assets, true
	case files.Classpath:
		return h.factory.classpath, true
	default:
		return nil, false
	}
}

// Exists reports whether the file is present. Errors count as absent.
func (h *Handle) Exists() bool {
	if reader, bundled := h.bundle(); bundled {
		return reader != nil && reader.Exists(h.path)
	}
	return h.factory.fs.Exists(h.path)
}

// Read returns the whole file.
func (h *Handle) Read() ([]byte, error) {
	if reader, bundled := h.bundle(); bundled {
		if reader == nil {
			return nil, fmt.Errorf("read %s %s: %w", h.desc.Kind, h.path, ErrNoAssets)
		}
		return reader.ReadFile(h.path)
	}
	data, err := h.factory.fs.ReadFile(h.path)
	if err != nil {
		return nil, fmt.Errorf("read %s file: %w", h.desc.Kind, err)
	}
	return data, nil
}

// Write replaces the file contents, creating parent directories as needed.
func (h *Handle) Write(data []byte) error {
	if _, bundled := h.bundle(); bundled {
		return fmt.Errorf("write %s %s: %w", h.desc.Kind, h.path, ErrReadOnly)
	}
	if err := h.factory.fs.MkdirAll(filepath.Dir(h.path), 0755); err != nil {
		return fmt.Errorf("create parent of %s: %w", h.path, err)
	}
	if err := h.factory.fs.WriteFile(h.path, data, 0644); err != nil {
		return fmt.Errorf("write %s file: %w", h.desc.Kind, err)
	}
	return nil
}

// List returns the names of the entries directly below this handle.
func (h *Handle) List() ([]string, error) {
	if reader, bundled := h.bundle(); bundled {
		if reader == nil {
			return nil, fmt.Errorf("list %s %s: %w", h.desc.Kind, h.path, ErrNoAssets)
		}
		return reader.List(h.path)
	}
	entries, err := h.factory.fs.ReadDir(h.path)
	if err != nil {
		return nil, fmt.Errorf("list %s directory: %w", h.desc.Kind, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names, nil
}
