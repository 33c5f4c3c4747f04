package platform

import (
	"path/filepath"
	"strings"

	"github.com/stackvity/droidfs/internal/config"
	"github.com/stackvity/droidfs/internal/filesystem"
)

// Host is an Environment backed by a described device tree on a real or
// simulated file system.
type Host struct {
	version    int
	sharedRoot string
	appDir     string
	fs         filesystem.FileSystem
	writable   func(path string) bool
}

// NewHost builds a Host from explicit values. appDir may be empty when the OS
// provides no app-scoped external directory.
func NewHost(version int, sharedRoot, appDir string, fs filesystem.FileSystem) *Host {
	return &Host{
		version:    version,
		sharedRoot: trimSeparator(sharedRoot),
		appDir:     appDir,
		fs:         fs,
		writable:   writable,
	}
}

// NewHostFromOptions builds a Host on the real file system from configuration.
func NewHostFromOptions(opts *config.Options) *Host {
	return NewHost(opts.SDKVersion, opts.SharedRoot, opts.AppExternalDir, filesystem.NewRealFileSystem())
}

// WithWritableCheck replaces the check used to tell read-only media apart.
func (h *Host) WithWritableCheck(fn func(path string) bool) *Host {
	h.writable = fn
	return h
}

func (h *Host) OSVersion() int { return h.version }

func (h *Host) SharedStorageRoot() string { return h.sharedRoot }

// MediaState inspects the shared root on every call.
func (h *Host) MediaState() MediaState {
	info, err := h.fs.Stat(h.sharedRoot)
	if err != nil {
		return MediaRemoved
	}
	if !info.IsDir() {
		return MediaUnmounted
	}
	if h.writable != nil && !h.writable(h.sharedRoot) {
		return MediaMountedReadOnly
	}
	return MediaMounted
}

func (h *Host) AppScopedExternalDir() (string, bool) {
	if h.appDir == "" {
		return "", false
	}
	return filepath.Clean(h.appDir), true
}

func (h *Host) FileSystem() filesystem.FileSystem { return h.fs }

func trimSeparator(p string) string {
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
		if p == "" {
			return "/"
		}
	}
	return p
}
