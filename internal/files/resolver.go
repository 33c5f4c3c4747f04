// Package files resolves logical file locations into descriptors and decides,
// once per process, where external and local storage live on the device.
package files

import (
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/stackvity/droidfs/internal/assets"
	"github.com/stackvity/droidfs/internal/filesystem"
	"github.com/stackvity/droidfs/internal/platform"
)

// MarkerName is the probe file created directly under shared storage to find
// out whether legacy writes still work.
const MarkerName = ".gdxexternaltest"

const separator = "/"

// Resolver manufactures descriptors for every file kind. Its roots are fixed
// at construction; all methods except IsExternalStorageAvailable are safe for
// concurrent use without locking.
type Resolver struct {
	assets        assets.Reader
	env           platform.Environment
	logger        *slog.Logger
	externalRoot  string
	localRoot     string
	legacyWriting bool
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger reports the probe outcome to logger at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New probes env and uses the external root as the local root.
func New(assetReader assets.Reader, env platform.Environment, opts ...Option) *Resolver {
	return newResolver(assetReader, "", env, opts)
}

// NewWithLocalPath probes env and uses localPath as the local root. An empty
// localPath behaves like New.
func NewWithLocalPath(assetReader assets.Reader, localPath string, env platform.Environment, opts ...Option) *Resolver {
	return newResolver(assetReader, localPath, env, opts)
}

func newResolver(assetReader assets.Reader, localPath string, env platform.Environment, opts []Option) *Resolver {
	r := &Resolver{
		assets: assetReader,
		env:    env,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}

	r.externalRoot, r.legacyWriting = probe(env, r.logger)
	if localPath == "" {
		localPath = r.externalRoot
	}
	r.localRoot = withSeparator(localPath)

	r.logger.Debug("Storage roots resolved",
		"os_version", env.OSVersion(),
		"legacy_writing", r.legacyWriting,
		"external_root", r.externalRoot,
		"local_root", r.localRoot)
	return r
}

// probe determines the external root. It never fails: every file system
// error downgrades to a fallback.
func probe(env platform.Environment, logger *slog.Logger) (externalRoot string, legacyWriting bool) {
	shared := env.SharedStorageRoot()
	externalRoot = withSeparator(shared)

	if !platform.IsModern(env.OSVersion()) {
		return externalRoot, true
	}

	fsys := env.FileSystem()
	marker := filepath.Join(shared, MarkerName)

	// A marker left by an earlier run would make the create fail.
	if fsys.Exists(marker) {
		filesystem.RemoveQuietly(fsys, marker)
	}

	err := fsys.CreateExclusive(marker, 0644)
	legacyWriting = err == nil
	if err != nil {
		logger.Debug("Legacy external storage write failed", "marker", marker, "error", err)
	}

	filesystem.RemoveQuietly(fsys, marker)

	if legacyWriting {
		return externalRoot, true
	}

	dir, ok := env.AppScopedExternalDir()
	if !ok {
		// Writes under the shared root may fail later; the path stays usable
		// for reads.
		logger.Debug("No app-scoped external directory, keeping shared root", "root", externalRoot)
		return externalRoot, false
	}
	if !fsys.Exists(dir) {
		if err := fsys.MkdirAll(dir, 0755); err != nil {
			logger.Debug("Could not create app-scoped external directory", "dir", dir, "error", err)
		}
	}
	return dir, false
}

// withSeparator returns p ending with exactly one separator.
func withSeparator(p string) string {
	return strings.TrimRight(p, separator) + separator
}

// Resolve returns a descriptor of kind k. Only Internal descriptors carry the
// asset reader.
func (r *Resolver) Resolve(path string, k Kind) Descriptor {
	d := Descriptor{Kind: k, Path: path}
	if k == Internal {
		d.Assets = r.assets
	}
	return d
}

func (r *Resolver) Classpath(path string) Descriptor {
	return Descriptor{Kind: Classpath, Path: path}
}

func (r *Resolver) Internal(path string) Descriptor {
	return Descriptor{Kind: Internal, Path: path, Assets: r.assets}
}

func (r *Resolver) External(path string) Descriptor {
	return Descriptor{Kind: External, Path: path}
}

func (r *Resolver) Absolute(path string) Descriptor {
	return Descriptor{Kind: Absolute, Path: path}
}

func (r *Resolver) Local(path string) Descriptor {
	return Descriptor{Kind: Local, Path: path}
}

// ExternalStoragePath returns the external root chosen at construction.
func (r *Resolver) ExternalStoragePath() string {
	return r.externalRoot
}

// IsExternalStorageAvailable asks the device on every call. The answer is a
// snapshot; media can be unmounted right after it returns.
func (r *Resolver) IsExternalStorageAvailable() bool {
	return platform.IsMediaMounted(r.env)
}

// LocalStoragePath returns the local root. It always ends with a separator.
func (r *Resolver) LocalStoragePath() string {
	return r.localRoot
}

// IsLocalStorageAvailable is always true: private storage cannot be removed.
func (r *Resolver) IsLocalStorageAvailable() bool {
	return true
}

// LegacyWriting reports whether writes directly under the shared root
// worked when the resolver was built. Devices below the KitKat threshold
// always report true.
func (r *Resolver) LegacyWriting() bool {
	return r.legacyWriting
}

// OSVersion returns the API level the resolver was built for.
func (r *Resolver) OSVersion() int {
	return r.env.OSVersion()
}

// Roots returns the root prefixes for descriptor consumers.
func (r *Resolver) Roots() Roots {
	return Roots{External: r.externalRoot, Local: r.localRoot}
}
