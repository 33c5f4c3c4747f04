// Package platform describes the device a storage resolver runs on: its OS
// version, where shared storage lives and whether that storage is currently
// mounted.
package platform

import (
	"github.com/stackvity/droidfs/internal/filesystem"
)

// OS API levels that matter for storage access.
const (
	// VersionJellyBeanMR2 is the last API level with unrestricted shared-storage writes.
	VersionJellyBeanMR2 = 18
	// VersionKitKat changed shared-storage write semantics. Devices at or above
	// it must be probed.
	VersionKitKat = 19
)

// MediaState mirrors the OS-reported state of shared storage.
type MediaState string

const (
	MediaMounted         MediaState = "mounted"
	MediaMountedReadOnly MediaState = "mounted_ro"
	MediaUnmounted       MediaState = "unmounted"
	MediaRemoved         MediaState = "removed"
)

// Environment is the set of device queries a resolver depends on.
type Environment interface {
	// OSVersion returns the device API level.
	OSVersion() int
	// SharedStorageRoot returns the shared storage directory, without a trailing separator.
	SharedStorageRoot() string
	// MediaState reports the current shared-storage state. It is never cached.
	MediaState() MediaState
	// AppScopedExternalDir returns the directory the OS reserves for this app
	// on shared storage. ok is false when the OS provides none.
	AppScopedExternalDir() (dir string, ok bool)
	// FileSystem returns the primitives used to probe and prepare storage.
	FileSystem() filesystem.FileSystem
}

// IsMediaMounted reports whether env currently has read-write shared storage.
func IsMediaMounted(env Environment) bool {
	return env.MediaState() == MediaMounted
}

// IsModern reports whether version is at or above the KitKat storage change.
func IsModern(version int) bool {
	return version >= VersionKitKat
}
