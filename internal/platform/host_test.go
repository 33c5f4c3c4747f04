package platform

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stackvity/droidfs/internal/config"
	"github.com/stackvity/droidfs/internal/filesystem"
)

func TestHost_MediaState(t *testing.T) {
	mfs := filesystem.NewMockFileSystem()
	host := NewHost(VersionKitKat, "/storage/emulated/0/", "", mfs).
		WithWritableCheck(func(string) bool { return true })

	assert.Equal(t, "/storage/emulated/0", host.SharedStorageRoot(), "trailing separator is trimmed")

	t.Run("Removed", func(t *testing.T) {
		assert.Equal(t, MediaRemoved, host.MediaState())
		assert.False(t, IsMediaMounted(host))
	})

	t.Run("Mounted", func(t *testing.T) {
		mfs.AddDir("/storage/emulated/0")
		assert.Equal(t, MediaMounted, host.MediaState())
		assert.True(t, IsMediaMounted(host))
	})

	t.Run("ReadOnly", func(t *testing.T) {
		host.WithWritableCheck(func(string) bool { return false })
		defer host.WithWritableCheck(func(string) bool { return true })
		assert.Equal(t, MediaMountedReadOnly, host.MediaState())
		assert.False(t, IsMediaMounted(host))
	})

	t.Run("UnmountedAfterEject", func(t *testing.T) {
		mfs.RemoveTree("/storage/emulated/0")
		mfs.AddFile("/storage/emulated/0", nil)
		assert.Equal(t, MediaUnmounted, host.MediaState())
	})
}

func TestHost_AppScopedExternalDir(t *testing.T) {
	mfs := filesystem.NewMockFileSystem()

	dir, ok := NewHost(30, "/sdcard", "", mfs).AppScopedExternalDir()
	assert.False(t, ok)
	assert.Empty(t, dir)

	dir, ok = NewHost(30, "/sdcard", "/sdcard/Android/data/com.example/files/", mfs).AppScopedExternalDir()
	assert.True(t, ok)
	assert.Equal(t, "/sdcard/Android/data/com.example/files", dir)
}

func TestNewHostFromOptions_RealDirectory(t *testing.T) {
	root := t.TempDir()
	host := NewHostFromOptions(&config.Options{SDKVersion: 17, SharedRoot: root})

	assert.Equal(t, 17, host.OSVersion())
	assert.False(t, IsModern(host.OSVersion()))
	assert.Equal(t, MediaMounted, host.MediaState())

	require.NoError(t, os.Remove(root))
	assert.Equal(t, MediaRemoved, host.MediaState())

	require.NoError(t, os.WriteFile(filepath.Clean(root), nil, 0644))
	assert.Equal(t, MediaUnmounted, host.MediaState())
}

func TestIsModern(t *testing.T) {
	assert.False(t, IsModern(VersionJellyBeanMR2))
	assert.True(t, IsModern(VersionKitKat))
	assert.True(t, IsModern(34))
}
