package files

import (
	"bytes"
	"io/fs"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stackvity/droidfs/internal/assets"
	"github.com/stackvity/droidfs/internal/filesystem"
	"github.com/stackvity/droidfs/internal/platform"
)

const (
	sharedRoot = "/storage/emulated/0"
	appDir     = "/storage/emulated/0/Android/data/com.example.game/files"
	markerPath = sharedRoot + "/" + MarkerName
)

// newDevice returns a mounted device at the given API level.
func newDevice(t *testing.T, version int, app string) (*filesystem.MockFileSystem, *platform.Host) {
	t.Helper()
	mfs := filesystem.NewMockFileSystem()
	mfs.AddDir(sharedRoot)
	host := platform.NewHost(version, sharedRoot, app, mfs).
		WithWritableCheck(func(string) bool { return true })
	return mfs, host
}

func testAssets() assets.Reader {
	return assets.NewFSReader(fstest.MapFS{"data/level.json": {Data: []byte("{}")}})
}

func TestNew_LegacyOS(t *testing.T) {
	for _, version := range []int{1, 8, 14, platform.VersionJellyBeanMR2} {
		mfs, host := newDevice(t, version, appDir)
		mfs.SimulateCreateError(markerPath, fs.ErrPermission)

		r := New(testAssets(), host)

		assert.Equal(t, sharedRoot+"/", r.ExternalStoragePath(), "version %d", version)
		assert.True(t, r.LegacyWriting())
		mfs.AssertCreateNotCalled(t, markerPath)
		mfs.AssertRemoveCalled(t, markerPath, 0)
		mfs.AssertMkdirNotCalled(t, appDir)
	}
}

func TestNew_ModernOS_LegacyWriteWorks(t *testing.T) {
	mfs, host := newDevice(t, platform.VersionKitKat, appDir)

	r := New(testAssets(), host)

	assert.True(t, r.LegacyWriting())
	assert.Equal(t, sharedRoot+"/", r.ExternalStoragePath())
	assert.Equal(t, 1, mfs.CreateCalls(markerPath))
	assert.False(t, mfs.Exists(markerPath), "marker must be removed after probing")
	assert.False(t, mfs.HasDir(appDir), "app-scoped directory is only created on fallback")
}

func TestNew_ModernOS_FallsBackToAppScopedDir(t *testing.T) {
	mfs, host := newDevice(t, 30, appDir)
	mfs.SimulateCreateError(markerPath, fs.ErrPermission)

	r := New(testAssets(), host)

	assert.False(t, r.LegacyWriting())
	assert.Equal(t, appDir, r.ExternalStoragePath())
	assert.True(t, mfs.HasDir(appDir), "app-scoped directory must exist after construction")
	mfs.AssertMkdirCalled(t, appDir)
	assert.False(t, mfs.Exists(markerPath))
}

func TestNew_ModernOS_ExistingAppScopedDirIsNotRecreated(t *testing.T) {
	mfs, host := newDevice(t, 30, appDir)
	mfs.AddDir(appDir)
	mfs.SimulateCreateError(markerPath, fs.ErrPermission)

	r := New(testAssets(), host)

	assert.Equal(t, appDir, r.ExternalStoragePath())
	mfs.AssertMkdirNotCalled(t, appDir)
}

func TestNew_ModernOS_NoAppScopedDir(t *testing.T) {
	mfs, host := newDevice(t, 30, "")
	mfs.SimulateCreateError(markerPath, fs.ErrPermission)

	r := New(testAssets(), host)

	assert.False(t, r.LegacyWriting())
	assert.Equal(t, sharedRoot+"/", r.ExternalStoragePath())
	assert.Equal(t, sharedRoot+"/", r.LocalStoragePath())
}

func TestNew_ModernOS_MkdirFailureIsSwallowed(t *testing.T) {
	mfs, host := newDevice(t, 30, appDir)
	mfs.SimulateCreateError(markerPath, fs.ErrPermission)
	mfs.SimulateMkdirError(appDir, fs.ErrPermission)

	r := New(testAssets(), host)

	assert.Equal(t, appDir, r.ExternalStoragePath())
	assert.False(t, mfs.HasDir(appDir))
}

func TestNew_ModernOS_SharedRootMissing(t *testing.T) {
	mfs := filesystem.NewMockFileSystem()
	host := platform.NewHost(30, sharedRoot, appDir, mfs)

	r := New(testAssets(), host)

	assert.False(t, r.LegacyWriting(), "create must fail without a parent directory")
	assert.Equal(t, appDir, r.ExternalStoragePath())
	assert.True(t, mfs.HasDir(appDir))
}

func TestNew_StaleMarker(t *testing.T) {
	t.Run("ProbeSucceeds", func(t *testing.T) {
		mfs, host := newDevice(t, 30, appDir)
		mfs.AddFile(markerPath, []byte("left over"))

		r := New(testAssets(), host)

		assert.True(t, r.LegacyWriting(), "stale marker must not fail the probe")
		mfs.AssertRemoveCalled(t, markerPath, 2)
		assert.False(t, mfs.Exists(markerPath))
	})

	t.Run("ProbeFails", func(t *testing.T) {
		mfs, host := newDevice(t, 30, appDir)
		mfs.AddFile(markerPath, []byte("left over"))
		mfs.SimulateCreateError(markerPath, fs.ErrPermission)

		r := New(testAssets(), host)

		assert.False(t, r.LegacyWriting())
		mfs.AssertRemoveCalled(t, markerPath, 2)
		assert.False(t, mfs.Exists(markerPath))
	})

	t.Run("CleanupFailsIsIgnored", func(t *testing.T) {
		mfs, host := newDevice(t, 30, appDir)
		mfs.AddFile(markerPath, nil)
		mfs.SimulateRemoveError(markerPath, fs.ErrPermission)

		var r *Resolver
		require.NotPanics(t, func() { r = New(testAssets(), host) })

		// The stale marker could not be removed, so the exclusive create fails.
		assert.False(t, r.LegacyWriting())
		assert.Equal(t, appDir, r.ExternalStoragePath())
		mfs.AssertRemoveCalled(t, markerPath, 2)
	})
}

func TestLocalStoragePath(t *testing.T) {
	testCases := []struct {
		name      string
		localPath string
		failProbe bool
		expected  string
	}{
		{name: "WithoutSeparator", localPath: "/data/data/com.example.game/files", expected: "/data/data/com.example.game/files/"},
		{name: "WithSeparator", localPath: "/data/data/com.example.game/files/", expected: "/data/data/com.example.game/files/"},
		{name: "WithRepeatedSeparators", localPath: "/data/files//", expected: "/data/files/"},
		{name: "EmptyFallsBackToExternal", localPath: "", expected: sharedRoot + "/"},
		{name: "FallbackToAppScopedDir", localPath: "", failProbe: true, expected: appDir + "/"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mfs, host := newDevice(t, 30, appDir)
			if tc.failProbe {
				mfs.SimulateCreateError(markerPath, fs.ErrPermission)
			}
			r := NewWithLocalPath(testAssets(), tc.localPath, host)
			assert.Equal(t, tc.expected, r.LocalStoragePath())
			assert.True(t, strings.HasSuffix(r.LocalStoragePath(), "/"))
			assert.False(t, strings.HasSuffix(r.LocalStoragePath(), "//"))
			assert.True(t, r.IsLocalStorageAvailable())
		})
	}
}

func TestNewWithLocalPath_ProbesLikeNew(t *testing.T) {
	mfs, host := newDevice(t, 30, appDir)
	mfs.SimulateCreateError(markerPath, fs.ErrPermission)

	r := NewWithLocalPath(testAssets(), "/data/local", host)

	assert.Equal(t, appDir, r.ExternalStoragePath())
	assert.Equal(t, "/data/local/", r.LocalStoragePath())
	assert.Equal(t, Roots{External: appDir, Local: "/data/local/"}, r.Roots())
}

func TestResolutionOperations(t *testing.T) {
	_, host := newDevice(t, 30, appDir)
	reader := testAssets()
	r := New(reader, host)
	path := "some/dir/../file.txt"

	testCases := []struct {
		name       string
		descriptor Descriptor
		kind       Kind
		hasAssets  bool
	}{
		{"Internal", r.Internal(path), Internal, true},
		{"External", r.External(path), External, false},
		{"Absolute", r.Absolute(path), Absolute, false},
		{"Local", r.Local(path), Local, false},
		{"Classpath", r.Classpath(path), Classpath, false},
		{"ResolveInternal", r.Resolve(path, Internal), Internal, true},
		{"ResolveExternal", r.Resolve(path, External), External, false},
		{"ResolveClasspath", r.Resolve(path, Classpath), Classpath, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.kind, tc.descriptor.Kind)
			assert.Equal(t, path, tc.descriptor.Path, "path must pass through unmodified")
			if tc.hasAssets {
				assert.Same(t, reader, tc.descriptor.Assets)
			} else {
				assert.Nil(t, tc.descriptor.Assets)
			}
		})
	}
}

func TestIsExternalStorageAvailable_IsLive(t *testing.T) {
	mfs, host := newDevice(t, 30, appDir)
	r := New(testAssets(), host)
	root := r.ExternalStoragePath()

	assert.True(t, r.IsExternalStorageAvailable())

	mfs.RemoveTree(sharedRoot)
	assert.False(t, r.IsExternalStorageAvailable())
	assert.Equal(t, root, r.ExternalStoragePath(), "roots are never re-probed")
	assert.True(t, r.IsLocalStorageAvailable())

	mfs.AddDir(sharedRoot)
	assert.True(t, r.IsExternalStorageAvailable())
}

func TestWithLogger_ReportsProbe(t *testing.T) {
	mfs, host := newDevice(t, 30, appDir)
	mfs.SimulateCreateError(markerPath, fs.ErrPermission)
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	New(testAssets(), host, WithLogger(logger))

	out := buf.String()
	assert.Contains(t, out, "Legacy external storage write failed")
	assert.Contains(t, out, "legacy_writing=false")
	assert.Contains(t, out, "external_root="+appDir)
}

func TestResolver_ConcurrentReads(t *testing.T) {
	_, host := newDevice(t, 30, appDir)
	r := New(testAssets(), host)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = r.Local("save.dat")
				_ = r.ExternalStoragePath()
				_ = r.LocalStoragePath()
			}
		}()
	}
	wg.Wait()
}

func TestKind(t *testing.T) {
	for _, k := range []Kind{Internal, External, Absolute, Local, Classpath} {
		parsed, err := ParseKind(strings.ToUpper(k.String()))
		require.NoError(t, err)
		assert.Equal(t, k, parsed)
	}
	_, err := ParseKind("network")
	assert.Error(t, err)
	assert.Equal(t, "Kind(9)", Kind(9).String())

	roots := Roots{External: "/ext/", Local: "/loc/"}
	assert.Equal(t, "/ext/", roots.For(External))
	assert.Equal(t, "/loc/", roots.For(Local))
	assert.Empty(t, roots.For(Absolute))
	assert.Empty(t, roots.For(Internal))
}
