package filesystem

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// MockFileSystem implements the FileSystem interface in memory for tests.
// It simulates a device tree with per-path error injection and records the
// mutating calls so tests can assert on them.
type MockFileSystem struct {
	mu    sync.RWMutex
	files map[string][]byte
	dirs  map[string]bool

	readErrors   map[string]error
	writeErrors  map[string]error
	statErrors   map[string]error
	createErrors map[string]error
	mkdirErrors  map[string]error
	removeErrors map[string]error

	createCalls map[string]int
	removeCalls map[string]int
	mkdirCalls  map[string]int
}

// NewMockFileSystem creates an empty MockFileSystem containing only "/".
func NewMockFileSystem() *MockFileSystem {
	return &MockFileSystem{
		files:        make(map[string][]byte),
		dirs:         map[string]bool{string(filepath.Separator): true},
		readErrors:   make(map[string]error),
		writeErrors:  make(map[string]error),
		statErrors:   make(map[string]error),
		createErrors: make(map[string]error),
		mkdirErrors:  make(map[string]error),
		removeErrors: make(map[string]error),
		createCalls:  make(map[string]int),
		removeCalls:  make(map[string]int),
		mkdirCalls:   make(map[string]int),
	}
}

type mockFileInfo struct {
	name    string
	size    int64
	mode    os.FileMode
	modTime time.Time
	isDir   bool
}

func (mfi *mockFileInfo) Name() string       { return mfi.name }
func (mfi *mockFileInfo) Size() int64        { return mfi.size }
func (mfi *mockFileInfo) Mode() os.FileMode  { return mfi.mode }
func (mfi *mockFileInfo) ModTime() time.Time { return mfi.modTime }
func (mfi *mockFileInfo) IsDir() bool        { return mfi.isDir }
func (mfi *mockFileInfo) Sys() interface{}   { return nil }

func clean(p string) string {
	return filepath.Clean(p)
}

// --- Setup helpers ---

// AddFile adds a file (and its parent directories) to the mock filesystem.
func (mfs *MockFileSystem) AddFile(path string, content []byte) {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()
	p := clean(path)
	mfs.addParentsLocked(filepath.Dir(p))
	mfs.files[p] = content
}

// AddDir adds a directory and all of its parents.
func (mfs *MockFileSystem) AddDir(path string) {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()
	mfs.addParentsLocked(clean(path))
}

func (mfs *MockFileSystem) addParentsLocked(dir string) {
	for d := dir; ; d = filepath.Dir(d) {
		mfs.dirs[d] = true
		if parent := filepath.Dir(d); parent == d {
			return
		}
	}
}

// GetFile returns the content of a file, or nil when it does not exist.
func (mfs *MockFileSystem) GetFile(path string) []byte {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()
	return mfs.files[clean(path)]
}

// HasDir reports whether a directory exists at path.
func (mfs *MockFileSystem) HasDir(path string) bool {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()
	return mfs.dirs[clean(path)]
}

// --- Error simulation ---

func (mfs *MockFileSystem) SimulateReadError(path string, err error) {
	mfs.setError(mfs.readErrors, path, err)
}
func (mfs *MockFileSystem) SimulateWriteError(path string, err error) {
	mfs.setError(mfs.writeErrors, path, err)
}
func (mfs *MockFileSystem) SimulateStatError(path string, err error) {
	mfs.setError(mfs.statErrors, path, err)
}
func (mfs *MockFileSystem) SimulateCreateError(path string, err error) {
	mfs.setError(mfs.createErrors, path, err)
}
func (mfs *MockFileSystem) SimulateMkdirError(path string, err error) {
	mfs.setError(mfs.mkdirErrors, path, err)
}
func (mfs *MockFileSystem) SimulateRemoveError(path string, err error) {
	mfs.setError(mfs.removeErrors, path, err)
}

func (mfs *MockFileSystem) setError(m map[string]error, path string, err error) {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()
	m[clean(path)] = err
}

// --- Call assertions ---

func (mfs *MockFileSystem) CreateCalls(path string) int {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()
	return mfs.createCalls[clean(path)]
}

func (mfs *MockFileSystem) RemoveCalls(path string) int {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()
	return mfs.removeCalls[clean(path)]
}

func (mfs *MockFileSystem) AssertCreateNotCalled(t *testing.T, path string) {
	t.Helper()
	assert.Equal(t, 0, mfs.CreateCalls(path), "CreateExclusive should not have been called for %s", path)
}

func (mfs *MockFileSystem) AssertRemoveCalled(t *testing.T, path string, times int) {
	t.Helper()
	assert.Equal(t, times, mfs.RemoveCalls(path), "unexpected number of Remove calls for %s", path)
}

func (mfs *MockFileSystem) AssertMkdirCalled(t *testing.T, path string) {
	t.Helper()
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()
	assert.Greater(t, mfs.mkdirCalls[clean(path)], 0, "MkdirAll was not called for %s", path)
}

func (mfs *MockFileSystem) AssertMkdirNotCalled(t *testing.T, path string) {
	t.Helper()
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()
	assert.Equal(t, 0, mfs.mkdirCalls[clean(path)], "MkdirAll should not have been called for %s", path)
}

// --- FileSystem implementation ---

func (mfs *MockFileSystem) ReadFile(name string) ([]byte, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()
	p := clean(name)
	if err, ok := mfs.readErrors[p]; ok {
		return nil, err
	}
	content, ok := mfs.files[p]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	return content, nil
}

func (mfs *MockFileSystem) WriteFile(name string, data []byte, perm fs.FileMode) error {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()
	p := clean(name)
	if err, ok := mfs.writeErrors[p]; ok {
		return err
	}
	if !mfs.dirs[filepath.Dir(p)] {
		return &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	if mfs.dirs[p] {
		return &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	mfs.files[p] = append([]byte(nil), data...)
	return nil
}

func (mfs *MockFileSystem) Stat(name string) (fs.FileInfo, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()
	return mfs.statLocked(name)
}

func (mfs *MockFileSystem) statLocked(name string) (fs.FileInfo, error) {
	p := clean(name)
	if err, ok := mfs.statErrors[p]; ok {
		return nil, err
	}
	if content, ok := mfs.files[p]; ok {
		return &mockFileInfo{name: filepath.Base(p), size: int64(len(content)), mode: 0644}, nil
	}
	if mfs.dirs[p] {
		return &mockFileInfo{name: filepath.Base(p), mode: 0755 | os.ModeDir, isDir: true}, nil
	}
	return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrNotExist}
}

func (mfs *MockFileSystem) Exists(name string) bool {
	_, err := mfs.Stat(name)
	return err == nil
}

// CreateExclusive fails with fs.ErrExist when the path is taken and with
// fs.ErrNotExist when the parent directory is missing, like O_EXCL does.
func (mfs *MockFileSystem) CreateExclusive(name string, perm fs.FileMode) error {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()
	p := clean(name)
	mfs.createCalls[p]++
	if err, ok := mfs.createErrors[p]; ok {
		return err
	}
	if _, ok := mfs.files[p]; ok || mfs.dirs[p] {
		return &fs.PathError{Op: "open", Path: name, Err: fs.ErrExist}
	}
	if !mfs.dirs[filepath.Dir(p)] {
		return &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	mfs.files[p] = []byte{}
	return nil
}

func (mfs *MockFileSystem) MkdirAll(path string, perm fs.FileMode) error {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()
	p := clean(path)
	mfs.mkdirCalls[p]++
	if err, ok := mfs.mkdirErrors[p]; ok {
		return err
	}
	for d := p; ; d = filepath.Dir(d) {
		if _, isFile := mfs.files[d]; isFile {
			return &fs.PathError{Op: "mkdir", Path: d, Err: fs.ErrExist}
		}
		if parent := filepath.Dir(d); parent == d {
			break
		}
	}
	mfs.addParentsLocked(p)
	return nil
}

func (mfs *MockFileSystem) ReadDir(name string) ([]fs.DirEntry, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()
	p := clean(name)
	if !mfs.dirs[p] {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	var entries []fs.DirEntry
	for _, child := range mfs.childrenLocked(p) {
		info, err := mfs.statLocked(child)
		if err != nil {
			continue
		}
		entries = append(entries, fs.FileInfoToDirEntry(info))
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	return entries, nil
}

func (mfs *MockFileSystem) childrenLocked(dir string) []string {
	var children []string
	isChild := func(p string) bool {
		return p != dir && filepath.Dir(p) == dir
	}
	for p := range mfs.files {
		if isChild(p) {
			children = append(children, p)
		}
	}
	for p := range mfs.dirs {
		if isChild(p) {
			children = append(children, p)
		}
	}
	return children
}

func (mfs *MockFileSystem) Remove(name string) error {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()
	p := clean(name)
	mfs.removeCalls[p]++
	if err, ok := mfs.removeErrors[p]; ok {
		return err
	}
	if _, ok := mfs.files[p]; ok {
		delete(mfs.files, p)
		return nil
	}
	if mfs.dirs[p] {
		if len(mfs.childrenLocked(p)) > 0 {
			return &fs.PathError{Op: "remove", Path: name, Err: errDirNotEmpty}
		}
		delete(mfs.dirs, p)
		return nil
	}
	return &fs.PathError{Op: "remove", Path: name, Err: fs.ErrNotExist}
}

type mockError string

func (e mockError) Error() string { return string(e) }

const errDirNotEmpty = mockError("directory not empty")

// RemoveTree deletes a directory and everything below it, simulating media
// being pulled out from under the application.
func (mfs *MockFileSystem) RemoveTree(path string) {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()
	p := clean(path)
	prefix := p + string(filepath.Separator)
	for f := range mfs.files {
		if f == p || strings.HasPrefix(f, prefix) {
			delete(mfs.files, f)
		}
	}
	for d := range mfs.dirs {
		if d == p || strings.HasPrefix(d, prefix) {
			delete(mfs.dirs, d)
		}
	}
}
