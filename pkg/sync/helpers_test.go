package sync

import (
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	goSync "sync"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

type mockFile struct {
	path     string
	contents string
	mode     os.FileMode
	modTime  time.Time
}

func (f mockFile) write(t *testing.T, fs afero.Fs, root string) {
	path := filepath.Join(root, f.path)
	require.NoError(t, fs.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, afero.WriteFile(fs, path, []byte(f.contents), f.mode))
	require.NoError(t, fs.Chmod(path, f.mode))
	require.NoError(t, fs.Chtimes(path, time.Now(), f.modTime))
}

func randomFile(overrides mockFile) mockFile {
	if overrides.path == "" {
		overrides.path = strconv.Itoa(rand.Int())
	}

	if overrides.contents == "" {
		overrides.contents = strconv.Itoa(rand.Int())
	}

	if overrides.modTime.IsZero() {
		randomTime := time.Date(2019, 11, 10, rand.Intn(23), rand.Intn(59), rand.Intn(59), 0, time.UTC)
		overrides.modTime = randomTime
	}

	if overrides.mode == 0000 {
		overrides.mode = os.FileMode(0640 | rand.Intn(8))
	}
	return overrides
}

// writeContents writes a file for each entry in `files`, keyed by its path
// relative to `root`.
func writeContents(t *testing.T, fs afero.Fs, root string, files map[string]string) {
	for path, contents := range files {
		randomFile(mockFile{path: path, contents: contents}).write(t, fs, root)
	}
}

// snapshot returns the directories beneath `root`, and the contents of every
// file beneath it.
func snapshot(t *testing.T, fs afero.Fs, root string) (dirs []string, files map[string]string) {
	files = map[string]string{}
	tree, err := ListTree(fs, root)
	require.NoError(t, err)

	for _, dir := range tree.Dirs.Sorted() {
		dirs = append(dirs, string(dir))
	}
	for _, file := range tree.Files.Sorted() {
		contents, err := afero.ReadFile(fs, file.Join(root))
		require.NoError(t, err)
		files[string(file)] = string(contents)
	}
	return dirs, files
}

// withoutErrs strips the errors from warnings so that outcomes can be
// compared directly.
func withoutErrs(outcomes []Outcome) []Outcome {
	var stripped []Outcome
	for _, o := range outcomes {
		o.Err = nil
		stripped = append(stripped, o)
	}
	return stripped
}

// faultyFs wraps a filesystem, failing writes to selected paths and
// recording every removal.
type faultyFs struct {
	afero.Fs

	failReads  map[string]bool
	failWrites map[string]bool
	failRemove map[string]bool

	// shortWrites are paths that can be opened for writing, but whose
	// writes stop halfway with an error.
	shortWrites map[string]bool

	lock    goSync.Mutex
	removed []string
}

func newFaultyFs(fs afero.Fs) *faultyFs {
	return &faultyFs{
		Fs:          fs,
		failReads:   map[string]bool{},
		failWrites:  map[string]bool{},
		failRemove:  map[string]bool{},
		shortWrites: map[string]bool{},
	}
}

func (fs *faultyFs) Open(name string) (afero.File, error) {
	if fs.failReads[name] {
		return nil, &os.PathError{Op: "open", Path: name, Err: os.ErrPermission}
	}
	return fs.Fs.Open(name)
}

func (fs *faultyFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	if fs.failWrites[name] && flag&(os.O_WRONLY|os.O_RDWR) != 0 {
		return nil, &os.PathError{Op: "open", Path: name, Err: os.ErrPermission}
	}

	f, err := fs.Fs.OpenFile(name, flag, perm)
	if err == nil && fs.shortWrites[name] {
		return shortWriteFile{f}, nil
	}
	return f, err
}

func (fs *faultyFs) Create(name string) (afero.File, error) {
	return fs.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0666)
}

func (fs *faultyFs) Remove(name string) error {
	fs.recordRemove(name)
	if fs.failRemove[name] {
		return &os.PathError{Op: "remove", Path: name, Err: os.ErrPermission}
	}
	return fs.Fs.Remove(name)
}

func (fs *faultyFs) RemoveAll(name string) error {
	fs.recordRemove(name)
	if fs.failRemove[name] {
		return &os.PathError{Op: "unlinkat", Path: name, Err: os.ErrPermission}
	}
	return fs.Fs.RemoveAll(name)
}

func (fs *faultyFs) recordRemove(name string) {
	fs.lock.Lock()
	defer fs.lock.Unlock()
	fs.removed = append(fs.removed, name)
}

// shortWriteFile writes half of every buffer, and then fails.
type shortWriteFile struct {
	afero.File
}

func (f shortWriteFile) Write(p []byte) (int, error) {
	n, err := f.File.Write(p[:len(p)/2])
	if err != nil {
		return n, err
	}
	return n, io.ErrShortWrite
}
