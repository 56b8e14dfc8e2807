package fsutil

import (
	"errors"
	"io"
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryFileSystem_CreateThenOpen(t *testing.T) {
	m := NewMemoryFileSystem()

	w, err := m.Create("out/points.xyz.min")
	require.NoError(t, err)
	_, err = io.WriteString(w, "0 0 5\n")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	f, err := m.Open("out/./points.xyz.min")
	require.NoError(t, err)
	defer f.Close()
	data, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "0 0 5\n", string(data))

	info, err := f.Stat()
	require.NoError(t, err)
	assert.Equal(t, int64(6), info.Size())
	assert.Equal(t, []string{filepath.Clean("out/points.xyz.min")}, m.Files())
}

func TestMemoryFileSystem_Missing(t *testing.T) {
	m := NewMemoryFileSystem()

	_, err := m.Open("nope")
	assert.True(t, errors.Is(err, fs.ErrNotExist))
	_, err = m.ReadFile("nope")
	assert.True(t, errors.Is(err, fs.ErrNotExist))
	_, err = m.Stat("nope")
	assert.True(t, errors.Is(err, fs.ErrNotExist))
	assert.True(t, errors.Is(m.Remove("nope"), fs.ErrNotExist))
}

func TestMemoryFileSystem_RemoveBeforeCloseDiscards(t *testing.T) {
	m := NewMemoryFileSystem()
	w, err := m.Create("partial")
	require.NoError(t, err)
	_, _ = w.Write([]byte("half a line"))

	require.NoError(t, m.Remove("partial"))
	require.NoError(t, w.Close())
	assert.Empty(t, m.Files())
}

func TestMemoryFileSystem_CreateErr(t *testing.T) {
	m := NewMemoryFileSystem()
	m.CreateErr = fs.ErrPermission

	_, err := m.Create("denied")
	assert.True(t, errors.Is(err, fs.ErrPermission))
}

func TestMemoryFileSystem_Dirs(t *testing.T) {
	m := NewMemoryFileSystem()
	require.NoError(t, m.MkdirAll("plots/run/2026", 0755))

	info, err := m.Stat("plots/run")
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.True(t, info.Mode().IsDir())
}

func TestMemoryFileSystem_ReadFileCopies(t *testing.T) {
	m := NewMemoryFileSystem()
	m.WriteFile("cfg.json", []byte(`{"increment":1}`))

	data, err := m.ReadFile("cfg.json")
	require.NoError(t, err)
	data[0] = 'X'

	again, err := m.ReadFile("cfg.json")
	require.NoError(t, err)
	assert.Equal(t, `{"increment":1}`, string(again))
}

func TestOSFileSystem_RoundTrip(t *testing.T) {
	var osfs FileSystem = OSFileSystem{}
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "grid.max")

	require.NoError(t, osfs.MkdirAll(filepath.Dir(path), 0755))
	w, err := osfs.Create(path)
	require.NoError(t, err)
	_, err = io.WriteString(w, "1 1 9\n")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	data, err := osfs.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "1 1 9\n", string(data))

	info, err := osfs.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(6), info.Size())

	require.NoError(t, osfs.Remove(path))
	_, err = osfs.Stat(path)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}
