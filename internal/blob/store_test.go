package blob

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFSRoundtrip(t *testing.T) {
	fs, err := NewFS(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, fs.Write("vaults/user-1.json", []byte(`{"ok":true}`)))

	data, found, err := fs.Read("vaults/user-1.json")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `{"ok":true}`, string(data))
	assert.True(t, fs.Exists("vaults/user-1.json"))
}

func TestFSReadMissing(t *testing.T) {
	fs, err := NewFS(t.TempDir())
	require.NoError(t, err)

	data, found, err := fs.Read("vaults/nope.json")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, data)
	assert.False(t, fs.Exists("vaults/nope.json"))
}

func TestFSOverwrite(t *testing.T) {
	fs, err := NewFS(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, fs.Write("wisdom/global.json", []byte("v1")))
	require.NoError(t, fs.Write("wisdom/global.json", []byte("v2")))

	data, _, err := fs.Read("wisdom/global.json")
	require.NoError(t, err)
	assert.Equal(t, "v2", string(data))
}

func TestFSLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFS(dir)
	require.NoError(t, err)

	require.NoError(t, fs.Write("vaults/user-1.json", []byte("data")))

	entries, err := os.ReadDir(filepath.Join(dir, "vaults"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "user-1.json", entries[0].Name())
}

func TestMemoryIsolation(t *testing.T) {
	m := NewMemory()
	original := []byte("data")
	require.NoError(t, m.Write("p", original))

	original[0] = 'X'
	data, found, err := m.Read("p")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "data", string(data), "the store keeps its own copy")
}
