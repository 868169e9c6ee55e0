package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManagerCreatesRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "out")

	m, err := NewManager(root)
	require.NoError(t, err)

	info, err := os.Stat(root)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, root, m.SaveRoot())
	assert.Equal(t, 0, m.DownloadedCount())
}

func TestNewManagerIndexesExistingFiles(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "example", "photos")
	require.NoError(t, os.MkdirAll(nested, 0755))
	existing := filepath.Join(nested, "Sunset.jpg")
	require.NoError(t, os.WriteFile(existing, []byte("data"), 0644))

	m, err := NewManager(root)
	require.NoError(t, err)

	assert.True(t, m.IsDownloaded(existing))
	assert.Equal(t, 1, m.DownloadedCount())
}

func TestSaveCreatesParentsAndIndexes(t *testing.T) {
	root := t.TempDir()
	m, err := NewManager(root)
	require.NoError(t, err)

	path := filepath.Join(root, "example", "photos", "42", "p2_Trip.jpg")
	require.NoError(t, m.Save(strings.NewReader("photo bytes"), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "photo bytes", string(data))
	assert.True(t, m.IsDownloaded(path))

	// No stray temp file left behind
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestIsDownloadedPicksUpOutOfBandFiles(t *testing.T) {
	root := t.TempDir()
	m, err := NewManager(root)
	require.NoError(t, err)

	path := filepath.Join(root, "late.jpg")
	assert.False(t, m.IsDownloaded(path))

	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
	assert.True(t, m.IsDownloaded(path))
}

func TestIsDownloadedCleansPaths(t *testing.T) {
	root := t.TempDir()
	m, err := NewManager(root)
	require.NoError(t, err)

	path := filepath.Join(root, "a", "b.jpg")
	require.NoError(t, m.Save(strings.NewReader("x"), path))

	messy := filepath.Join(root, "a", ".", "b.jpg")
	assert.True(t, m.IsDownloaded(messy))
}

func TestSaveOverwritesExisting(t *testing.T) {
	root := t.TempDir()
	m, err := NewManager(root)
	require.NoError(t, err)

	path := filepath.Join(root, "f.jpg")
	require.NoError(t, m.Save(strings.NewReader("first"), path))
	require.NoError(t, m.Save(strings.NewReader("second"), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
}
