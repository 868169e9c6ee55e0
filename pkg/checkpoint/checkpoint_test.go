package checkpoint

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T, blog string) *Manager {
	t.Helper()
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	m, err := NewManager(blog)
	require.NoError(t, err)
	return m
}

func TestCreateAndLoad(t *testing.T) {
	m := newTestManager(t, "example")

	created, err := m.Create("example")
	require.NoError(t, err)
	assert.Equal(t, "example", created.Blog)
	assert.Equal(t, 0, created.Offset)
	assert.Equal(t, 1, created.Version)
	assert.True(t, m.Exists())

	loaded, err := m.Load()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "example", loaded.Blog)
	assert.NotNil(t, loaded.DownloadedFiles)
}

func TestLoadMissingReturnsNil(t *testing.T) {
	m := newTestManager(t, "absent")

	cp, err := m.Load()
	require.NoError(t, err)
	assert.Nil(t, cp)
	assert.False(t, m.Exists())
}

func TestUpdateProgress(t *testing.T) {
	m := newTestManager(t, "example")
	cp, err := m.Create("example")
	require.NoError(t, err)

	require.NoError(t, m.UpdateProgress(cp, 40, 2))

	loaded, err := m.Load()
	require.NoError(t, err)
	assert.Equal(t, 40, loaded.Offset)
	assert.Equal(t, 2, loaded.LastPage)
}

func TestRecordDownload(t *testing.T) {
	m := newTestManager(t, "example")
	cp, err := m.Create("example")
	require.NoError(t, err)

	path := "/out/example/photos/Sunset.jpg"
	require.NoError(t, m.RecordDownload(cp, path, "https://media.example/sunset.jpg"))

	loaded, err := m.Load()
	require.NoError(t, err)
	assert.True(t, loaded.IsFileDownloaded(path))
	assert.False(t, loaded.IsFileDownloaded("/out/other.jpg"))
	assert.Equal(t, 1, loaded.TotalDownloaded)
	assert.Equal(t, "https://media.example/sunset.jpg", loaded.DownloadedFiles[path])
}

func TestDelete(t *testing.T) {
	m := newTestManager(t, "example")
	_, err := m.Create("example")
	require.NoError(t, err)
	require.True(t, m.Exists())

	require.NoError(t, m.Delete())
	assert.False(t, m.Exists())

	// Deleting a missing checkpoint is not an error
	assert.NoError(t, m.Delete())
}

func TestSaveLeavesNoTempFile(t *testing.T) {
	m := newTestManager(t, "example")
	cp, err := m.Create("example")
	require.NoError(t, err)
	require.NoError(t, m.Save(cp))

	dir := filepath.Dir(m.checkpointPath)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotEqual(t, ".tmp", filepath.Ext(e.Name()))
	}
}

// The pagination loop and the download result goroutine save through
// the same manager; interleaved saves must never corrupt the file.
func TestConcurrentSaveAndLoad(t *testing.T) {
	m := newTestManager(t, "example")
	_, err := m.Create("example")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func(offset int) {
			defer wg.Done()
			for page := 1; page <= 10; page++ {
				cp := &Checkpoint{
					Blog:            "example",
					DownloadedFiles: map[string]string{"/out/a.jpg": "https://media.example/a.jpg"},
					Version:         1,
				}
				assert.NoError(t, m.UpdateProgress(cp, offset, page))
			}
		}(i * 20)
		go func() {
			defer wg.Done()
			for n := 0; n < 10; n++ {
				cp, err := m.Load()
				assert.NoError(t, err)
				if assert.NotNil(t, cp) {
					assert.Equal(t, "example", cp.Blog)
				}
			}
		}()
	}
	wg.Wait()

	loaded, err := m.Load()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "example", loaded.Blog)
}

func TestSeparateBlogsSeparateFiles(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	m1, err := NewManager("alpha")
	require.NoError(t, err)
	m2, err := NewManager("beta")
	require.NoError(t, err)

	_, err = m1.Create("alpha")
	require.NoError(t, err)

	assert.True(t, m1.Exists())
	assert.False(t, m2.Exists())
}
