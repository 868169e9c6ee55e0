package storage

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// Manager handles file storage operations and duplicate detection.
// Paths passed to Save and IsDownloaded are full save paths as produced
// by path resolution; they are cleaned before being used as index keys.
type Manager struct {
	saveRoot   string
	downloaded map[string]bool
	mu         sync.RWMutex
}

// NewManager creates a storage manager rooted at saveRoot. The root is
// created if missing, and any files already under it are indexed so
// they are treated as downloaded.
func NewManager(saveRoot string) (*Manager, error) {
	if err := os.MkdirAll(saveRoot, 0755); err != nil {
		return nil, fmt.Errorf("failed to create save root: %w", err)
	}

	manager := &Manager{
		saveRoot:   saveRoot,
		downloaded: make(map[string]bool),
	}

	if err := manager.scanExistingFiles(); err != nil {
		return nil, fmt.Errorf("failed to scan existing files: %w", err)
	}

	return manager, nil
}

// scanExistingFiles walks the save root and indexes every regular file.
func (m *Manager) scanExistingFiles() error {
	return filepath.WalkDir(m.saveRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		m.downloaded[filepath.Clean(path)] = true
		return nil
	})
}

// IsDownloaded reports whether a file already exists at the given path.
func (m *Manager) IsDownloaded(path string) bool {
	key := filepath.Clean(path)

	m.mu.RLock()
	known := m.downloaded[key]
	m.mu.RUnlock()
	if known {
		return true
	}

	// A file may have appeared since the initial scan.
	if _, err := os.Stat(key); err == nil {
		m.mu.Lock()
		m.downloaded[key] = true
		m.mu.Unlock()
		return true
	}

	return false
}

// Save writes data from r to path, creating parent directories as
// needed. The data is written to a temporary file in the destination
// directory and renamed into place once fully copied.
func (m *Manager) Save(r io.Reader, path string) error {
	key := filepath.Clean(path)

	if err := os.MkdirAll(filepath.Dir(key), 0755); err != nil {
		return fmt.Errorf("failed to create parent directory: %w", err)
	}

	tempFile := key + ".tmp"
	out, err := os.Create(tempFile)
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}

	_, err = io.Copy(out, r)
	closeErr := out.Close()

	if err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to save file data: %w", err)
	}

	if closeErr != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to close file: %w", closeErr)
	}

	if err := os.Rename(tempFile, key); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	m.mu.Lock()
	m.downloaded[key] = true
	m.mu.Unlock()

	return nil
}

// SaveRoot returns the root directory files are saved under.
func (m *Manager) SaveRoot() string {
	return m.saveRoot
}

// DownloadedCount returns the number of files known to the index.
func (m *Manager) DownloadedCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.downloaded)
}
