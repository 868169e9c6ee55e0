package checkpoint

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"tumdlr/pkg/logger"
)

// Checkpoint represents the state of a blog download session
type Checkpoint struct {
	Blog            string            `json:"blog"`
	Offset          int               `json:"offset"`
	LastPage        int               `json:"last_page"`
	DownloadedFiles map[string]string `json:"downloaded_files"` // save path -> source URL
	TotalQueued     int               `json:"total_queued"`
	TotalDownloaded int               `json:"total_downloaded"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
	Version         int               `json:"version"`
}

// Manager handles checkpoint operations for a single blog. The mutex
// serializes file access between the pagination loop and the download
// result goroutine, which both save through the same temp file.
type Manager struct {
	checkpointPath string
	logger         logger.Logger
	mu             sync.Mutex
}

// NewManager creates a checkpoint manager for the given blog
func NewManager(blog string) (*Manager, error) {
	dataDir, err := getDataDirectory()
	if err != nil {
		return nil, fmt.Errorf("failed to get data directory: %w", err)
	}

	checkpointsDir := filepath.Join(dataDir, "checkpoints")
	if err := os.MkdirAll(checkpointsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create checkpoints directory: %w", err)
	}

	checkpointPath := filepath.Join(checkpointsDir, fmt.Sprintf("%s.checkpoint.json", blog))

	return &Manager{
		checkpointPath: checkpointPath,
		logger:         logger.GetLogger(),
	}, nil
}

// Create creates and saves a fresh checkpoint
func (m *Manager) Create(blog string) (*Checkpoint, error) {
	checkpoint := &Checkpoint{
		Blog:            blog,
		Offset:          0,
		LastPage:        0,
		DownloadedFiles: make(map[string]string),
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
		Version:         1,
	}

	if err := m.Save(checkpoint); err != nil {
		return nil, fmt.Errorf("failed to save initial checkpoint: %w", err)
	}

	m.logger.InfoWithFields("Checkpoint created", map[string]interface{}{
		"blog": blog,
		"path": m.checkpointPath,
	})

	return checkpoint, nil
}

// Load loads an existing checkpoint. A missing file returns (nil, nil).
func (m *Manager) Load() (*Checkpoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	file, err := os.Open(m.checkpointPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open checkpoint file: %w", err)
	}
	defer file.Close()

	var checkpoint Checkpoint
	if err := json.NewDecoder(file).Decode(&checkpoint); err != nil {
		return nil, fmt.Errorf("failed to decode checkpoint: %w", err)
	}
	if checkpoint.DownloadedFiles == nil {
		checkpoint.DownloadedFiles = make(map[string]string)
	}

	m.logger.InfoWithFields("Checkpoint loaded", map[string]interface{}{
		"blog":             checkpoint.Blog,
		"offset":           checkpoint.Offset,
		"total_downloaded": checkpoint.TotalDownloaded,
		"updated_at":       checkpoint.UpdatedAt,
	})

	return &checkpoint, nil
}

// Save saves the checkpoint to disk atomically
func (m *Manager) Save(checkpoint *Checkpoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	checkpoint.UpdatedAt = time.Now()

	tempPath := m.checkpointPath + ".tmp"
	file, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create temporary checkpoint file: %w", err)
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(checkpoint); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to encode checkpoint: %w", err)
	}

	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to sync checkpoint file: %w", err)
	}

	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close checkpoint file: %w", err)
	}

	if err := os.Rename(tempPath, m.checkpointPath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to replace checkpoint file: %w", err)
	}

	m.logger.DebugWithFields("Checkpoint saved", map[string]interface{}{
		"blog":             checkpoint.Blog,
		"offset":           checkpoint.Offset,
		"total_downloaded": checkpoint.TotalDownloaded,
	})

	return nil
}

// Delete removes the checkpoint file
func (m *Manager) Delete() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := os.Remove(m.checkpointPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete checkpoint: %w", err)
	}

	m.logger.Info("Checkpoint deleted")
	return nil
}

// Exists checks if a checkpoint file exists
func (m *Manager) Exists() bool {
	_, err := os.Stat(m.checkpointPath)
	return err == nil
}

// UpdateProgress records the pagination position and saves
func (m *Manager) UpdateProgress(checkpoint *Checkpoint, offset, page int) error {
	checkpoint.Offset = offset
	checkpoint.LastPage = page
	return m.Save(checkpoint)
}

// RecordDownload records a successfully downloaded file and saves
func (m *Manager) RecordDownload(checkpoint *Checkpoint, path, url string) error {
	checkpoint.DownloadedFiles[path] = url
	checkpoint.TotalDownloaded++
	return m.Save(checkpoint)
}

// IsFileDownloaded checks if a save path was already downloaded
func (checkpoint *Checkpoint) IsFileDownloaded(path string) bool {
	_, exists := checkpoint.DownloadedFiles[path]
	return exists
}

// getDataDirectory returns the appropriate data directory for the current OS
func getDataDirectory() (string, error) {
	var dataDir string

	switch runtime.GOOS {
	case "linux":
		if xdgDataHome := os.Getenv("XDG_DATA_HOME"); xdgDataHome != "" {
			dataDir = filepath.Join(xdgDataHome, "tumdlr")
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			dataDir = filepath.Join(home, ".local", "share", "tumdlr")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dataDir = filepath.Join(home, "Library", "Application Support", "tumdlr")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			return "", fmt.Errorf("APPDATA environment variable not set")
		}
		dataDir = filepath.Join(appData, "tumdlr")
	default:
		return "", fmt.Errorf("unsupported operating system: %s", runtime.GOOS)
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}

	return dataDir, nil
}
