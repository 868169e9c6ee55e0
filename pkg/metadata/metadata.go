// Package metadata writes sidecar JSON files describing downloaded
// posts, one .json next to each media file.
package metadata

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"tumdlr/pkg/post"
)

// PostMetadata captures the post a media file came from
type PostMetadata struct {
	// Core identifiers
	PostID  int64  `json:"post_id"`
	Type    string `json:"type"`
	Blog    string `json:"blog"`
	PostURL string `json:"post_url,omitempty"`

	// Content
	Caption   string   `json:"caption,omitempty"`
	Tags      []string `json:"tags,omitempty"`
	Date      string   `json:"date,omitempty"`
	NoteCount *int64   `json:"note_count,omitempty"`

	// Media
	SourceURL    string `json:"source_url"`
	Width        int    `json:"width,omitempty"`
	Height       int    `json:"height,omitempty"`
	PhotosetPage *int   `json:"photoset_page,omitempty"`
	PhotoCount   int    `json:"photo_count"`
	FileSize     int64  `json:"file_size,omitempty"`

	DownloadedAt time.Time `json:"downloaded_at"`
}

// FromPhoto builds metadata for one photo of a photoset
func FromPhoto(set *post.PhotoSet, photo *post.Photo, fileSize int64) *PostMetadata {
	meta := &PostMetadata{
		PostID:       set.ID,
		Type:         set.Type,
		Blog:         set.Blog.Name,
		NoteCount:    set.NoteCount,
		Date:         set.Date,
		SourceURL:    photo.URL(),
		Width:        photo.Width,
		Height:       photo.Height,
		PhotosetPage: photo.PageNumber,
		PhotoCount:   len(set.Photos),
		FileSize:     fileSize,
		DownloadedAt: time.Now(),
	}

	if set.URL != nil {
		meta.PostURL = set.URL.String()
	}
	if set.Title != nil {
		meta.Caption = *set.Title
	}

	for tag := range set.Tags {
		meta.Tags = append(meta.Tags, tag)
	}
	sort.Strings(meta.Tags)

	return meta
}

// Save writes the metadata to a JSON file beside the media file
func (m *PostMetadata) Save(mediaPath string) error {
	metadataPath := mediaPath + ".json"

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	if err := os.WriteFile(metadataPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write metadata file: %w", err)
	}

	return nil
}

// Load reads metadata for a media file
func Load(mediaPath string) (*PostMetadata, error) {
	metadataPath := mediaPath + ".json"

	data, err := os.ReadFile(metadataPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata file: %w", err)
	}

	var meta PostMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
	}

	return &meta, nil
}

// Exists checks if a metadata sidecar exists for a media file
func Exists(mediaPath string) bool {
	_, err := os.Stat(mediaPath + ".json")
	return err == nil
}

// CleanOrphaned removes metadata sidecars whose media file is gone
func CleanOrphaned(directory string) error {
	return filepath.Walk(directory, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if filepath.Ext(path) == ".json" && len(path) > 5 {
			mediaPath := path[:len(path)-5]
			if _, err := os.Stat(mediaPath); os.IsNotExist(err) {
				if err := os.Remove(path); err != nil {
					return fmt.Errorf("failed to remove orphaned metadata %s: %w", path, err)
				}
			}
		}

		return nil
	})
}
