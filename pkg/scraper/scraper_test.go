package scraper

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tumdlr/pkg/checkpoint"
	"tumdlr/pkg/config"
	"tumdlr/pkg/logger"
	"tumdlr/pkg/metadata"
	"tumdlr/pkg/ratelimit"
	"tumdlr/pkg/tumblr"
	"tumdlr/pkg/ui"
)

func init() {
	ui.SetQuietMode(true)
}

type mockClient struct {
	mu        sync.Mutex
	pages     map[int]*tumblr.PostsPage
	fetchErr  error
	downloads []string
}

func (m *mockClient) FetchPosts(blog string, offset, limit int) (*tumblr.PostsPage, error) {
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	if page, ok := m.pages[offset]; ok {
		return page, nil
	}
	return &tumblr.PostsPage{}, nil
}

func (m *mockClient) DownloadFile(url string) ([]byte, error) {
	m.mu.Lock()
	m.downloads = append(m.downloads, url)
	m.mu.Unlock()
	return []byte("media:" + url), nil
}

func decodeRaw(t *testing.T, payload string) map[string]any {
	t.Helper()
	dec := json.NewDecoder(strings.NewReader(payload))
	dec.UseNumber()
	var raw map[string]any
	require.NoError(t, dec.Decode(&raw))
	return raw
}

func photoPost(t *testing.T, id int, caption string, urls ...string) map[string]any {
	t.Helper()
	photos := make([]string, 0, len(urls))
	for _, u := range urls {
		photos = append(photos, fmt.Sprintf(`{"original_size": {"url": %q, "width": 1280, "height": 720}}`, u))
	}
	payload := fmt.Sprintf(`{
		"id": %d,
		"type": "photo",
		"date": "2016-08-15 01:02:03 GMT",
		"caption": %q,
		"photos": [%s]
	}`, id, caption, strings.Join(photos, ","))
	return decodeRaw(t, payload)
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Tumblr.APIKey = "test-key"
	cfg.Output.SavePath = t.TempDir()
	cfg.Download.ConcurrentDownloads = 2
	cfg.Logging.Level = "error"
	return cfg
}

func newTestScraper(t *testing.T, cfg *config.Config, client TumblrClient) *Scraper {
	t.Helper()
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	return &Scraper{
		client:     client,
		apiLimiter: ratelimit.NewSlidingWindow(1000, time.Minute),
		dlLimiter:  ratelimit.NewTokenBucket(1000, time.Minute),
		config:     cfg,
		logger:     logger.NewNopLogger(),
		sources:    make(map[string]mediaSource),
	}
}

func TestDownloadBlogSinglePhoto(t *testing.T) {
	cfg := testConfig(t)
	client := &mockClient{pages: map[int]*tumblr.PostsPage{
		0: {
			Posts:      []map[string]any{photoPost(t, 42, "Sunset", "https://media.example/sunset.jpg")},
			TotalPosts: 1,
		},
	}}
	s := newTestScraper(t, cfg, client)

	require.NoError(t, s.DownloadBlog("example"))

	want := filepath.Join(cfg.Output.SavePath, "example", "photos", "Sunset.jpg")
	data, err := os.ReadFile(want)
	require.NoError(t, err)
	assert.Equal(t, "media:https://media.example/sunset.jpg", string(data))
}

func TestDownloadBlogPhotoset(t *testing.T) {
	cfg := testConfig(t)
	client := &mockClient{pages: map[int]*tumblr.PostsPage{
		0: {
			Posts: []map[string]any{photoPost(t, 42, "Trip",
				"https://media.example/one.jpg",
				"https://media.example/two.jpg",
				"https://media.example/three.jpg",
			)},
			TotalPosts: 1,
		},
	}}
	s := newTestScraper(t, cfg, client)

	require.NoError(t, s.DownloadBlog("example"))

	for page := 1; page <= 3; page++ {
		want := filepath.Join(cfg.Output.SavePath, "example", "photos", "42",
			fmt.Sprintf("p%d_Trip.jpg", page))
		assert.FileExists(t, want)
	}
}

func TestDownloadBlogCategorizationToggles(t *testing.T) {
	cfg := testConfig(t)
	cfg.Categorization.User = false
	cfg.Categorization.PostType = false
	cfg.Categorization.Photosets = false
	client := &mockClient{pages: map[int]*tumblr.PostsPage{
		0: {
			Posts:      []map[string]any{photoPost(t, 42, "Sunset", "https://media.example/sunset.jpg")},
			TotalPosts: 1,
		},
	}}
	s := newTestScraper(t, cfg, client)

	require.NoError(t, s.DownloadBlog("example"))

	assert.FileExists(t, filepath.Join(cfg.Output.SavePath, "Sunset.jpg"))
}

func TestDownloadBlogSkipsNonPhotoPosts(t *testing.T) {
	cfg := testConfig(t)
	textPost := decodeRaw(t, `{"id": 7, "type": "text", "date": "2016-08-15 01:02:03 GMT"}`)
	videoPost := decodeRaw(t, `{"id": 8, "type": "video", "date": "2016-08-15 01:02:03 GMT"}`)
	client := &mockClient{pages: map[int]*tumblr.PostsPage{
		0: {
			Posts: []map[string]any{
				textPost,
				videoPost,
				photoPost(t, 42, "Sunset", "https://media.example/sunset.jpg"),
			},
			TotalPosts: 3,
		},
	}}
	s := newTestScraper(t, cfg, client)

	require.NoError(t, s.DownloadBlog("example"))

	assert.Len(t, client.downloads, 1)
}

func TestDownloadBlogSkipsUnparseablePosts(t *testing.T) {
	cfg := testConfig(t)
	missingDate := decodeRaw(t, `{"id": 7, "type": "photo"}`)
	client := &mockClient{pages: map[int]*tumblr.PostsPage{
		0: {
			Posts: []map[string]any{
				missingDate,
				photoPost(t, 42, "Sunset", "https://media.example/sunset.jpg"),
			},
			TotalPosts: 2,
		},
	}}
	s := newTestScraper(t, cfg, client)

	require.NoError(t, s.DownloadBlog("example"))
	assert.Len(t, client.downloads, 1)
}

func TestDownloadBlogPaginates(t *testing.T) {
	cfg := testConfig(t)
	client := &mockClient{pages: map[int]*tumblr.PostsPage{
		0: {
			Posts:      []map[string]any{photoPost(t, 1, "First", "https://media.example/a.jpg")},
			TotalPosts: 2,
		},
		1: {
			Posts:      []map[string]any{photoPost(t, 2, "Second", "https://media.example/b.jpg")},
			TotalPosts: 2,
		},
	}}
	s := newTestScraper(t, cfg, client)

	require.NoError(t, s.DownloadBlog("example"))

	assert.FileExists(t, filepath.Join(cfg.Output.SavePath, "example", "photos", "First.jpg"))
	assert.FileExists(t, filepath.Join(cfg.Output.SavePath, "example", "photos", "Second.jpg"))
}

func TestDownloadBlogDeletesCheckpointOnSuccess(t *testing.T) {
	cfg := testConfig(t)
	client := &mockClient{pages: map[int]*tumblr.PostsPage{
		0: {
			Posts:      []map[string]any{photoPost(t, 42, "Sunset", "https://media.example/sunset.jpg")},
			TotalPosts: 1,
		},
	}}
	s := newTestScraper(t, cfg, client)

	require.NoError(t, s.DownloadBlog("example"))

	mgr, err := checkpoint.NewManager("example")
	require.NoError(t, err)
	assert.False(t, mgr.Exists())
}

func TestDownloadBlogRefusesStaleCheckpointWithoutResume(t *testing.T) {
	cfg := testConfig(t)
	client := &mockClient{pages: map[int]*tumblr.PostsPage{}}
	s := newTestScraper(t, cfg, client)

	mgr, err := checkpoint.NewManager("example")
	require.NoError(t, err)
	_, err = mgr.Create("example")
	require.NoError(t, err)

	err = s.DownloadBlog("example")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--resume")
}

func TestDownloadBlogForceRestartDiscardsCheckpoint(t *testing.T) {
	cfg := testConfig(t)
	client := &mockClient{pages: map[int]*tumblr.PostsPage{
		0: {
			Posts:      []map[string]any{photoPost(t, 42, "Sunset", "https://media.example/sunset.jpg")},
			TotalPosts: 1,
		},
	}}
	s := newTestScraper(t, cfg, client)

	mgr, err := checkpoint.NewManager("example")
	require.NoError(t, err)
	cp, err := mgr.Create("example")
	require.NoError(t, err)
	cp.Offset = 99
	require.NoError(t, mgr.Save(cp))

	require.NoError(t, s.DownloadBlogWithResume("example", false, true))
	assert.Len(t, client.downloads, 1)
}

func TestDownloadBlogResumeSkipsRecordedFiles(t *testing.T) {
	cfg := testConfig(t)
	donePath := filepath.Join(cfg.Output.SavePath, "example", "photos", "Sunset.jpg")
	client := &mockClient{pages: map[int]*tumblr.PostsPage{
		0: {
			Posts:      []map[string]any{photoPost(t, 42, "Sunset", "https://media.example/sunset.jpg")},
			TotalPosts: 1,
		},
	}}
	s := newTestScraper(t, cfg, client)

	mgr, err := checkpoint.NewManager("example")
	require.NoError(t, err)
	cp, err := mgr.Create("example")
	require.NoError(t, err)
	require.NoError(t, mgr.RecordDownload(cp, donePath, "https://media.example/sunset.jpg"))

	require.NoError(t, s.DownloadBlogWithResume("example", true, false))
	assert.Empty(t, client.downloads)
}

func TestDownloadBlogSavesMetadataSidecars(t *testing.T) {
	cfg := testConfig(t)
	cfg.Download.SaveMetadata = true
	client := &mockClient{pages: map[int]*tumblr.PostsPage{
		0: {
			Posts:      []map[string]any{photoPost(t, 42, "Sunset", "https://media.example/sunset.jpg")},
			TotalPosts: 1,
		},
	}}
	s := newTestScraper(t, cfg, client)

	require.NoError(t, s.DownloadBlog("example"))

	mediaPath := filepath.Join(cfg.Output.SavePath, "example", "photos", "Sunset.jpg")
	require.True(t, metadata.Exists(mediaPath))

	meta, err := metadata.Load(mediaPath)
	require.NoError(t, err)
	assert.Equal(t, int64(42), meta.PostID)
	assert.Equal(t, "Sunset", meta.Caption)
	assert.Equal(t, "https://media.example/sunset.jpg", meta.SourceURL)
}

func TestDownloadBlogFetchErrorPropagates(t *testing.T) {
	cfg := testConfig(t)
	client := &mockClient{fetchErr: fmt.Errorf("boom")}
	s := newTestScraper(t, cfg, client)

	err := s.DownloadBlog("example")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to fetch posts")
}

func TestNewBuildsScraperFromConfig(t *testing.T) {
	cfg := testConfig(t)
	s, err := New(cfg)
	require.NoError(t, err)
	assert.NotNil(t, s.client)
	assert.NotNil(t, s.apiLimiter)
	assert.NotNil(t, s.dlLimiter)
}
