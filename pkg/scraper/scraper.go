package scraper

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"tumdlr/internal/downloader"
	"tumdlr/pkg/checkpoint"
	"tumdlr/pkg/config"
	"tumdlr/pkg/logger"
	"tumdlr/pkg/metadata"
	"tumdlr/pkg/post"
	"tumdlr/pkg/ratelimit"
	"tumdlr/pkg/storage"
	"tumdlr/pkg/tumblr"
	"tumdlr/pkg/ui"
)

// mediaSource maps a queued save path back to the photoset and photo
// it came from, for metadata sidecars.
type mediaSource struct {
	set   *post.PhotoSet
	photo *post.Photo
}

// Scraper orchestrates the blog media download process
type Scraper struct {
	client        TumblrClient
	storage       *storage.Manager
	apiLimiter    ratelimit.Limiter
	dlLimiter     ratelimit.Limiter
	progress      *ui.ProgressDisplay
	config        *config.Config
	logger        logger.Logger
	checkpointMgr *checkpoint.Manager

	mu      sync.Mutex
	sources map[string]mediaSource
}

// New creates a new Scraper instance
func New(cfg *config.Config) (*Scraper, error) {
	log := logger.GetLogger()

	client := tumblr.NewClient(cfg.Download.DownloadTimeout, cfg.Tumblr.APIKey, log)
	if cfg.Tumblr.UserAgent != "" {
		client.SetHeader("User-Agent", cfg.Tumblr.UserAgent)
	}

	rpm := cfg.RateLimit.RequestsPerMinute
	if rpm <= 0 {
		rpm = 60
	}

	return &Scraper{
		client:     client,
		apiLimiter: ratelimit.NewSlidingWindow(rpm, time.Minute),
		dlLimiter:  ratelimit.NewTokenBucket(rpm, time.Minute),
		config:     cfg,
		logger:     log,
		sources:    make(map[string]mediaSource),
	}, nil
}

// DownloadBlog downloads all photo posts from a blog
func (s *Scraper) DownloadBlog(blog string) error {
	return s.downloadBlogWithOptions(blog, false, false)
}

// DownloadBlogWithResume downloads a blog with checkpoint support
func (s *Scraper) DownloadBlogWithResume(blog string, resume bool, forceRestart bool) error {
	return s.downloadBlogWithOptions(blog, resume, forceRestart)
}

// pathContext builds the path resolution context from configuration
func (s *Scraper) pathContext() post.PathContext {
	return post.PathContext{
		SaveRoot:   s.config.Output.SavePath,
		ByUser:     s.config.Categorization.User,
		ByPostType: s.config.Categorization.PostType,
		ByPhotoset: s.config.Categorization.Photosets,
	}
}

func (s *Scraper) downloadBlogWithOptions(blogName string, resume bool, forceRestart bool) error {
	checkpointMgr, err := checkpoint.NewManager(blogName)
	if err != nil {
		s.logger.WithError(err).WithField("blog", blogName).Error("Failed to create checkpoint manager")
		return fmt.Errorf("failed to create checkpoint manager: %w", err)
	}
	s.checkpointMgr = checkpointMgr

	var cp *checkpoint.Checkpoint
	if forceRestart && checkpointMgr.Exists() {
		if err := checkpointMgr.Delete(); err != nil {
			s.logger.WithError(err).Warn("Failed to delete existing checkpoint")
		}
		ui.PrintInfo("Force restart", "Ignoring existing checkpoint")
	} else if resume && checkpointMgr.Exists() {
		cp, err = checkpointMgr.Load()
		if err != nil {
			s.logger.WithError(err).Error("Failed to load checkpoint")
			return fmt.Errorf("failed to load checkpoint: %w", err)
		}
		if cp != nil {
			ui.PrintInfo("Resuming from checkpoint", fmt.Sprintf("Downloaded: %d files", cp.TotalDownloaded))
			s.logger.InfoWithFields("Resuming from checkpoint", map[string]interface{}{
				"blog":             blogName,
				"offset":           cp.Offset,
				"total_downloaded": cp.TotalDownloaded,
			})
		}
	} else if checkpointMgr.Exists() && !resume {
		prev, _ := checkpointMgr.Load()
		if prev != nil {
			if !ui.IsQuietMode() {
				fmt.Printf("\n%s Previous download found (%d files)\n", ui.Yellow("►"), prev.TotalDownloaded)
				fmt.Printf("  Use: %s to continue where you left off\n", ui.Green("--resume"))
				fmt.Printf("  Use: %s to start fresh\n\n", ui.Yellow("--force-restart"))
			}
			return fmt.Errorf("checkpoint exists - use --resume to continue or --force-restart to start fresh")
		}
	}

	s.logger.InfoWithFields("Starting blog download", map[string]interface{}{
		"blog":   blogName,
		"action": "download_start",
		"resume": resume && cp != nil,
	})

	storageManager, err := storage.NewManager(s.config.Output.SavePath)
	if err != nil {
		s.logger.WithError(err).WithField("blog", blogName).Error("Failed to create storage manager")
		return fmt.Errorf("failed to create storage manager: %w", err)
	}
	s.storage = storageManager

	if cp == nil {
		cp, err = checkpointMgr.Create(blogName)
		if err != nil {
			s.logger.WithError(err).Warn("Failed to create checkpoint")
			cp = &checkpoint.Checkpoint{
				Blog:            blogName,
				DownloadedFiles: make(map[string]string),
			}
		}
	}

	workerPool := downloader.NewWorkerPool(
		s.config.Download.ConcurrentDownloads,
		s.client,
		s.storage,
		s.dlLimiter,
		s.logger,
	)
	workerPool.Start()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.processDownloadResults(workerPool.Results(), blogName)
	}()

	debugMode := strings.ToLower(s.config.Logging.Level) == "debug"
	s.progress = ui.NewProgressDisplay(blogName, 0, debugMode)
	if cp.TotalDownloaded > 0 {
		s.progress.SetDownloadedCount(cp.TotalDownloaded)
	}

	blogRef := post.Blog{Name: blogName}
	pathCtx := s.pathContext()

	offset := cp.Offset
	pageNum := cp.LastPage
	totalQueued := cp.TotalQueued
	hasMore := true

	for hasMore {
		pageNum++
		s.progress.ScanningPage(pageNum)

		if !s.apiLimiter.Allow() {
			logger.LogRateLimit("tumblr_api", 60)
			s.progress.RateLimitWarning(time.Minute)
			s.apiLimiter.Wait()
		}

		page, err := s.client.FetchPosts(blogName, offset, tumblr.DefaultPostLimit)
		if err != nil {
			s.logger.WithError(err).WithFields(map[string]interface{}{
				"blog":   blogName,
				"offset": offset,
			}).Error("Failed to fetch posts")
			workerPool.Stop()
			wg.Wait()
			return fmt.Errorf("failed to fetch posts: %w", err)
		}

		s.logger.InfoWithFields("Posts page fetched", map[string]interface{}{
			"blog":        blogName,
			"offset":      offset,
			"post_count":  len(page.Posts),
			"total_posts": page.TotalPosts,
		})

		for _, raw := range page.Posts {
			queued := s.queuePost(raw, blogRef, pathCtx, cp, workerPool)
			totalQueued += queued
		}

		offset += len(page.Posts)
		cp.TotalQueued = totalQueued
		if err := checkpointMgr.UpdateProgress(cp, offset, pageNum); err != nil {
			s.logger.WithError(err).Warn("Failed to update checkpoint progress")
		}

		hasMore = len(page.Posts) > 0 && offset < page.TotalPosts
	}

	s.progress.UpdateTotal(totalQueued)

	s.logger.InfoWithFields("All jobs queued, waiting for downloads to complete", map[string]interface{}{
		"blog":         blogName,
		"total_queued": totalQueued,
	})

	workerPool.Stop()
	wg.Wait()

	s.logger.InfoWithFields("Blog download completed", map[string]interface{}{
		"blog":   blogName,
		"action": "download_complete",
	})

	if s.checkpointMgr.Exists() {
		if err := s.checkpointMgr.Delete(); err != nil {
			s.logger.WithError(err).Warn("Failed to delete checkpoint")
		} else {
			s.logger.Info("Checkpoint deleted after successful completion")
		}
	}

	s.progress.Complete()
	return nil
}

// queuePost maps one raw post into download jobs. Posts and files that
// cannot be mapped are logged and skipped; the return value is the
// number of jobs queued.
func (s *Scraper) queuePost(raw map[string]any, blogRef post.Blog, pathCtx post.PathContext, cp *checkpoint.Checkpoint, pool *downloader.WorkerPool) int {
	p, err := post.Parse(raw, blogRef)
	if err != nil {
		s.logger.WithError(err).WithField("blog", blogRef.Name).Warn("Skipping unparseable post")
		return 0
	}

	if p.IsVideo() {
		s.logger.DebugWithFields("Skipping video post", map[string]interface{}{
			"blog":    blogRef.Name,
			"post_id": p.ID,
		})
		return 0
	}
	if !p.IsPhoto() {
		s.logger.DebugWithFields("Skipping unsupported post type", map[string]interface{}{
			"blog":    blogRef.Name,
			"post_id": p.ID,
			"type":    p.Type,
		})
		return 0
	}

	set, err := post.ParsePhotoSet(raw, blogRef)
	if err != nil {
		s.logger.WithError(err).WithFields(map[string]interface{}{
			"blog":    blogRef.Name,
			"post_id": p.ID,
		}).Warn("Skipping photo post with unusable photos")
		return 0
	}

	queued := 0
	for _, file := range set.Files() {
		path, annotations, err := file.ResolvePath(pathCtx)
		if err != nil {
			s.logger.WithError(err).WithFields(map[string]interface{}{
				"blog":    blogRef.Name,
				"post_id": set.ID,
				"url":     file.URL(),
			}).Warn("Skipping file without a resolvable path")
			continue
		}

		if cp.IsFileDownloaded(path) {
			s.logger.DebugWithFields("Skipping file recorded in checkpoint", map[string]interface{}{
				"blog": blogRef.Name,
				"path": path,
			})
			continue
		}

		if photo, ok := file.(*post.Photo); ok {
			s.mu.Lock()
			s.sources[path] = mediaSource{set: set, photo: photo}
			s.mu.Unlock()
		}

		job := downloader.DownloadJob{
			URL:         file.URL(),
			Path:        path,
			PostID:      set.ID,
			Blog:        blogRef.Name,
			Annotations: annotations,
		}
		if err := pool.Submit(job); err != nil {
			s.logger.WithError(err).WithFields(map[string]interface{}{
				"blog":    blogRef.Name,
				"post_id": set.ID,
			}).Error("Failed to submit download job")
			continue
		}

		s.progress.StartDownload(path)
		queued++
	}

	return queued
}

// processDownloadResults processes results from the worker pool
func (s *Scraper) processDownloadResults(results <-chan downloader.DownloadResult, blogName string) {
	for result := range results {
		if result.Success {
			logger.LogDownload(blogName, result.Job.PostID, "photo", true, nil)

			s.progress.CompleteDownload(result.Job.Path, int64(result.Size), result.Job.Annotations)

			// Reload rather than share the pagination loop's copy.
			if cp, err := s.checkpointMgr.Load(); err == nil && cp != nil {
				if err := s.checkpointMgr.RecordDownload(cp, result.Job.Path, result.Job.URL); err != nil {
					s.logger.WithError(err).Warn("Failed to record download in checkpoint")
				}
			}

			if s.config.Download.SaveMetadata && !result.Skipped {
				s.saveMetadata(result)
			}

			s.logger.DebugWithFields("Download completed successfully", map[string]interface{}{
				"blog":     blogName,
				"post_id":  result.Job.PostID,
				"path":     result.Job.Path,
				"duration": result.Duration,
				"size":     result.Size,
			})
		} else {
			logger.LogDownload(blogName, result.Job.PostID, "photo", false, result.Error)

			s.progress.FailDownload(result.Job.Path, result.Error)

			s.logger.ErrorWithFields("Download failed", map[string]interface{}{
				"blog":     blogName,
				"post_id":  result.Job.PostID,
				"path":     result.Job.Path,
				"error":    result.Error.Error(),
				"duration": result.Duration,
			})
		}
	}
}

// saveMetadata writes the JSON sidecar for a completed download
func (s *Scraper) saveMetadata(result downloader.DownloadResult) {
	s.mu.Lock()
	src, ok := s.sources[result.Job.Path]
	s.mu.Unlock()
	if !ok {
		return
	}

	meta := metadata.FromPhoto(src.set, src.photo, int64(result.Size))
	if err := meta.Save(result.Job.Path); err != nil {
		s.logger.WithError(err).WithField("path", result.Job.Path).Warn("Failed to save metadata sidecar")
	}
}
