package downloader

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"tumdlr/pkg/logger"
	"tumdlr/pkg/post"
	"tumdlr/pkg/ratelimit"
)

// DownloadJob represents a single media download task. Path is the full
// resolved save path; Annotations carries display metadata such as the
// caption and photoset page.
type DownloadJob struct {
	URL         string
	Path        string
	PostID      int64
	Blog        string
	Annotations post.Annotations
}

// DownloadResult represents the result of a download job
type DownloadResult struct {
	Job      DownloadJob
	Success  bool
	Skipped  bool
	Error    error
	Duration time.Duration
	Size     int
}

// FileDownloader interface for fetching media bytes
type FileDownloader interface {
	DownloadFile(url string) ([]byte, error)
}

// FileStorage interface for persisting media files
type FileStorage interface {
	IsDownloaded(path string) bool
	Save(r io.Reader, path string) error
}

// WorkerPool manages concurrent download workers
type WorkerPool struct {
	numWorkers  int
	jobQueue    chan DownloadJob
	resultQueue chan DownloadResult
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
	client      FileDownloader
	storage     FileStorage
	rateLimiter ratelimit.Limiter
	logger      logger.Logger
}

// NewWorkerPool creates a new download worker pool
func NewWorkerPool(
	numWorkers int,
	client FileDownloader,
	storage FileStorage,
	rateLimiter ratelimit.Limiter,
	log logger.Logger,
) *WorkerPool {
	ctx, cancel := context.WithCancel(context.Background())

	if log == nil {
		log = logger.GetLogger()
	}

	return &WorkerPool{
		numWorkers:  numWorkers,
		jobQueue:    make(chan DownloadJob, numWorkers*2),
		resultQueue: make(chan DownloadResult, numWorkers),
		ctx:         ctx,
		cancel:      cancel,
		client:      client,
		storage:     storage,
		rateLimiter: rateLimiter,
		logger:      log,
	}
}

// Start initializes and starts all workers
func (wp *WorkerPool) Start() {
	wp.logger.InfoWithFields("Starting worker pool", map[string]interface{}{
		"num_workers": wp.numWorkers,
	})

	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
}

// Stop gracefully shuts down the worker pool. Queued jobs are drained
// before the result channel closes.
func (wp *WorkerPool) Stop() {
	wp.logger.Info("Stopping worker pool...")

	close(wp.jobQueue)
	wp.wg.Wait()
	close(wp.resultQueue)
	wp.cancel()

	wp.logger.Info("Worker pool stopped")
}

// Submit adds a new download job to the queue
func (wp *WorkerPool) Submit(job DownloadJob) error {
	select {
	case wp.jobQueue <- job:
		wp.logger.DebugWithFields("Job submitted to queue", map[string]interface{}{
			"post_id": job.PostID,
			"path":    job.Path,
		})
		return nil
	case <-wp.ctx.Done():
		return fmt.Errorf("worker pool is shutting down")
	}
}

// Results returns the result channel for consuming download results
func (wp *WorkerPool) Results() <-chan DownloadResult {
	return wp.resultQueue
}

// worker is the main worker routine
func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()

	wp.logger.DebugWithFields("Worker started", map[string]interface{}{
		"worker_id": id,
	})

	for job := range wp.jobQueue {
		select {
		case <-wp.ctx.Done():
			wp.logger.DebugWithFields("Worker stopping - context cancelled", map[string]interface{}{
				"worker_id": id,
			})
			return
		default:
		}

		result := wp.processJob(job, id)

		select {
		case wp.resultQueue <- result:
		case <-wp.ctx.Done():
			wp.logger.DebugWithFields("Worker stopping - context cancelled while sending result", map[string]interface{}{
				"worker_id": id,
			})
			return
		}
	}

	wp.logger.DebugWithFields("Worker stopping - job queue closed", map[string]interface{}{
		"worker_id": id,
	})
}

// processJob handles a single download job
func (wp *WorkerPool) processJob(job DownloadJob, workerID int) DownloadResult {
	start := time.Now()
	result := DownloadResult{
		Job:     job,
		Success: false,
	}

	wp.logger.DebugWithFields("Worker processing job", map[string]interface{}{
		"worker_id": workerID,
		"post_id":   job.PostID,
		"path":      job.Path,
	})

	if wp.storage.IsDownloaded(job.Path) {
		wp.logger.DebugWithFields("File already downloaded", map[string]interface{}{
			"worker_id": workerID,
			"path":      job.Path,
		})
		result.Success = true
		result.Skipped = true
		result.Duration = time.Since(start)
		return result
	}

	if !wp.rateLimiter.Allow() {
		wp.logger.DebugWithFields("Worker waiting for rate limit", map[string]interface{}{
			"worker_id": workerID,
			"post_id":   job.PostID,
		})
		wp.rateLimiter.Wait()
	}

	data, err := wp.client.DownloadFile(job.URL)
	if err != nil {
		result.Error = fmt.Errorf("download failed: %w", err)
		result.Duration = time.Since(start)

		wp.logger.ErrorWithFields("Worker failed to download file", map[string]interface{}{
			"worker_id": workerID,
			"post_id":   job.PostID,
			"url":       job.URL,
			"error":     err.Error(),
			"duration":  result.Duration,
		})

		return result
	}

	result.Size = len(data)

	err = wp.storage.Save(bytes.NewReader(data), job.Path)
	if err != nil {
		result.Error = fmt.Errorf("save failed: %w", err)
		result.Duration = time.Since(start)

		wp.logger.ErrorWithFields("Worker failed to save file", map[string]interface{}{
			"worker_id": workerID,
			"post_id":   job.PostID,
			"path":      job.Path,
			"error":     err.Error(),
			"size":      result.Size,
		})

		return result
	}

	result.Success = true
	result.Duration = time.Since(start)

	wp.logger.DebugWithFields("Worker completed job successfully", map[string]interface{}{
		"worker_id": workerID,
		"post_id":   job.PostID,
		"path":      job.Path,
		"size":      result.Size,
		"duration":  result.Duration,
	})

	return result
}

// GetQueueSize returns the current number of jobs in the queue
func (wp *WorkerPool) GetQueueSize() int {
	return len(wp.jobQueue)
}

// GetActiveWorkers returns the number of active workers
func (wp *WorkerPool) GetActiveWorkers() int {
	return wp.numWorkers
}
