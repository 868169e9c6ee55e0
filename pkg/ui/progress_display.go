package ui

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"tumdlr/pkg/post"
)

// ProgressDisplay provides a single-line progress readout for a blog
// download, with a verbose per-file mode for debugging.
type ProgressDisplay struct {
	mu              sync.Mutex
	blog            string
	totalFiles      int
	downloadedCount int
	currentFile     string
	startTime       time.Time
	bytesDownloaded int64
	errors          int
	isDebug         bool
}

// NewProgressDisplay creates a new progress display
func NewProgressDisplay(blog string, totalFiles int, debug bool) *ProgressDisplay {
	return &ProgressDisplay{
		blog:       blog,
		totalFiles: totalFiles,
		startTime:  time.Now(),
		isDebug:    debug,
	}
}

// StartDownload marks the start of a new download
func (p *ProgressDisplay) StartDownload(path string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.currentFile = path

	if !p.isDebug {
		p.printProgress()
	}
}

// CompleteDownload marks a download as complete. Annotations from path
// resolution supply the caption and photoset page for debug output.
func (p *ProgressDisplay) CompleteDownload(path string, size int64, annotations post.Annotations) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.downloadedCount++
	p.bytesDownloaded += size

	if !p.isDebug {
		p.printProgress()
	} else {
		p.printDebugComplete(path, size, annotations)
	}
}

// FailDownload marks a download as failed
func (p *ProgressDisplay) FailDownload(path string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.errors++

	if !p.isDebug {
		p.printProgress()
	} else {
		fmt.Printf("\n%s Failed: %s - %v\n", Red("✗"), path, err)
	}
}

// printProgress prints the minimal progress line
func (p *ProgressDisplay) printProgress() {
	if quiet {
		return
	}

	elapsed := time.Since(p.startTime)
	rate := float64(p.downloadedCount) / elapsed.Minutes()
	eta := p.calculateETA()

	progress := 0.0
	if p.totalFiles > 0 {
		progress = float64(p.downloadedCount) / float64(p.totalFiles)
	}
	barWidth := 20
	filled := int(progress * float64(barWidth))
	if filled > barWidth {
		filled = barWidth
	}
	bar := strings.Repeat("━", filled) + strings.Repeat("─", barWidth-filled)

	line := fmt.Sprintf("\r%s [%s] %d/%d • %.1f/min • %s • %s",
		Cyan(p.blog),
		bar,
		p.downloadedCount,
		p.totalFiles,
		rate,
		p.formatBytes(p.bytesDownloaded),
		eta,
	)

	if p.errors > 0 {
		line += fmt.Sprintf(" • %s", Red(fmt.Sprintf("%d errors", p.errors)))
	}

	fmt.Printf("\r%s\r%s", strings.Repeat(" ", 120), line)
}

// printDebugComplete prints detailed info in debug mode
func (p *ProgressDisplay) printDebugComplete(path string, size int64, annotations post.Annotations) {
	fmt.Printf("\n%s %s • %s",
		Green("✓"),
		path,
		p.formatBytes(size),
	)

	if caption := annotations[post.AnnotationCaption]; caption != "" {
		if len(caption) > 50 {
			caption = caption[:47] + "..."
		}
		fmt.Printf(" • %s", Dim(caption))
	}

	if page := annotations[post.AnnotationPhotosetPage]; page != "" {
		fmt.Printf(" • %s", Dim(fmt.Sprintf("page %s", page)))
	}

	fmt.Println()
}

// Complete marks the entire operation as complete
func (p *ProgressDisplay) Complete() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if quiet {
		return
	}

	elapsed := time.Since(p.startTime)

	fmt.Printf("\n\n%s Downloaded %d files from %s\n",
		Green("✓"),
		p.downloadedCount,
		p.blog,
	)

	fmt.Printf("  %s %s in %s (%.1f files/min)\n",
		Dim("•"),
		p.formatBytes(p.bytesDownloaded),
		p.formatDuration(elapsed),
		float64(p.downloadedCount)/elapsed.Minutes(),
	)

	if p.errors > 0 {
		fmt.Printf("  %s %d downloads failed\n",
			Dim("•"),
			p.errors,
		)
	}
}

// calculateETA estimates time remaining
func (p *ProgressDisplay) calculateETA() string {
	if p.downloadedCount == 0 {
		return "calculating..."
	}

	remaining := p.totalFiles - p.downloadedCount
	elapsed := time.Since(p.startTime)
	rate := float64(p.downloadedCount) / elapsed.Seconds()

	if rate == 0 {
		return "calculating..."
	}

	etaSeconds := float64(remaining) / rate
	eta := time.Duration(etaSeconds) * time.Second

	return p.formatDuration(eta)
}

// formatDuration formats a duration in a human-readable way
func (p *ProgressDisplay) formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	} else if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}

// formatBytes formats bytes in a human-readable way
func (p *ProgressDisplay) formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}

	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}

	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// RateLimitWarning shows a rate limit warning
func (p *ProgressDisplay) RateLimitWarning(waitTime time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Printf("\n%s Rate limit reached. Waiting %s...\n",
		Yellow("⚠"),
		p.formatDuration(waitTime),
	)
}

// ScanningPage indicates fetching a new page of posts
func (p *ProgressDisplay) ScanningPage(page int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.isDebug {
		fmt.Printf("\n%s Fetching page %d...\n", Magenta("→"), page)
	}
}

// UpdateTotal updates the total file count
func (p *ProgressDisplay) UpdateTotal(total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.totalFiles = total
}

// SetDownloadedCount sets the initial downloaded count (for resume)
func (p *ProgressDisplay) SetDownloadedCount(count int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.downloadedCount = count
}
