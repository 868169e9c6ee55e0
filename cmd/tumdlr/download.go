package main

import (
	"strings"

	"github.com/spf13/cobra"

	"tumdlr/pkg/config"
	"tumdlr/pkg/logger"
	"tumdlr/pkg/metadata"
	"tumdlr/pkg/scraper"
	"tumdlr/pkg/ui"
)

var (
	// Download command flags
	apiKey         string
	savePath       string
	concurrent     int
	rateLimit      int
	saveMetadata   bool
	noUserDir      bool
	noTypeDir      bool
	noPhotosetDir  bool
	resumeDownload bool
	forceRestart   bool
	cleanOrphaned  bool
)

// downloadCmd represents the download command
var downloadCmd = &cobra.Command{
	Use:   "download <blog>",
	Short: "Download all media from a Tumblr blog",
	Long: `Download all photo posts from a Tumblr blog.

The blog can be given as a short name (staff) or a full host
(staff.tumblr.com). A Tumblr API key is required, configured through:
  - The TUMDLR_API_KEY environment variable
  - The configuration file
  - The --api-key flag

Files are organized under the save path by blog name, post type, and
photoset, each level switchable with a flag.`,
	Example: `  # Download a blog with default settings
  tumdlr download staff

  # Download to a specific directory with more workers
  tumdlr download staff --output ./tumblr --concurrent 5

  # Flat layout without per-blog or per-type folders
  tumdlr download staff --no-user-dir --no-type-dir

  # Resume an interrupted download
  tumdlr download staff --resume

  # Start fresh, ignoring an existing checkpoint
  tumdlr download staff --force-restart`,
	Args: cobra.ExactArgs(1),
	RunE: runDownload,
}

func init() {
	rootCmd.AddCommand(downloadCmd)

	downloadCmd.Flags().StringVar(&apiKey, "api-key", "", "Tumblr API key")
	downloadCmd.Flags().StringVarP(&savePath, "output", "o", "", "output directory for downloads")
	downloadCmd.Flags().IntVar(&concurrent, "concurrent", 0, "number of concurrent downloads")
	downloadCmd.Flags().IntVar(&rateLimit, "rate-limit", 0, "requests per minute")
	downloadCmd.Flags().BoolVar(&saveMetadata, "save-metadata", false, "write a JSON metadata sidecar for each file")
	downloadCmd.Flags().BoolVar(&noUserDir, "no-user-dir", false, "do not create a folder per blog")
	downloadCmd.Flags().BoolVar(&noTypeDir, "no-type-dir", false, "do not create a folder per post type")
	downloadCmd.Flags().BoolVar(&noPhotosetDir, "no-photoset-dir", false, "do not create a folder per photoset")
	downloadCmd.Flags().BoolVar(&resumeDownload, "resume", false, "resume from last checkpoint")
	downloadCmd.Flags().BoolVar(&forceRestart, "force-restart", false, "force restart, ignoring existing checkpoint")
	downloadCmd.Flags().BoolVar(&cleanOrphaned, "clean-orphaned", false, "remove metadata sidecars whose media file is gone")
}

func runDownload(cmd *cobra.Command, args []string) error {
	blog := strings.TrimSpace(args[0])

	ui.PrintInfo("Target Blog", blog)

	flags := make(map[string]interface{})
	if apiKey != "" {
		flags["api-key"] = apiKey
	}
	if savePath != "" {
		flags["save-path"] = savePath
	}
	if concurrent > 0 {
		flags["concurrent"] = concurrent
	}
	if rateLimit > 0 {
		flags["requests-per-minute"] = rateLimit
	}
	if saveMetadata {
		flags["save-metadata"] = true
	}
	if logLevel != "info" {
		flags["log-level"] = logLevel
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		return err
	}

	// Flags disable categorization levels individually
	if noUserDir {
		cfg.Categorization.User = false
	}
	if noTypeDir {
		cfg.Categorization.PostType = false
	}
	if noPhotosetDir {
		cfg.Categorization.Photosets = false
	}

	if err := logger.Initialize(&logger.Config{Level: cfg.Logging.Level, File: cfg.Logging.File}); err != nil {
		ui.PrintError("Failed to initialize logger", err.Error())
		return err
	}
	logger.WithField("version", version).Info("tumdlr starting")

	logger.WithField("blog", blog).Info("Starting download operation")

	s, err := scraper.New(cfg)
	if err != nil {
		ui.PrintError("Failed to initialize scraper", err.Error())
		return err
	}

	if err := s.DownloadBlogWithResume(blog, resumeDownload, forceRestart); err != nil {
		logger.WithError(err).WithField("blog", blog).Error("Download failed")
		ui.PrintError("Download failed", err.Error())
		return err
	}

	if cleanOrphaned {
		if err := metadata.CleanOrphaned(cfg.Output.SavePath); err != nil {
			logger.WithError(err).Warn("Failed to clean orphaned metadata")
			ui.PrintWarning("Cleanup", "some orphaned metadata sidecars could not be removed")
		}
	}

	logger.WithField("blog", blog).Info("Download completed successfully")
	return nil
}
