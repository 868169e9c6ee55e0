// Package logger provides structured logging for tumdlr.
//
// It wraps the zerolog library behind a small Logger interface with
// support for multiple log levels, structured fields, pretty console
// output and an optional log file, plus a global instance for easy
// access.
//
// Basic usage:
//
//	err := logger.Initialize(&logger.Config{Level: "info"})
//
//	logger.Info("starting up")
//	logger.WithField("blog", "staff").Info("downloading blog")
//	logger.WithError(err).Error("download failed")
//
// Structured logging:
//
//	log := logger.GetLogger().WithField("component", "downloader")
//	log.InfoWithFields("file saved", map[string]interface{}{
//	    "path": "/downloads/example/photos/Sunset.jpg",
//	    "size": 1024000,
//	})
package logger
