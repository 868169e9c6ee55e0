// Package scraper orchestrates the download of a Tumblr blog's media.
//
// The scraper pages through the blog's posts via the Tumblr v2 API,
// maps each photo post into a photoset, resolves a save path for every
// photo, and hands the downloads to a concurrent worker pool. Progress
// is checkpointed so an interrupted run can resume, and posts or files
// that fail to parse are skipped individually rather than aborting the
// whole run.
package scraper
