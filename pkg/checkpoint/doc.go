// Package checkpoint persists scrape progress so an interrupted blog
// download can resume where it left off.
//
// A checkpoint records the pagination offset into the blog's post list
// and the files already written, keyed by save path. Checkpoints live
// in the OS data directory (XDG_DATA_HOME or the platform equivalent)
// under tumdlr/checkpoints/, one JSON file per blog, and are written
// atomically via a temp-file rename.
package checkpoint
