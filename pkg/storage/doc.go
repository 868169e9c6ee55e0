// Package storage handles writing downloaded media to disk.
//
// The Manager keeps an in-memory index of files already present under
// the save root so repeated runs skip work that is done. Writes go to a
// temporary file first and are renamed into place, so an interrupted
// download never leaves a partial file at its final path.
package storage
