package post

import (
	"path/filepath"

	"tumdlr/pkg/sanitize"
)

// PathContext supplies the read-only configuration path resolution
// depends on: the save root plus the three independent categorization
// toggles. It is never mutated by this package and may be shared
// across goroutines.
type PathContext struct {
	SaveRoot   string
	ByUser     bool
	ByPostType bool
	ByPhotoset bool
}

// Annotation keys produced by path resolution for progress display.
const (
	AnnotationCaption      = "Caption"
	AnnotationPhotosetPage = "Photoset Page"
)

// Annotations carries display metadata produced as a side channel of
// path resolution. Annotations never influence the resolved path.
type Annotations map[string]string

// File is a downloadable resource tied to a parent post. Implementers
// resolve their own save path; the download transport is a separate
// collaborator fed with the resolved (url, path) pair.
type File interface {
	// URL returns the source URL to fetch.
	URL() string
	// Category names the resource category used for the
	// categorize-by-post-type path segment, e.g. "photos".
	Category() string
	// ResolvePath derives the save path for this file under the given
	// context. Calling it twice with the same entity and context
	// yields byte-identical paths.
	ResolvePath(ctx PathContext) (string, Annotations, error)
}

// baseDir composes the directory prefix shared by every file type:
// the save root, then the sanitized blog name when categorizing by
// user, then the category segment when categorizing by post type.
func baseDir(ctx PathContext, owner *Post, category string) (string, error) {
	if owner == nil {
		return "", invalidOwnerError("file has no owning post")
	}

	dir := ctx.SaveRoot
	if ctx.ByUser {
		dir = filepath.Join(dir, sanitize.Filename(owner.Blog.Name))
	}
	if ctx.ByPostType {
		dir = filepath.Join(dir, category)
	}
	return dir, nil
}
