package post

import (
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strconv"

	"tumdlr/pkg/sanitize"
)

// Photo is one downloadable image belonging to a PhotoSet. Width and
// height are 0 when the API did not report them; PageNumber is nil for
// the lone photo of a single-photo post and 1-based otherwise.
type Photo struct {
	Width      int
	Height     int
	PageNumber *int

	url   *url.URL
	owner *PhotoSet
}

// newPhoto builds a Photo from a selected size record. The url key is
// mandatory on every size entry.
func newPhoto(size map[string]any, owner *PhotoSet) (*Photo, error) {
	raw, ok := stringValue(size["url"])
	if !ok {
		return nil, missingFieldError("photos[].url")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, missingFieldError("photos[].url")
	}

	p := &Photo{
		url:   u,
		owner: owner,
	}
	if w, ok := intValue(size["width"]); ok {
		p.Width = int(w)
	}
	if h, ok := intValue(size["height"]); ok {
		p.Height = int(h)
	}
	return p, nil
}

// URL returns the source URL of the selected image size.
func (p *Photo) URL() string {
	return p.url.String()
}

// Category implements File.
func (p *Photo) Category() string {
	return "photos"
}

// ResolvePath derives the save path for this photo. After the shared
// base directory, paginated photos optionally gain a photoset segment
// named after the owning post id and always gain a p<page>_ filename
// prefix; standalone photos use the sanitized title alone. The
// extension is copied verbatim from the source URL path. The returned
// annotations carry the caption and, for paginated photos, the
// "current / total" page progress.
func (p *Photo) ResolvePath(ctx PathContext) (string, Annotations, error) {
	owner := p.owner
	if owner == nil {
		return "", nil, invalidOwnerError("photo path resolution requires an owning photo set")
	}

	dir, err := baseDir(ctx, &owner.Post, p.Category())
	if err != nil {
		return "", nil, err
	}

	if owner.Title == nil {
		return "", nil, unresolvedTitleError(owner.ID)
	}
	title := *owner.Title

	notes := Annotations{AnnotationCaption: title}

	var name string
	if p.PageNumber != nil {
		if ctx.ByPhotoset {
			dir = filepath.Join(dir, sanitize.Filename(strconv.FormatInt(owner.ID, 10)))
		}
		name = sanitize.Filename(fmt.Sprintf("p%d_%s", *p.PageNumber, title))
		notes[AnnotationPhotosetPage] = fmt.Sprintf("%d / %d", *p.PageNumber, len(owner.Photos))
	} else {
		name = sanitize.Filename(title)
		if name == "" {
			// A blank sanitized title would embed an empty segment.
			return "", nil, unresolvedTitleError(owner.ID)
		}
	}

	return filepath.Join(dir, name) + path.Ext(p.url.Path), notes, nil
}

func (p *Photo) String() string {
	return p.url.String()
}
