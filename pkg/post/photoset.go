package post

// PhotoSet is a Post of type photo or link together with its parsed
// photo children. The set owns its Photos; they are created at parse
// time and share the set's lifetime.
type PhotoSet struct {
	Post

	// Title is the caption when present, else the title, else nil.
	// It is never defaulted to the post id; resolving a child path
	// with a nil Title is an unresolved_title error.
	Title *string

	// Photos preserves the source order of the photo records.
	Photos []*Photo
}

// ParsePhotoSet parses a photo or photo-link post, selecting the best
// available size for every photo record. When the set holds more than
// one photo each child gets a 1-based page number; a lone photo gets
// none at all.
func ParsePhotoSet(raw map[string]any, blog Blog) (*PhotoSet, error) {
	base, err := Parse(raw, blog)
	if err != nil {
		return nil, err
	}

	ps := &PhotoSet{Post: *base}

	if caption, ok := stringValue(raw["caption"]); ok {
		ps.Title = &caption
	} else if title, ok := stringValue(raw["title"]); ok {
		ps.Title = &title
	}

	records, _ := raw["photos"].([]any)
	paginated := len(records) > 1

	for i, entry := range records {
		record, ok := entry.(map[string]any)
		if !ok {
			return nil, ambiguousSizeError(i + 1)
		}

		size, err := bestSize(record, i+1)
		if err != nil {
			return nil, err
		}

		photo, err := newPhoto(size, ps)
		if err != nil {
			return nil, err
		}
		if paginated {
			page := i + 1
			photo.PageNumber = &page
		}
		ps.Photos = append(ps.Photos, photo)
	}

	return ps, nil
}

// Files returns the set's photos as downloadable files, in source order.
func (ps *PhotoSet) Files() []File {
	files := make([]File, len(ps.Photos))
	for i, p := range ps.Photos {
		files[i] = p
	}
	return files
}

// bestSize picks the best image size for one photo record: the
// original_size entry when present, otherwise the widest alt_sizes
// entry. Equal widths keep the first occurrence, so selection is
// stable across runs. A record offering neither is an error rather
// than a guessed zero-size default.
func bestSize(record map[string]any, index int) (map[string]any, error) {
	if original, ok := record["original_size"].(map[string]any); ok {
		return original, nil
	}

	alternates, _ := record["alt_sizes"].([]any)
	var best map[string]any
	bestWidth := int64(-1)
	for _, entry := range alternates {
		size, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		width, _ := intValue(size["width"])
		if width > bestWidth {
			best = size
			bestWidth = width
		}
	}

	if best == nil {
		return nil, ambiguousSizeError(index)
	}
	return best, nil
}
