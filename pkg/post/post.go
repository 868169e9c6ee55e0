package post

import (
	"encoding/json"
	"net/url"
	"strconv"
)

// Blog identifies the blog a post was fetched from. The display name
// feeds the categorize-by-user path segment; everything else about the
// blog belongs to the API client.
type Blog struct {
	Name string
}

// Post holds the fields every Tumblr post type carries. It is built
// once from an immutable response snapshot and never mutated after
// construction.
type Post struct {
	ID   int64
	Type string
	// URL is the public post URL, or nil when the payload carried no
	// post_url key. A present-but-empty value parses to a non-nil URL.
	URL  *url.URL
	Tags map[string]struct{}
	// Date is the opaque timestamp string from the API, kept verbatim.
	Date string
	// NoteCount is nil when the payload carried no note_count key.
	NoteCount *int64

	// Blog is a non-owning back-reference to the blog that supplied
	// this post.
	Blog Blog
}

// Parse builds a Post from one raw API response mapping. The id, type
// and date keys are mandatory; a missing one fails the parse with a
// missing_field error. Tags default to an empty set and note_count to
// absent.
func Parse(raw map[string]any, blog Blog) (*Post, error) {
	p := &Post{
		Tags: make(map[string]struct{}),
		Blog: blog,
	}

	id, ok := intValue(raw["id"])
	if !ok {
		return nil, missingFieldError("id")
	}
	p.ID = id

	typ, ok := stringValue(raw["type"])
	if !ok {
		return nil, missingFieldError("type")
	}
	p.Type = typ

	date, ok := stringValue(raw["date"])
	if !ok {
		return nil, missingFieldError("date")
	}
	p.Date = date

	if s, ok := stringValue(raw["post_url"]); ok {
		if u, err := url.Parse(s); err == nil {
			p.URL = u
		}
	}

	if tags, ok := raw["tags"].([]any); ok {
		for _, tag := range tags {
			if s, ok := stringValue(tag); ok {
				p.Tags[s] = struct{}{}
			}
		}
	}

	if n, ok := intValue(raw["note_count"]); ok {
		p.NoteCount = &n
	}

	return p, nil
}

// IsText reports whether this is a text post.
func (p *Post) IsText() bool {
	return p.Type == "text"
}

// IsPhoto reports whether this post carries downloadable photos.
// Link posts share the photo payload shape.
func (p *Post) IsPhoto() bool {
	return p.Type == "photo" || p.Type == "link"
}

// IsVideo reports whether this is a video post.
func (p *Post) IsVideo() bool {
	return p.Type == "video"
}

func (p *Post) String() string {
	if p.URL == nil {
		return ""
	}
	return p.URL.String()
}

// intValue extracts an integer from a decoded JSON value. The API
// switches between numeric and string ids across responses, so both
// forms are accepted.
func intValue(v any) (int64, bool) {
	switch n := v.(type) {
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	case float64:
		return int64(n), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	case string:
		i, err := strconv.ParseInt(n, 10, 64)
		return i, err == nil
	default:
		return 0, false
	}
}

func stringValue(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}
