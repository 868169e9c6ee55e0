package tumblr

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	// BaseURL is the base URL for the Tumblr v2 API.
	BaseURL = "https://api.tumblr.com/v2"

	// PostsEndpoint is the endpoint pattern for a blog's posts.
	PostsEndpoint = "/blog/%s/posts"

	// DefaultPostLimit is the default number of posts fetched per page.
	DefaultPostLimit = 20

	// MaxPostLimit is the largest page size the API accepts.
	MaxPostLimit = 20
)

// BlogHost expands a short blog name to its canonical API host. Names
// that already contain a dot are taken as custom domains and passed
// through unchanged.
func BlogHost(name string) string {
	if strings.Contains(name, ".") {
		return name
	}
	return name + ".tumblr.com"
}

// GetPostsURL constructs the URL for one page of a blog's posts.
func GetPostsURL(baseURL, blog, apiKey string, offset, limit int) string {
	if limit <= 0 || limit > MaxPostLimit {
		limit = DefaultPostLimit
	}
	if offset < 0 {
		offset = 0
	}

	params := url.Values{}
	params.Set("api_key", apiKey)
	params.Set("offset", fmt.Sprintf("%d", offset))
	params.Set("limit", fmt.Sprintf("%d", limit))

	endpoint := fmt.Sprintf(PostsEndpoint, BlogHost(blog))
	return fmt.Sprintf("%s%s?%s", baseURL, endpoint, params.Encode())
}
