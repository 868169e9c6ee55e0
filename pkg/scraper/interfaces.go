package scraper

import "tumdlr/pkg/tumblr"

// TumblrClient defines the interface for Tumblr API operations
type TumblrClient interface {
	FetchPosts(blog string, offset, limit int) (*tumblr.PostsPage, error)
	DownloadFile(url string) ([]byte, error)
}
