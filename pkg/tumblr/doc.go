// Package tumblr provides a typed client for the Tumblr v2 API.
//
// The client fetches blog post pages and downloads media files. Posts
// are returned as raw key-value mappings (the payload shape varies per
// post type); package post turns them into typed entities. All errors
// carry an ErrorType so callers can distinguish network failures,
// rate limiting, missing blogs and malformed payloads.
//
// Example:
//
//	client := tumblr.NewClient(30*time.Second, "api-key", nil)
//	page, err := client.FetchPosts("staff", 0, 20)
//	if err != nil {
//		// handle error
//	}
//	for _, raw := range page.Posts {
//		// parse with package post
//	}
package tumblr
