package tumblr

// Meta is the status envelope every v2 API response carries.
type Meta struct {
	Status int    `json:"status"`
	Msg    string `json:"msg"`
}

// BlogInfo describes the blog a posts page belongs to.
type BlogInfo struct {
	Name        string `json:"name"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Posts       int    `json:"posts"`
	Updated     int64  `json:"updated"`
}

// PostsResponse is the envelope of the posts endpoint.
type PostsResponse struct {
	Meta     Meta      `json:"meta"`
	Response PostsPage `json:"response"`
}

// PostsPage is one page of a blog's posts. Posts stay heterogeneous
// mappings: the payload shape depends on the post type, and package
// post owns the decision of what to extract.
type PostsPage struct {
	Blog       BlogInfo         `json:"blog"`
	Posts      []map[string]any `json:"posts"`
	TotalPosts int              `json:"total_posts"`
}
