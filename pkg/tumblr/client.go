package tumblr

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"tumdlr/pkg/logger"
)

// ErrorType classifies Tumblr API failures.
type ErrorType string

const (
	ErrorTypeNetwork     ErrorType = "network"
	ErrorTypeRateLimit   ErrorType = "rate_limit"
	ErrorTypeAuth        ErrorType = "auth"
	ErrorTypeParsing     ErrorType = "parsing"
	ErrorTypeNotFound    ErrorType = "not_found"
	ErrorTypeServerError ErrorType = "server_error"
	ErrorTypeUnknown     ErrorType = "unknown"
)

// Error represents a Tumblr API error.
type Error struct {
	Type    ErrorType
	Message string
	Code    int
}

func (e *Error) Error() string {
	return fmt.Sprintf("tumblr %s error (code %d): %s", e.Type, e.Code, e.Message)
}

// Client is a Tumblr v2 API client.
type Client struct {
	httpClient *http.Client
	headers    map[string]string
	apiKey     string
	baseURL    string
	logger     logger.Logger
}

// NewClient creates a new Tumblr API client. An API key is required
// for the posts endpoint; media downloads go straight to the CDN.
func NewClient(timeout time.Duration, apiKey string, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		headers: map[string]string{
			"User-Agent": "tumdlr/1.0",
			"Accept":     "application/json, */*;q=0.8",
		},
		apiKey:  apiKey,
		baseURL: BaseURL,
		logger:  log,
	}
}

// SetHeader sets a custom header for the client.
func (c *Client) SetHeader(key, value string) {
	c.headers[key] = value
}

// SetBaseURL overrides the API base URL. Tests point it at a local server.
func (c *Client) SetBaseURL(baseURL string) {
	c.baseURL = baseURL
}

// doRequest performs an HTTP request with the configured headers.
func (c *Client) doRequest(req *http.Request) (*http.Response, error) {
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	c.logger.DebugWithFields("sending HTTP request", map[string]interface{}{
		"method": req.Method,
		"url":    req.URL.String(),
	})

	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"method":   req.Method,
			"url":      req.URL.String(),
			"error":    err.Error(),
			"duration": duration,
		})
		return nil, &Error{
			Type:    ErrorTypeNetwork,
			Message: fmt.Sprintf("network error: %v", err),
			Code:    0,
		}
	}

	c.logger.DebugWithFields("HTTP request completed", map[string]interface{}{
		"method":   req.Method,
		"url":      req.URL.String(),
		"status":   resp.StatusCode,
		"duration": duration,
	})

	return resp, nil
}

// Get performs a GET request to the specified URL.
func (c *Client) Get(url string) (*http.Response, error) {
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, &Error{
			Type:    ErrorTypeUnknown,
			Message: fmt.Sprintf("failed to create request: %v", err),
			Code:    0,
		}
	}

	return c.doRequest(req)
}

// GetJSON performs a GET request and decodes the JSON response.
// Numbers decode as json.Number so that post ids beyond 2^53 survive
// the trip through map[string]any intact.
func (c *Client) GetJSON(url string, target interface{}) error {
	resp, err := c.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkResponseStatus(resp); err != nil {
		return err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{
			Type:    ErrorTypeNetwork,
			Message: fmt.Sprintf("failed to read response body: %v", err),
			Code:    resp.StatusCode,
		}
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(target); err != nil {
		bodyPreview := string(body)
		if len(bodyPreview) > 200 {
			bodyPreview = bodyPreview[:200] + "..."
		}

		c.logger.ErrorWithFields("failed to parse JSON response", map[string]interface{}{
			"url":          url,
			"status":       resp.StatusCode,
			"error":        err.Error(),
			"body_preview": bodyPreview,
		})
		return &Error{
			Type:    ErrorTypeParsing,
			Message: fmt.Sprintf("failed to parse JSON: %v", err),
			Code:    resp.StatusCode,
		}
	}

	return nil
}

// checkResponseStatus maps HTTP status codes onto error types.
func (c *Client) checkResponseStatus(resp *http.Response) error {
	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusUnauthorized, http.StatusForbidden:
		c.logger.WarnWithFields("request rejected", map[string]interface{}{
			"status": resp.StatusCode,
			"url":    resp.Request.URL.String(),
		})
		return &Error{
			Type:    ErrorTypeAuth,
			Message: "api key rejected",
			Code:    resp.StatusCode,
		}
	case http.StatusNotFound:
		c.logger.WarnWithFields("resource not found", map[string]interface{}{
			"status": resp.StatusCode,
			"url":    resp.Request.URL.String(),
		})
		return &Error{
			Type:    ErrorTypeNotFound,
			Message: "resource not found",
			Code:    resp.StatusCode,
		}
	case http.StatusTooManyRequests:
		c.logger.WarnWithFields("rate limit exceeded", map[string]interface{}{
			"status": resp.StatusCode,
			"url":    resp.Request.URL.String(),
		})
		return &Error{
			Type:    ErrorTypeRateLimit,
			Message: "rate limit exceeded",
			Code:    resp.StatusCode,
		}
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable:
		c.logger.ErrorWithFields("server error", map[string]interface{}{
			"status": resp.StatusCode,
			"url":    resp.Request.URL.String(),
		})
		return &Error{
			Type:    ErrorTypeServerError,
			Message: "server error",
			Code:    resp.StatusCode,
		}
	default:
		if resp.StatusCode >= 400 {
			return &Error{
				Type:    ErrorTypeUnknown,
				Message: fmt.Sprintf("unexpected status code: %d", resp.StatusCode),
				Code:    resp.StatusCode,
			}
		}
		return nil
	}
}

// FetchPosts fetches one page of a blog's posts.
func (c *Client) FetchPosts(blog string, offset, limit int) (*PostsPage, error) {
	url := GetPostsURL(c.baseURL, blog, c.apiKey, offset, limit)

	c.logger.DebugWithFields("fetching blog posts", map[string]interface{}{
		"blog":   blog,
		"offset": offset,
		"limit":  limit,
	})

	var response PostsResponse
	if err := c.GetJSON(url, &response); err != nil {
		c.logger.ErrorWithFields("failed to fetch blog posts", map[string]interface{}{
			"blog":   blog,
			"offset": offset,
			"error":  err.Error(),
		})
		return nil, err
	}

	// The envelope can report an error even on HTTP 200.
	if response.Meta.Status != 0 && response.Meta.Status != http.StatusOK {
		return nil, &Error{
			Type:    ErrorTypeUnknown,
			Message: fmt.Sprintf("api reported %q", response.Meta.Msg),
			Code:    response.Meta.Status,
		}
	}

	c.logger.DebugWithFields("fetched blog posts", map[string]interface{}{
		"blog":        blog,
		"post_count":  len(response.Response.Posts),
		"total_posts": response.Response.TotalPosts,
	})

	return &response.Response, nil
}

// DownloadFile downloads a media file from the given URL.
func (c *Client) DownloadFile(fileURL string) ([]byte, error) {
	c.logger.DebugWithFields("downloading file", map[string]interface{}{
		"url": fileURL,
	})

	resp, err := c.Get(fileURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := c.checkResponseStatus(resp); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{
			Type:    ErrorTypeNetwork,
			Message: fmt.Sprintf("failed to download file: %v", err),
			Code:    0,
		}
	}

	c.logger.DebugWithFields("downloaded file", map[string]interface{}{
		"url":  fileURL,
		"size": len(data),
	})

	return data, nil
}
