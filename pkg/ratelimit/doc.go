// Package ratelimit provides rate limiting for Tumblr API requests and
// media downloads.
//
// Two implementations of the Limiter interface are available. The token
// bucket allows a fixed number of operations per refill period and
// suits bursty media downloads. The sliding window tracks individual
// request times within a moving window and gives a smoother cap on API
// pagination, matching a requests-per-minute budget exactly.
//
// Usage:
//
//	// Sliding window: 60 API requests per minute
//	api := ratelimit.NewSlidingWindow(60, time.Minute)
//	api.Wait()
//	// proceed with request
//
//	// Token bucket: 100 downloads per minute
//	dl := ratelimit.NewTokenBucket(100, time.Minute)
//	if !dl.Allow() {
//	    dl.Wait()
//	}
package ratelimit
