// Package transport is the HTTP collaborator the OAuth2 client delegates all network
// I/O to. It never retries; the caller decides what a failure means.
package transport

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

// Transport executes GET and POST requests. timeout bounds the whole call; zero means
// no per-call limit beyond the context.
type Transport interface {
	Get(ctx context.Context, url string, headers http.Header, timeout time.Duration) (*Response, error)
	Post(ctx context.Context, url string, data url.Values, headers http.Header, timeout time.Duration) (*Response, error)
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// ContentType returns the Content-Type header, or "" when unset.
func (r *Response) ContentType() string {
	if r == nil || r.Header == nil {
		return ""
	}
	return r.Header.Get("Content-Type")
}

// Success reports a 2xx status.
func (r *Response) Success() bool {
	return r != nil && r.StatusCode >= 200 && r.StatusCode < 300
}
