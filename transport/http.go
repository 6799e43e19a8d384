package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultMaxResponseBytes caps how much of a response body is read.
const DefaultMaxResponseBytes = 10 << 20

// ErrResponseTooLarge is returned when a body exceeds the configured cap.
var ErrResponseTooLarge = errors.New("response body too large")

// HTTPTransport implements Transport on top of net/http.
type HTTPTransport struct {
	httpClient       *http.Client
	maxResponseBytes int64
}

var _ Transport = (*HTTPTransport)(nil)

// New creates an HTTPTransport. A nil client uses a fresh http.Client with a 30
// second timeout.
func New(httpClient *http.Client) *HTTPTransport {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPTransport{
		httpClient:       httpClient,
		maxResponseBytes: DefaultMaxResponseBytes,
	}
}

// SetMaxResponseBytes changes the body size cap. Values <= 0 restore the default.
func (t *HTTPTransport) SetMaxResponseBytes(n int64) {
	if n <= 0 {
		n = DefaultMaxResponseBytes
	}
	t.maxResponseBytes = n
}

// Get issues a GET request.
func (t *HTTPTransport) Get(ctx context.Context, rawURL string, headers http.Header, timeout time.Duration) (*Response, error) {
	return t.do(ctx, http.MethodGet, rawURL, nil, headers, timeout)
}

// Post issues a POST request with data form encoded. A Content-Type supplied in
// headers is kept.
func (t *HTTPTransport) Post(ctx context.Context, rawURL string, data url.Values, headers http.Header, timeout time.Duration) (*Response, error) {
	h := headers.Clone()
	if h == nil {
		h = make(http.Header)
	}
	if h.Get("Content-Type") == "" {
		h.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	return t.do(ctx, http.MethodPost, rawURL, strings.NewReader(data.Encode()), h, timeout)
}

func (t *HTTPTransport) do(ctx context.Context, method, rawURL string, body io.Reader, headers http.Header, timeout time.Duration) (*Response, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, fmt.Errorf("[transport %s] failed to create request: %w", method, err)
	}
	for key, values := range headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("[transport %s] failed to send request: %w", method, err)
	}
	defer resp.Body.Close()

	// Read one byte past the cap to detect truncation.
	data, err := io.ReadAll(io.LimitReader(resp.Body, t.maxResponseBytes+1))
	if err != nil {
		return nil, fmt.Errorf("[transport %s] failed to read response body: %w", method, err)
	}
	if int64(len(data)) > t.maxResponseBytes {
		return nil, fmt.Errorf("[transport %s] %w: limit %d bytes", method, ErrResponseTooLarge, t.maxResponseBytes)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
	}, nil
}
