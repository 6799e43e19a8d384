// Package fake provides a scripted in-memory Transport for tests.
package fake

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/jrsteele09/go-oauth2-client/transport"
)

// ErrNoResponse is returned when a call arrives and no handler is scripted.
var ErrNoResponse = errors.New("fake transport: no response scripted")

var _ transport.Transport = (*Transport)(nil)

// Call records one request made through the fake.
type Call struct {
	Method  string
	URL     string
	Data    url.Values
	Header  http.Header
	Timeout time.Duration
}

// HandlerFunc produces the response for a call.
type HandlerFunc func(Call) (*transport.Response, error)

// Transport records every call and answers it with the scripted handler.
type Transport struct {
	handler HandlerFunc
	calls   []Call
	lock    sync.RWMutex
}

// New creates a fake answering every call with handler. A nil handler fails every call.
func New(handler HandlerFunc) *Transport {
	return &Transport{handler: handler}
}

// Respond answers with a fixed status, Content-Type and body.
func Respond(status int, contentType, body string) HandlerFunc {
	return func(Call) (*transport.Response, error) {
		h := make(http.Header)
		if contentType != "" {
			h.Set("Content-Type", contentType)
		}
		return &transport.Response{StatusCode: status, Header: h, Body: []byte(body)}, nil
	}
}

// Fail answers every call with err.
func Fail(err error) HandlerFunc {
	return func(Call) (*transport.Response, error) {
		return nil, err
	}
}

// SetHandler replaces the scripted handler.
func (t *Transport) SetHandler(handler HandlerFunc) {
	t.lock.Lock()
	defer t.lock.Unlock()
	t.handler = handler
}

func (t *Transport) Get(_ context.Context, rawURL string, headers http.Header, timeout time.Duration) (*transport.Response, error) {
	return t.record(Call{Method: http.MethodGet, URL: rawURL, Header: headers.Clone(), Timeout: timeout})
}

func (t *Transport) Post(_ context.Context, rawURL string, data url.Values, headers http.Header, timeout time.Duration) (*transport.Response, error) {
	var cp url.Values
	if data != nil {
		cp = make(url.Values, len(data))
		for k, v := range data {
			cp[k] = append([]string(nil), v...)
		}
	}
	return t.record(Call{Method: http.MethodPost, URL: rawURL, Data: cp, Header: headers.Clone(), Timeout: timeout})
}

// Calls returns every call made so far, oldest first.
func (t *Transport) Calls() []Call {
	t.lock.RLock()
	defer t.lock.RUnlock()
	return append([]Call(nil), t.calls...)
}

// LastCall returns the most recent call. ok is false when none was made.
func (t *Transport) LastCall() (Call, bool) {
	t.lock.RLock()
	defer t.lock.RUnlock()
	if len(t.calls) == 0 {
		return Call{}, false
	}
	return t.calls[len(t.calls)-1], true
}

func (t *Transport) record(c Call) (*transport.Response, error) {
	t.lock.Lock()
	t.calls = append(t.calls, c)
	handler := t.handler
	t.lock.Unlock()

	if handler == nil {
		return nil, ErrNoResponse
	}
	return handler(c)
}
