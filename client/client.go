// Package client implements an OAuth2 authorization-code client: it builds the
// authorize URL, exchanges the returned code for a token, refreshes that token when it
// expires and presents it on outbound API calls.
//
// A Client holds exactly one token and is not safe for concurrent use. Callers that
// share an instance must serialise access themselves.
package client

import (
	"fmt"

	"github.com/jrsteele09/go-oauth2-client/token"
	"github.com/jrsteele09/go-oauth2-client/transport"
	"github.com/rs/zerolog/log"
)

// Client is an OAuth2 client bound to one authorization server and one token.
type Client struct {
	opts       Options
	token      token.Token
	transport  transport.Transport
	input      Input
	redirector Redirector
}

// New creates a Client. A nil transport uses transport.New(nil). input supplies the
// authorization code on the redirect callback and may be nil when only stored tokens
// are used. redirector is optional; when nil, failed exchanges only return an error.
func New(opts Options, tr transport.Transport, input Input, redirector Redirector) *Client {
	if tr == nil {
		tr = transport.New(nil)
	}
	return &Client{
		opts:       opts.clone(),
		transport:  tr,
		input:      input,
		redirector: redirector,
	}
}

// GetOption returns the value stored under key, or ErrOptionNotFound. A string or
// list option counts as stored once it is non-empty or has been set explicitly,
// even to "". authmethod, userefresh, timeout and sendheaders always report their
// resolved value.
func (c *Client) GetOption(key string) (any, error) {
	v, ok := c.opts.get(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrOptionNotFound, key)
	}
	return v, nil
}

// SetOption stores value under key, overwriting any previous value. Values for the
// well-known keys are converted leniently ("true", "30s", "read write"); a value that
// cannot be converted is logged and dropped.
func (c *Client) SetOption(key string, value any) {
	if err := c.opts.set(key, value); err != nil {
		logIgnoredOption(key, err)
	}
}

// Options returns a copy of the current configuration.
func (c *Client) Options() Options {
	return c.opts.clone()
}

// Token returns a copy of the stored token. Callers own persisting it.
func (c *Client) Token() token.Token {
	return c.token.Clone()
}

// SetToken installs t, replacing the stored token wholesale. Created is stamped when
// missing and a raw Expires value is renamed to ExpiresIn.
func (c *Client) SetToken(t token.Token) {
	c.token = token.Normalize(t.Clone())
}

// IsAuthenticated reports whether the stored token has an access token that has not
// expired. Tokens without expiry data never expire.
func (c *Client) IsAuthenticated() bool {
	return c.token.Valid()
}

// canRefresh reports whether an automatic refresh may be attempted.
func (c *Client) canRefresh() bool {
	return c.opts.RefreshEnabled() && c.token.RefreshToken != ""
}

// redirectToLogin sends the user agent back to the authorize URL after a failed
// exchange. It is best effort: failures are logged, never returned.
func (c *Client) redirectToLogin() {
	if c.redirector == nil {
		return
	}
	loginURL, err := c.CreateURL()
	if err != nil {
		log.Warn().Err(err).Msg("Cannot build login URL for redirect")
		return
	}
	if err := c.redirector.Redirect(loginURL); err != nil {
		log.Warn().Err(err).Msg("Login redirect failed")
	}
}
