package client

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/jrsteele09/go-oauth2-client/oauth2"
)

// CreateURL builds the authorize URL the user is redirected to. Parameters are
// emitted in a fixed order: response_type, client_id, redirect_uri, scope, state,
// then the requestparams in configured order. Optional ones appear only when set.
// Spaces encode as "+".
func (c *Client) CreateURL() (string, error) {
	if c.opts.AuthURL == "" {
		return "", fmt.Errorf("[client CreateURL] %w: %s", ErrOptionNotFound, OptAuthURL)
	}

	var q queryBuilder
	q.add(oauth2.ParamResponseType, string(oauth2.CodeResponseType))
	q.add(oauth2.ParamClientID, c.opts.ClientID)
	if c.opts.RedirectURI != "" {
		q.add(oauth2.ParamRedirectURI, c.opts.RedirectURI)
	}
	if len(c.opts.Scope) > 0 {
		q.add(oauth2.ParamScope, strings.Join(c.opts.Scope, " "))
	}
	if c.opts.State != "" {
		q.add(oauth2.ParamState, c.opts.State)
	}
	for _, p := range c.opts.RequestParams {
		q.add(p.Key, p.Value)
	}

	sep := "?"
	if strings.Contains(c.opts.AuthURL, "?") {
		sep = "&"
	}
	return c.opts.AuthURL + sep + q.String(), nil
}

// queryBuilder encodes key/value pairs in insertion order, unlike url.Values.Encode
// which sorts by key.
type queryBuilder struct {
	sb strings.Builder
}

func (q *queryBuilder) add(key, value string) {
	if q.sb.Len() > 0 {
		q.sb.WriteByte('&')
	}
	q.sb.WriteString(url.QueryEscape(key))
	q.sb.WriteByte('=')
	q.sb.WriteString(url.QueryEscape(value))
}

func (q *queryBuilder) String() string {
	return q.sb.String()
}
