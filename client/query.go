package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/jrsteele09/go-oauth2-client/oauth2"
	"github.com/jrsteele09/go-oauth2-client/transport"
	"github.com/rs/zerolog/log"
)

// Query calls a protected API with the access token attached.
//
// ok is false when the client holds no usable token and could not refresh one; no
// request is made in that case and err is nil. Otherwise the transport response is
// returned unmodified, whatever its status, and transport errors are passed through.
//
// method overrides the authmethod option; "" defers to it. With authmethod "get" or
// "post" the token travels as the access_token query parameter or form field, with
// "bearer" it goes in the Authorization header.
func (c *Client) Query(ctx context.Context, rawURL string, data url.Values, headers http.Header, method string) (*transport.Response, bool, error) {
	if !c.IsAuthenticated() {
		if !c.canRefresh() {
			log.Debug().Str("url", rawURL).Msg("Query skipped: not authenticated")
			return nil, false, nil
		}
		if _, err := c.RefreshToken(ctx, nil); err != nil {
			log.Debug().Err(err).Str("url", rawURL).Msg("Query skipped: refresh failed")
			return nil, false, nil
		}
	}

	verb := c.resolveMethod(method)
	authMethod := c.opts.Method()

	h := headers.Clone()
	if h == nil {
		h = make(http.Header)
	}
	params := cloneValues(data)
	if authMethod == oauth2.AuthMethodBearer {
		h.Set("Authorization", "Bearer "+c.token.AccessToken)
	} else {
		params.Set(oauth2.ParamAccessToken, c.token.AccessToken)
	}

	log.Debug().Str("method", verb).Str("url", rawURL).Str("auth_method", string(authMethod)).Msg("Dispatching query")

	switch verb {
	case http.MethodGet:
		target, err := appendQuery(rawURL, params)
		if err != nil {
			return nil, true, err
		}
		resp, err := c.transport.Get(ctx, target, h, c.opts.CallTimeout())
		return resp, true, err
	case http.MethodPost:
		resp, err := c.transport.Post(ctx, rawURL, params, h, c.opts.CallTimeout())
		return resp, true, err
	default:
		return nil, true, fmt.Errorf("%w: %s", ErrUnsupportedMethod, verb)
	}
}

func (c *Client) resolveMethod(method string) string {
	if method != "" {
		return strings.ToUpper(method)
	}
	if c.opts.Method() == oauth2.AuthMethodPost {
		return http.MethodPost
	}
	return http.MethodGet
}

// appendQuery merges params into the query of rawURL, keeping parameters already there.
func appendQuery(rawURL string, params url.Values) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("[client Query] invalid url %q: %w", rawURL, err)
	}
	q := u.Query()
	for k, vs := range params {
		q[k] = vs
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v)+1)
	for k, vs := range v {
		out[k] = append([]string(nil), vs...)
	}
	return out
}
