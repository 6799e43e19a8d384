package client_test

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"testing"

	"github.com/jrsteele09/go-oauth2-client/client"
	"github.com/jrsteele09/go-oauth2-client/internal/utils"
	"github.com/jrsteele09/go-oauth2-client/oauth2"
	"github.com/jrsteele09/go-oauth2-client/token"
	"github.com/jrsteele09/go-oauth2-client/transport/fake"
	"github.com/stretchr/testify/require"
)

func apiOK() fake.HandlerFunc {
	return fake.Respond(http.StatusOK, "text/plain", apiBody)
}

func validToken() token.Token {
	return token.Token{AccessToken: "accessvalue", RefreshToken: "refreshvalue", Created: fixedNow.Unix(), ExpiresIn: 3600}
}

func expiredToken(refresh string) token.Token {
	return token.Token{AccessToken: "stale", RefreshToken: refresh, Created: fixedNow.Unix() - 4000, ExpiresIn: 3600}
}

func TestQuery(t *testing.T) {
	pinClock(t)
	ctx := context.Background()

	t.Run("expired without refresh token", func(t *testing.T) {
		tr := fake.New(apiOK())
		c := client.New(testOptions(), tr, nil, nil)
		c.SetToken(expiredToken(""))

		resp, ok, err := c.Query(ctx, testAPIURL, url.Values{"param": {"value"}}, nil, "")
		require.NoError(t, err)
		require.False(t, ok)
		require.Nil(t, resp)
		require.Empty(t, tr.Calls())
	})

	t.Run("no token at all", func(t *testing.T) {
		tr := fake.New(apiOK())
		c := client.New(testOptions(), tr, nil, nil)

		_, ok, err := c.Query(ctx, testAPIURL, nil, nil, "")
		require.NoError(t, err)
		require.False(t, ok)
		require.Empty(t, tr.Calls())
	})

	t.Run("expired with refresh disabled", func(t *testing.T) {
		opts := testOptions()
		opts.UseRefresh = utils.Ptr(false)
		tr := fake.New(apiOK())
		c := client.New(opts, tr, nil, nil)
		c.SetToken(expiredToken("refreshvalue"))

		_, ok, err := c.Query(ctx, testAPIURL, nil, nil, "")
		require.NoError(t, err)
		require.False(t, ok)
		require.Empty(t, tr.Calls())
	})

	t.Run("expired and refresh fails", func(t *testing.T) {
		tr := fake.New(routes(fake.Fail(errors.New("down")), apiOK()))
		c := client.New(testOptions(), tr, nil, nil)
		c.SetToken(expiredToken("refreshvalue"))

		_, ok, err := c.Query(ctx, testAPIURL, nil, nil, "")
		require.NoError(t, err)
		require.False(t, ok)
		calls := tr.Calls()
		require.Len(t, calls, 1)
		require.Equal(t, testTokenURL, calls[0].URL)
	})

	t.Run("expired token is refreshed first", func(t *testing.T) {
		tr := fake.New(routes(fake.Respond(http.StatusOK, "application/json", `{"access_token":"fresh","expires_in":3600}`), apiOK()))
		c := client.New(testOptions(), tr, nil, nil)
		c.SetToken(expiredToken("refreshvalue"))

		resp, ok, err := c.Query(ctx, testAPIURL, nil, nil, "")
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, apiBody, string(resp.Body))

		calls := tr.Calls()
		require.Len(t, calls, 2)
		require.Equal(t, testTokenURL, calls[0].URL)
		u, err := url.Parse(calls[1].URL)
		require.NoError(t, err)
		require.Equal(t, "fresh", u.Query().Get("access_token"))
		require.Equal(t, "refreshvalue", c.Token().RefreshToken)
	})

	t.Run("post sends token in body", func(t *testing.T) {
		tr := fake.New(apiOK())
		c := client.New(testOptions(), tr, nil, nil)
		c.SetToken(validToken())

		resp, ok, err := c.Query(ctx, testAPIURL, url.Values{"param": {"value"}}, http.Header{"X-Test": {"1"}}, "post")
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, apiBody, string(resp.Body))

		call, _ := tr.LastCall()
		require.Equal(t, http.MethodPost, call.Method)
		require.Equal(t, testAPIURL, call.URL)
		require.Equal(t, url.Values{"param": {"value"}, "access_token": {"accessvalue"}}, call.Data)
		require.Equal(t, "1", call.Header.Get("X-Test"))
		require.Empty(t, call.Header.Get("Authorization"))
	})

	t.Run("get sends token in query and keeps existing params", func(t *testing.T) {
		tr := fake.New(apiOK())
		c := client.New(testOptions(), tr, nil, nil)
		c.SetToken(validToken())

		_, ok, err := c.Query(ctx, testAPIURL+"?existing=1", url.Values{"param": {"value"}}, nil, "")
		require.NoError(t, err)
		require.True(t, ok)

		call, _ := tr.LastCall()
		require.Equal(t, http.MethodGet, call.Method)
		u, err := url.Parse(call.URL)
		require.NoError(t, err)
		require.Equal(t, "/calendar", u.Path)
		require.Equal(t, url.Values{
			"existing":     {"1"},
			"param":        {"value"},
			"access_token": {"accessvalue"},
		}, u.Query())
	})

	t.Run("bearer puts token in header", func(t *testing.T) {
		opts := testOptions()
		opts.AuthMethod = oauth2.AuthMethodBearer
		tr := fake.New(apiOK())
		c := client.New(opts, tr, nil, nil)
		c.SetToken(validToken())

		_, ok, err := c.Query(ctx, testAPIURL, url.Values{"param": {"value"}}, nil, "GET")
		require.NoError(t, err)
		require.True(t, ok)

		call, _ := tr.LastCall()
		require.Equal(t, "Bearer accessvalue", call.Header.Get("Authorization"))
		u, _ := url.Parse(call.URL)
		require.Empty(t, u.Query().Get("access_token"))
		require.Equal(t, "value", u.Query().Get("param"))
	})

	t.Run("authmethod post selects POST when no method given", func(t *testing.T) {
		opts := testOptions()
		opts.AuthMethod = oauth2.AuthMethodPost
		tr := fake.New(apiOK())
		c := client.New(opts, tr, nil, nil)
		c.SetToken(validToken())

		_, ok, err := c.Query(ctx, testAPIURL, nil, nil, "")
		require.NoError(t, err)
		require.True(t, ok)
		call, _ := tr.LastCall()
		require.Equal(t, http.MethodPost, call.Method)
		require.Equal(t, "accessvalue", call.Data.Get("access_token"))
	})

	t.Run("caller data and headers are not modified", func(t *testing.T) {
		tr := fake.New(apiOK())
		opts := testOptions()
		opts.AuthMethod = oauth2.AuthMethodBearer
		c := client.New(opts, tr, nil, nil)
		c.SetToken(validToken())

		data := url.Values{"param": {"value"}}
		headers := http.Header{}
		_, _, err := c.Query(ctx, testAPIURL, data, headers, "post")
		require.NoError(t, err)
		require.Equal(t, url.Values{"param": {"value"}}, data)
		require.Empty(t, headers)
	})

	t.Run("non-2xx responses are returned as is", func(t *testing.T) {
		tr := fake.New(fake.Respond(http.StatusForbidden, "text/plain", "nope"))
		c := client.New(testOptions(), tr, nil, nil)
		c.SetToken(validToken())

		resp, ok, err := c.Query(ctx, testAPIURL, nil, nil, "")
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("transport error", func(t *testing.T) {
		cause := errors.New("reset by peer")
		tr := fake.New(fake.Fail(cause))
		c := client.New(testOptions(), tr, nil, nil)
		c.SetToken(validToken())

		_, ok, err := c.Query(ctx, testAPIURL, nil, nil, "post")
		require.ErrorIs(t, err, cause)
		require.True(t, ok)
	})

	t.Run("unsupported method", func(t *testing.T) {
		tr := fake.New(apiOK())
		c := client.New(testOptions(), tr, nil, nil)
		c.SetToken(validToken())

		_, ok, err := c.Query(ctx, testAPIURL, nil, nil, "put")
		require.ErrorIs(t, err, client.ErrUnsupportedMethod)
		require.True(t, ok)
		require.Empty(t, tr.Calls())
	})

	t.Run("timeout option reaches transport", func(t *testing.T) {
		tr := fake.New(apiOK())
		c := client.New(testOptions(), tr, nil, nil)
		c.SetOption(client.OptTimeout, "5s")
		c.SetToken(validToken())

		_, _, err := c.Query(ctx, testAPIURL, nil, nil, "")
		require.NoError(t, err)
		call, _ := tr.LastCall()
		require.Equal(t, "5s", call.Timeout.String())
	})
}

func TestTokenSource(t *testing.T) {
	pinClock(t)
	ctx := context.Background()

	t.Run("valid token", func(t *testing.T) {
		tr := fake.New(nil)
		c := client.New(testOptions(), tr, nil, nil)
		c.SetToken(validToken())

		tok, err := c.TokenSource(ctx).Token()
		require.NoError(t, err)
		require.Equal(t, "accessvalue", tok.AccessToken)
		require.Equal(t, "refreshvalue", tok.RefreshToken)
		require.Equal(t, fixedNow.Unix()+3600, tok.Expiry.Unix())
		require.Empty(t, tr.Calls())
	})

	t.Run("expired token is refreshed", func(t *testing.T) {
		tr := fake.New(fake.Respond(http.StatusOK, "application/json", `{"access_token":"fresh","expires_in":60}`))
		c := client.New(testOptions(), tr, nil, nil)
		c.SetToken(expiredToken("refreshvalue"))

		tok, err := c.TokenSource(ctx).Token()
		require.NoError(t, err)
		require.Equal(t, "fresh", tok.AccessToken)
		require.Equal(t, "fresh", c.Token().AccessToken)
		require.Len(t, tr.Calls(), 1)
	})

	t.Run("nothing to refresh", func(t *testing.T) {
		c := client.New(testOptions(), fake.New(nil), nil, nil)
		c.SetToken(expiredToken(""))

		_, err := c.TokenSource(ctx).Token()
		require.ErrorIs(t, err, client.ErrNotAuthenticated)
	})

	t.Run("refresh failure", func(t *testing.T) {
		c := client.New(testOptions(), fake.New(fake.Fail(errors.New("down"))), nil, nil)
		c.SetToken(expiredToken("refreshvalue"))

		_, err := c.TokenSource(ctx).Token()
		require.ErrorIs(t, err, client.ErrTokenExchange)
	})
}
