package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/jrsteele09/go-oauth2-client/internal/errors"
	"github.com/jrsteele09/go-oauth2-client/oauth2"
	"github.com/jrsteele09/go-oauth2-client/token"
	"github.com/rs/zerolog/log"
)

// Authenticate exchanges the authorization code found in the request input for a
// token, installs it and returns it.
//
// When the input carries no code the current token is returned unchanged and no
// error is raised; with the sendheaders option and a Redirector the user agent is
// first sent to the authorize URL. A failed exchange returns ErrTokenExchange after
// a best-effort redirect back to the authorize URL.
func (c *Client) Authenticate(ctx context.Context) (token.Token, error) {
	var code string
	if c.input != nil {
		code = c.input.Get(oauth2.ParamCode, "")
	}

	if code == "" {
		if c.opts.SendHeaders && c.redirector != nil {
			if authURL, err := c.CreateURL(); err != nil {
				log.Warn().Err(err).Msg("Cannot build authorize URL")
			} else if err := c.redirector.Redirect(authURL); err != nil {
				log.Warn().Err(err).Msg("Authorize redirect failed")
			}
		}
		return c.Token(), nil
	}

	data := url.Values{}
	data.Set(oauth2.ParamGrantType, string(oauth2.AuthorizationCodeGrant))
	data.Set(oauth2.ParamCode, code)
	data.Set(oauth2.ParamClientID, c.opts.ClientID)
	data.Set(oauth2.ParamClientSecret, c.opts.ClientSecret)
	data.Set(oauth2.ParamRedirectURI, c.opts.RedirectURI)

	tok, err := c.exchange(ctx, oauth2.AuthorizationCodeGrant, data)
	if err != nil {
		return token.Token{}, err
	}

	c.SetToken(tok)
	log.Debug().Bool("refresh_token", tok.RefreshToken != "").Int64("expires_in", c.token.ExpiresIn).
		Msg("Authorization code exchanged")
	return c.Token(), nil
}

// RefreshToken exchanges a refresh token for a new access token. A nil tok uses the
// stored token. When the server does not issue a new refresh token the previous one
// is carried forward. The merged token is installed and returned.
//
// ErrMissingRefreshToken is returned, without any network call, when the userefresh
// option is off or the token has no refresh token.
func (c *Client) RefreshToken(ctx context.Context, tok *token.Token) (token.Token, error) {
	current := c.token
	if tok != nil {
		current = *tok
	}

	if !c.opts.RefreshEnabled() {
		return token.Token{}, fmt.Errorf("%w: refresh disabled by the %s option", ErrMissingRefreshToken, OptUseRefresh)
	}
	if current.RefreshToken == "" {
		return token.Token{}, fmt.Errorf("%w: token has no refresh_token", ErrMissingRefreshToken)
	}

	data := url.Values{}
	data.Set(oauth2.ParamGrantType, string(oauth2.RefreshTokenGrant))
	data.Set(oauth2.ParamRefreshToken, current.RefreshToken)
	data.Set(oauth2.ParamClientID, c.opts.ClientID)
	data.Set(oauth2.ParamClientSecret, c.opts.ClientSecret)

	refreshed, err := c.exchange(ctx, oauth2.RefreshTokenGrant, data)
	if err != nil {
		return token.Token{}, err
	}

	rotated := refreshed.RefreshToken != ""
	c.SetToken(refreshed.WithRefreshFallback(current.RefreshToken))
	log.Debug().Bool("rotated", rotated).Int64("expires_in", c.token.ExpiresIn).Msg("Token refreshed")
	return c.Token(), nil
}

// exchange posts a grant to the token endpoint and decodes the answer.
func (c *Client) exchange(ctx context.Context, grant oauth2.GrantType, data url.Values) (token.Token, error) {
	tokenURL := c.opts.TokenURL
	headers := http.Header{"Accept": {"application/json"}}

	resp, err := c.transport.Post(ctx, tokenURL, data, headers, c.opts.CallTimeout())
	if err != nil {
		c.redirectToLogin()
		return token.Token{}, errors.Mark(ErrTokenExchange, err, "%s grant: post %s", grant, tokenURL)
	}

	if !resp.Success() {
		c.redirectToLogin()
		if er, ok := oauth2.ParseErrorResponse(resp.ContentType(), resp.Body); ok {
			return token.Token{}, errors.Mark(ErrTokenExchange, nil, "%s grant: status %d: %s", grant, resp.StatusCode, er)
		}
		return token.Token{}, errors.Mark(ErrTokenExchange, nil, "%s grant: status %d", grant, resp.StatusCode)
	}

	tok, err := token.DecodeResponse(resp.ContentType(), resp.Body)
	if err != nil {
		return token.Token{}, errors.Wrapf(err, "[client exchange] %s grant", grant)
	}
	return tok, nil
}
