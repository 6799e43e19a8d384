package client

import (
	"context"

	"golang.org/x/oauth2"
)

// TokenSource adapts the client to oauth2.TokenSource so it can drive
// oauth2.NewClient. Each call returns the stored token while it is valid and refreshes
// it otherwise. ctx is used for refresh requests.
//
// Like the Client itself, the source must not be used concurrently.
func (c *Client) TokenSource(ctx context.Context) oauth2.TokenSource {
	return &tokenSource{ctx: ctx, client: c}
}

type tokenSource struct {
	ctx    context.Context
	client *Client
}

func (s *tokenSource) Token() (*oauth2.Token, error) {
	if s.client.IsAuthenticated() {
		return s.client.token.OAuth2(), nil
	}
	if !s.client.canRefresh() {
		return nil, ErrNotAuthenticated
	}
	tok, err := s.client.RefreshToken(s.ctx, nil)
	if err != nil {
		return nil, err
	}
	return tok.OAuth2(), nil
}
