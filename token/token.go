// Package token models the access/refresh token pair held by an OAuth2 client and the
// rules that decide whether it is still usable.
package token

import (
	"maps"
	"time"

	"golang.org/x/oauth2"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Token is the token pair as returned by the authorization server.
// Numeric fields use zero for "absent".
type Token struct {
	// AccessToken is the bearer credential presented to protected APIs.
	// Empty only before the first exchange.
	AccessToken string `json:"access_token" mapstructure:"access_token"`

	// RefreshToken is used to obtain new access tokens. Not every server issues one,
	// and many only issue it on the first exchange.
	RefreshToken string `json:"refresh_token,omitempty" mapstructure:"refresh_token"`

	// TokenType is usually "Bearer".
	TokenType string `json:"token_type,omitempty" mapstructure:"token_type"`

	// Scope is the space separated list of granted scopes, when the server reports it.
	Scope string `json:"scope,omitempty" mapstructure:"scope"`

	// IDToken is the OpenID Connect ID token, present when "openid" was requested.
	IDToken string `json:"id_token,omitempty" mapstructure:"id_token"`

	// ExpiresIn is the lifetime in seconds, relative to Created. Zero means no
	// lifetime was given, so a server-sent "expires_in": 0 never expires locally.
	ExpiresIn int64 `json:"expires_in,omitempty" mapstructure:"expires_in"`

	// Expires is the non-standard spelling some servers use for expires_in.
	// Normalize folds it into ExpiresIn.
	Expires int64 `json:"expires,omitempty" mapstructure:"expires"`

	// Created is the unix time the token was installed.
	Created int64 `json:"created,omitempty" mapstructure:"created"`

	// Extra holds every other member of the token response, verbatim.
	Extra map[string]any `json:"extra,omitempty" mapstructure:",remain"`
}

// Normalize stamps Created with the current time when it is missing and renames a
// raw Expires value to ExpiresIn when ExpiresIn is not already set.
func Normalize(t Token) Token {
	if t.Created == 0 {
		t.Created = NowTimeFunc().Unix()
	}
	if t.Expires != 0 && t.ExpiresIn == 0 {
		t.ExpiresIn = t.Expires
		t.Expires = 0
	}
	return t
}

// HasExpiry reports whether both Created and ExpiresIn are known. Without them no
// expiry judgement is possible. Zero is treated as unknown for both.
func (t Token) HasExpiry() bool {
	return t.Created != 0 && t.ExpiresIn != 0
}

// Expired reports whether the lifetime has run out. A token without expiry data
// never expires.
func (t Token) Expired() bool {
	if !t.HasExpiry() {
		return false
	}
	return NowTimeFunc().Unix()-t.Created >= t.ExpiresIn
}

// Valid reports whether the token carries an access token that has not expired.
func (t Token) Valid() bool {
	return t.AccessToken != "" && !t.Expired()
}

// Expiry returns the absolute expiry time, or the zero time when unknown.
func (t Token) Expiry() time.Time {
	if !t.HasExpiry() {
		return time.Time{}
	}
	return time.Unix(t.Created+t.ExpiresIn, 0)
}

// WithRefreshFallback returns t with refreshToken filled in when the server did not
// issue a new one.
func (t Token) WithRefreshFallback(refreshToken string) Token {
	if t.RefreshToken == "" {
		t.RefreshToken = refreshToken
	}
	return t
}

// Clone returns a copy that shares no mutable state with t.
func (t Token) Clone() Token {
	t.Extra = maps.Clone(t.Extra)
	return t
}

// OAuth2 converts the token to the golang.org/x/oauth2 representation so it can be
// used with oauth2.NewClient and friends. Extra members and the ID token are kept
// and reachable through (*oauth2.Token).Extra.
func (t Token) OAuth2() *oauth2.Token {
	tok := &oauth2.Token{
		AccessToken:  t.AccessToken,
		TokenType:    t.TokenType,
		RefreshToken: t.RefreshToken,
		Expiry:       t.Expiry(),
	}
	extra := maps.Clone(t.Extra)
	if t.IDToken != "" {
		if extra == nil {
			extra = make(map[string]any, 1)
		}
		extra["id_token"] = t.IDToken
	}
	if extra != nil {
		tok = tok.WithExtra(extra)
	}
	return tok
}
