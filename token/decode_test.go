package token_test

import (
	"encoding/json"
	"testing"

	"github.com/jrsteele09/go-oauth2-client/token"
	"github.com/stretchr/testify/require"
)

const (
	formBody = "access_token=accessvalue&refresh_token=refreshvalue&expires_in=3600"
	jsonBody = `{"access_token":"accessvalue","refresh_token":"refreshvalue","expires_in":3600}`
)

func TestDecodeResponse(t *testing.T) {
	want := token.Token{AccessToken: "accessvalue", RefreshToken: "refreshvalue", ExpiresIn: 3600}

	t.Run("form encoded", func(t *testing.T) {
		tok, err := token.DecodeResponse("x-www-form-urlencoded", []byte(formBody))
		require.NoError(t, err)
		require.Equal(t, want, tok)
	})

	t.Run("json", func(t *testing.T) {
		tok, err := token.DecodeResponse("application/json", []byte(jsonBody))
		require.NoError(t, err)
		require.Equal(t, want, tok)
	})

	t.Run("json with charset", func(t *testing.T) {
		tok, err := token.DecodeResponse("application/json; charset=utf-8", []byte(jsonBody))
		require.NoError(t, err)
		require.Equal(t, want, tok)
	})

	t.Run("structured json suffix", func(t *testing.T) {
		tok, err := token.DecodeResponse("application/vnd.api+json", []byte(jsonBody))
		require.NoError(t, err)
		require.Equal(t, want, tok)
	})

	t.Run("missing content type falls back to form", func(t *testing.T) {
		tok, err := token.DecodeResponse("", []byte(formBody))
		require.NoError(t, err)
		require.Equal(t, want, tok)
	})

	t.Run("extra members kept", func(t *testing.T) {
		tok, err := token.DecodeResponse("application/json",
			[]byte(`{"access_token":"a","token_type":"Bearer","scope":["read","write"],"id_token":"i","custom":"c"}`))
		require.NoError(t, err)
		require.Equal(t, "Bearer", tok.TokenType)
		require.Equal(t, "read write", tok.Scope)
		require.Equal(t, "i", tok.IDToken)
		require.Equal(t, map[string]any{"custom": "c"}, tok.Extra)
	})

	t.Run("expires alias", func(t *testing.T) {
		tok, err := token.DecodeResponse("text/plain", []byte("access_token=a&expires=60"))
		require.NoError(t, err)
		require.Equal(t, int64(60), tok.Expires)
		require.Zero(t, tok.ExpiresIn)
	})

	malformed := []struct {
		name        string
		contentType string
		body        string
	}{
		{"empty form", "text/html", ""},
		{"empty json", "application/json", "  "},
		{"invalid json", "application/json", `{"access_token":`},
		{"json array", "application/json", `["access_token"]`},
		{"empty json object", "application/json", `{}`},
		{"json without access token", "application/json", `{"refresh_token":"r"}`},
		{"html page", "text/html", "Lorem ipsum dolor sit amet."},
		{"bad escape", "text/plain", "access_token=%zz"},
		{"non numeric expiry", "text/plain", "access_token=a&expires_in=soon"},
	}
	for _, tt := range malformed {
		t.Run(tt.name, func(t *testing.T) {
			_, err := token.DecodeResponse(tt.contentType, []byte(tt.body))
			require.ErrorIs(t, err, token.ErrMalformedTokenResponse)
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	fields, err := token.DecodeJSON([]byte(`{"expires_in":12345678901234,"nested":{"a":1}}`))
	require.NoError(t, err)
	require.Equal(t, json.Number("12345678901234"), fields["expires_in"])
	require.Contains(t, fields, "nested")
}

func TestDecodeForm(t *testing.T) {
	fields, err := token.DecodeForm([]byte("a=1&a=2&b=hello+world&=skipped"))
	require.NoError(t, err)
	require.Equal(t, map[string]any{"a": "1", "b": "hello world"}, fields)
}

func TestFromMap(t *testing.T) {
	tok, err := token.FromMap(map[string]any{
		"access_token": "a",
		"expires_in":   "3600",
		"created":      json.Number("1700000000"),
	})
	require.NoError(t, err)
	require.Equal(t, token.Token{AccessToken: "a", ExpiresIn: 3600, Created: 1700000000}, tok)
}
