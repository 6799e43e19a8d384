package client

import (
	"errors"

	"github.com/jrsteele09/go-oauth2-client/token"
)

var (
	// ErrOptionNotFound is returned by GetOption for an unset key.
	ErrOptionNotFound = errors.New("option not found")

	// ErrMissingRefreshToken is returned when a refresh is attempted while refresh is
	// disabled or the token carries no refresh token.
	ErrMissingRefreshToken = errors.New("missing refresh token")

	// ErrTokenExchange covers transport failures and non-2xx answers from the token endpoint.
	ErrTokenExchange = errors.New("token exchange failed")

	// ErrNotAuthenticated is returned by the oauth2.TokenSource adapter when no usable
	// token exists and none can be refreshed.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrUnsupportedMethod is returned by Query for verbs other than GET and POST.
	ErrUnsupportedMethod = errors.New("unsupported http method")

	// ErrMalformedTokenResponse is returned when the token endpoint body cannot be decoded.
	ErrMalformedTokenResponse = token.ErrMalformedTokenResponse
)
