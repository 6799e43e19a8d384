// Package discovery reads authorization server endpoints from OpenID Connect
// provider metadata.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/rs/zerolog/log"
)

// ErrIncompleteMetadata is returned when the provider document lacks one of the
// endpoints the client needs.
var ErrIncompleteMetadata = errors.New("provider metadata is missing endpoints")

// Endpoints are the URLs published by an issuer.
type Endpoints struct {
	Issuer   string
	AuthURL  string
	TokenURL string

	// UserInfoURL is optional and may be empty.
	UserInfoURL string
}

// Discover fetches <issuer>/.well-known/openid-configuration. The issuer in the
// document must match the one requested.
func Discover(ctx context.Context, issuer string) (Endpoints, error) {
	return DiscoverWithClient(ctx, nil, issuer)
}

// DiscoverWithClient is Discover using httpClient for the metadata request. A nil
// client uses http.DefaultClient.
func DiscoverWithClient(ctx context.Context, httpClient *http.Client, issuer string) (Endpoints, error) {
	issuer = strings.TrimSuffix(issuer, "/")
	if httpClient != nil {
		ctx = oidc.ClientContext(ctx, httpClient)
	}

	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return Endpoints{}, fmt.Errorf("[discovery Discover] failed to create OIDC provider for %s: %w", issuer, err)
	}

	endpoint := provider.Endpoint()
	if endpoint.AuthURL == "" || endpoint.TokenURL == "" {
		return Endpoints{}, fmt.Errorf("%w: %s", ErrIncompleteMetadata, issuer)
	}

	log.Debug().Str("issuer", issuer).Str("auth_url", endpoint.AuthURL).Str("token_url", endpoint.TokenURL).
		Msg("Discovered provider endpoints")

	return Endpoints{
		Issuer:      issuer,
		AuthURL:     endpoint.AuthURL,
		TokenURL:    endpoint.TokenURL,
		UserInfoURL: provider.UserInfoEndpoint(),
	}, nil
}
