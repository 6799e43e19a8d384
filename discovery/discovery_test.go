package discovery_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jrsteele09/go-oauth2-client/discovery"
	"github.com/stretchr/testify/require"
)

func newIssuer(t *testing.T, mutate func(doc map[string]any)) *httptest.Server {
	t.Helper()
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/.well-known/openid-configuration" {
			http.NotFound(w, r)
			return
		}
		doc := map[string]any{
			"issuer":                                srv.URL,
			"authorization_endpoint":                srv.URL + "/authorize",
			"token_endpoint":                        srv.URL + "/token",
			"userinfo_endpoint":                     srv.URL + "/userinfo",
			"jwks_uri":                              srv.URL + "/jwks",
			"id_token_signing_alg_values_supported": []string{"RS256"},
		}
		if mutate != nil {
			mutate(doc)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(doc)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestDiscover(t *testing.T) {
	srv := newIssuer(t, nil)

	endpoints, err := discovery.Discover(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Equal(t, discovery.Endpoints{
		Issuer:      srv.URL,
		AuthURL:     srv.URL + "/authorize",
		TokenURL:    srv.URL + "/token",
		UserInfoURL: srv.URL + "/userinfo",
	}, endpoints)
}

func TestDiscoverTrailingSlash(t *testing.T) {
	srv := newIssuer(t, nil)

	endpoints, err := discovery.DiscoverWithClient(context.Background(), srv.Client(), srv.URL+"/")
	require.NoError(t, err)
	require.Equal(t, srv.URL+"/token", endpoints.TokenURL)
}

func TestDiscoverIssuerMismatch(t *testing.T) {
	srv := newIssuer(t, func(doc map[string]any) {
		doc["issuer"] = "https://someone-else.example.com"
	})

	_, err := discovery.Discover(context.Background(), srv.URL)
	require.Error(t, err)
}

func TestDiscoverMissingTokenEndpoint(t *testing.T) {
	srv := newIssuer(t, func(doc map[string]any) {
		delete(doc, "token_endpoint")
	})

	_, err := discovery.Discover(context.Background(), srv.URL)
	require.ErrorIs(t, err, discovery.ErrIncompleteMetadata)
}

func TestDiscoverNotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := discovery.Discover(context.Background(), srv.URL)
	require.Error(t, err)
}
