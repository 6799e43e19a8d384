package transport_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/jrsteele09/go-oauth2-client/transport"
	"github.com/stretchr/testify/require"
)

func TestHTTPTransport_Get(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "value", r.URL.Query().Get("param"))
		require.Equal(t, "yes", r.Header.Get("X-Test"))
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("Lorem ipsum dolor sit amet."))
	}))
	defer server.Close()

	tr := transport.New(nil)
	resp, err := tr.Get(context.Background(), server.URL+"/api?param=value", http.Header{"X-Test": {"yes"}}, time.Second)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, resp.Success())
	require.Equal(t, "text/html", resp.ContentType())
	require.Equal(t, "Lorem ipsum dolor sit amet.", string(resp.Body))
}

func TestHTTPTransport_Post(t *testing.T) {
	t.Run("form body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
			require.NoError(t, r.ParseForm())
			require.Equal(t, "refresh_token", r.PostForm.Get("grant_type"))
			w.WriteHeader(http.StatusCreated)
		}))
		defer server.Close()

		resp, err := transport.New(server.Client()).Post(context.Background(), server.URL,
			url.Values{"grant_type": {"refresh_token"}}, nil, 0)
		require.NoError(t, err)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		require.True(t, resp.Success())
	})

	t.Run("caller content type kept", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "text/plain", r.Header.Get("Content-Type"))
			body, _ := io.ReadAll(r.Body)
			require.Equal(t, "a=1", string(body))
		}))
		defer server.Close()

		_, err := transport.New(nil).Post(context.Background(), server.URL,
			url.Values{"a": {"1"}}, http.Header{"Content-Type": {"text/plain"}}, 0)
		require.NoError(t, err)
	})
}

func TestHTTPTransport_Errors(t *testing.T) {
	t.Run("non 2xx is not an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", http.StatusBadRequest)
		}))
		defer server.Close()

		resp, err := transport.New(nil).Get(context.Background(), server.URL, nil, 0)
		require.NoError(t, err)
		require.False(t, resp.Success())
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("timeout", func(t *testing.T) {
		release := make(chan struct{})
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer server.Close()
		defer close(release)

		_, err := transport.New(nil).Get(context.Background(), server.URL, nil, 50*time.Millisecond)
		require.Error(t, err)
		require.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("body too large", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(strings.Repeat("x", 64)))
		}))
		defer server.Close()

		tr := transport.New(nil)
		tr.SetMaxResponseBytes(16)
		_, err := tr.Get(context.Background(), server.URL, nil, 0)
		require.ErrorIs(t, err, transport.ErrResponseTooLarge)
	})

	t.Run("bad url", func(t *testing.T) {
		_, err := transport.New(nil).Get(context.Background(), "://bad", nil, 0)
		require.Error(t, err)
	})
}

func TestResponse_NilSafe(t *testing.T) {
	var r *transport.Response
	require.Equal(t, "", r.ContentType())
	require.False(t, r.Success())
}
