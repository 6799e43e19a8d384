package cli

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strings"

	"github.com/jrsteele09/go-oauth2-client/client"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"
)

// Flags for query.
var (
	queryMethod  string
	queryData    []string
	queryHeaders []string
	queryOAuth2  bool
)

var queryCmd = &cobra.Command{
	Use:   "query [url]",
	Short: "Call a protected API with the stored token",
	Long: `Call a protected API. The token is attached according to the authmethod
option and refreshed first when it has expired.

Examples:
  oauth2client query https://api.example.com/me
  oauth2client query -X post -d name=value https://api.example.com/items
  oauth2client query --oauth2 https://api.example.com/me`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().StringVarP(&queryMethod, "method", "X", "", "HTTP method, get or post (default from authmethod)")
	queryCmd.Flags().StringArrayVarP(&queryData, "data", "d", nil, "request parameter as key=value, repeatable")
	queryCmd.Flags().StringArrayVarP(&queryHeaders, "header", "H", nil, "request header as 'Name: value', repeatable")
	queryCmd.Flags().BoolVar(&queryOAuth2, "oauth2", false, "send through golang.org/x/oauth2 with a bearer header")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	data, err := parsePairs(queryData, "=")
	if err != nil {
		return err
	}
	headers, err := parseHeaders(queryHeaders)
	if err != nil {
		return err
	}

	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	c := s.client(s.opts, nil, nil)
	before := c.Token()

	var (
		status int
		body   []byte
	)
	if queryOAuth2 {
		status, body, err = queryWithOAuth2(cmd, c, args[0], data, headers)
	} else {
		status, body, err = queryWithClient(cmd, c, args[0], data, headers)
	}

	// A refresh may have happened even when the call itself failed. Servers may
	// reissue the same access token while rotating the refresh token or lifetime.
	if after := c.Token(); after.AccessToken != "" && !reflect.DeepEqual(after, before) {
		if saveErr := s.save(after); saveErr != nil {
			return saveErr
		}
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "HTTP %d\n", status)
	if _, err := cmd.OutOrStdout().Write(body); err != nil {
		return err
	}
	if status < 200 || status >= 300 {
		return fmt.Errorf("request failed with status %d", status)
	}
	return nil
}

func queryWithClient(cmd *cobra.Command, c *client.Client, rawURL string, data url.Values, headers http.Header) (int, []byte, error) {
	resp, ok, err := c.Query(cmd.Context(), rawURL, data, headers, queryMethod)
	if !ok {
		return 0, nil, errNotAuthenticated
	}
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, resp.Body, nil
}

func queryWithOAuth2(cmd *cobra.Command, c *client.Client, rawURL string, data url.Values, headers http.Header) (int, []byte, error) {
	ctx := cmd.Context()
	method := strings.ToUpper(queryMethod)
	if method == "" {
		method = http.MethodGet
	}

	var req *http.Request
	var err error
	switch method {
	case http.MethodGet:
		u, parseErr := url.Parse(rawURL)
		if parseErr != nil {
			return 0, nil, fmt.Errorf("invalid url %q: %w", rawURL, parseErr)
		}
		q := u.Query()
		for k, vs := range data {
			q[k] = vs
		}
		u.RawQuery = q.Encode()
		req, err = http.NewRequestWithContext(ctx, method, u.String(), nil)
	case http.MethodPost:
		req, err = http.NewRequestWithContext(ctx, method, rawURL, strings.NewReader(data.Encode()))
		if err == nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	default:
		return 0, nil, fmt.Errorf("%w: %s", client.ErrUnsupportedMethod, method)
	}
	if err != nil {
		return 0, nil, err
	}
	for k, vs := range headers {
		req.Header[k] = vs
	}

	resp, err := oauth2.NewClient(ctx, c.TokenSource(ctx)).Do(req)
	if err != nil {
		if errors.Is(err, client.ErrNotAuthenticated) {
			return 0, nil, errNotAuthenticated
		}
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp.StatusCode, body, nil
}

func parsePairs(pairs []string, sep string) (url.Values, error) {
	values := url.Values{}
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, sep)
		if !ok || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("invalid parameter %q, expected key%svalue", p, sep)
		}
		values.Add(strings.TrimSpace(k), v)
	}
	return values, nil
}

func parseHeaders(pairs []string) (http.Header, error) {
	values, err := parsePairs(pairs, ":")
	if err != nil {
		return nil, err
	}
	headers := make(http.Header, len(values))
	for k, vs := range values {
		for _, v := range vs {
			headers.Add(k, strings.TrimSpace(v))
		}
	}
	return headers, nil
}
