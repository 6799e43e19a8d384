package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/jrsteele09/go-oauth2-client/client"
	"github.com/jrsteele09/go-oauth2-client/oauth2"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// startPath serves a redirect to the authorize URL, for browsers opened on the
// local callback server.
const startPath = "/start"

var (
	errAuthorizationDenied = errors.New("authorization denied")
	errLoginTimeout        = errors.New("timed out waiting for the authorization callback")
)

var loginTimeout time.Duration

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Run the authorization code flow",
	Long: `Start a local server on the configured redirect URI, print the authorization
URL and wait for the authorization server to call back with a code. The code is
exchanged for a token, which is saved to the token file.`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

func init() {
	loginCmd.Flags().DurationVar(&loginTimeout, "timeout", 5*time.Minute, "how long to wait for the callback")
	rootCmd.AddCommand(loginCmd)
}

func runLogin(cmd *cobra.Command, _ []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	opts := s.opts
	if opts.RedirectURI == "" {
		return fmt.Errorf("%w: %s", client.ErrOptionNotFound, client.OptRedirectURI)
	}
	redirectURL, err := url.Parse(opts.RedirectURI)
	if err != nil {
		return fmt.Errorf("invalid redirect uri %q: %w", opts.RedirectURI, err)
	}
	if opts.State == "" {
		opts.State = uuid.NewString()
	}

	authURL, err := s.client(opts, nil, nil).CreateURL()
	if err != nil {
		return err
	}

	displayAppname(cmd.ErrOrStderr(), s.cfg.GetAppName())
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Open this URL in your browser:\n\n  %s\n\n", authURL)

	ln, err := net.Listen("tcp", listenAddr(redirectURL))
	if err != nil {
		return fmt.Errorf("failed to listen for callback: %w", err)
	}
	fmt.Fprintf(out, "Or visit http://%s%s\n", ln.Addr(), startPath)

	done := make(chan error, 1)
	server := &http.Server{
		Handler:           loginRouter(s, opts, callbackPath(redirectURL), done),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			notify(done, fmt.Errorf("callback server: %w", err))
		}
	}()
	defer func() {
		if err := shutdown(server); err != nil {
			log.Warn().Err(err).Msg("Callback server shutdown")
		}
	}()

	select {
	case err := <-done:
		if err != nil {
			return err
		}
	case <-cmd.Context().Done():
		return cmd.Context().Err()
	case <-time.After(loginTimeout):
		return errLoginTimeout
	}

	_, err = fmt.Fprintln(out, "Login complete")
	return err
}

// loginRouter serves the authorization callback. A callback carrying a code and the
// expected state completes the login; a denied authorization ends it with an error.
func loginRouter(s *session, opts client.Options, callback string, done chan<- error) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get(startPath, func(w http.ResponseWriter, req *http.Request) {
		startOpts := opts
		startOpts.SendHeaders = true
		c := s.client(startOpts, client.ValuesInput(url.Values{}), client.HTTPRedirector(w, req))
		if _, err := c.Authenticate(req.Context()); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})

	r.Get(callback, func(w http.ResponseWriter, req *http.Request) {
		q := req.URL.Query()
		if e := q.Get("error"); e != "" {
			er := oauth2.ErrorResponse{Error: e, ErrorDescription: q.Get("error_description")}
			http.Error(w, er.String(), http.StatusBadRequest)
			notify(done, fmt.Errorf("%w: %s", errAuthorizationDenied, er))
			return
		}
		if q.Get(oauth2.ParamState) != opts.State {
			log.Warn().Msg("Callback with unexpected state ignored")
			http.Error(w, "state mismatch", http.StatusBadRequest)
			return
		}
		if q.Get(oauth2.ParamCode) == "" {
			http.Error(w, "missing code", http.StatusBadRequest)
			return
		}

		c := s.client(opts, client.RequestInput(req), nil)
		tok, err := c.Authenticate(req.Context())
		if err != nil {
			http.Error(w, "token exchange failed", http.StatusBadGateway)
			notify(done, err)
			return
		}
		if err := s.save(tok); err != nil {
			http.Error(w, "failed to save token", http.StatusInternalServerError)
			notify(done, err)
			return
		}
		_, _ = fmt.Fprintln(w, "Login complete. You can close this window.")
		notify(done, nil)
	})
	return r
}

func notify(done chan<- error, err error) {
	select {
	case done <- err:
	default:
	}
}

func listenAddr(u *url.URL) string {
	if u.Port() != "" {
		return u.Host
	}
	if u.Scheme == "https" {
		return net.JoinHostPort(u.Hostname(), "443")
	}
	return net.JoinHostPort(u.Hostname(), "80")
}

func callbackPath(u *url.URL) string {
	if u.Path == "" {
		return "/"
	}
	return u.Path
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}
