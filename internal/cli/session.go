package cli

import (
	"errors"
	"fmt"

	"github.com/jrsteele09/go-oauth2-client/client"
	"github.com/jrsteele09/go-oauth2-client/internal/config"
	"github.com/jrsteele09/go-oauth2-client/internal/tokenstore"
	"github.com/jrsteele09/go-oauth2-client/token"
	"github.com/jrsteele09/go-oauth2-client/transport"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var errNotAuthenticated = errors.New("not authenticated: run login first")

// session is the state shared by every command: configuration, the token store and
// the token loaded from it.
type session struct {
	cfg       config.Config
	opts      client.Options
	repo      tokenstore.Repo
	transport transport.Transport
	stored    *token.Token
}

func newSession(cmd *cobra.Command) (*session, error) {
	cfg, err := loadConfig(cmd.Context(), configPath)
	if err != nil {
		return nil, err
	}

	path := tokenPath
	if path == "" {
		path = cfg.GetTokenFile()
	}
	s := &session{
		cfg:       cfg,
		opts:      cfg.GetClientOptions(),
		repo:      repoFactory(path),
		transport: transportFactory(),
	}

	tok, err := s.repo.Get(profile)
	switch {
	case err == nil:
		s.stored = &tok
	case errors.Is(err, tokenstore.ErrNotFound):
		log.Debug().Str("profile", profile).Msg("No stored token")
	default:
		return nil, err
	}
	return s, nil
}

// client builds a Client over opts holding the stored token, if any.
func (s *session) client(opts client.Options, input client.Input, redirector client.Redirector) *client.Client {
	c := client.New(opts, s.transport, input, redirector)
	if s.stored != nil {
		c.SetToken(*s.stored)
	}
	return c
}

func (s *session) save(tok token.Token) error {
	if err := s.repo.Upsert(profile, tok); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	s.stored = &tok
	return nil
}
