package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jrsteele09/go-oauth2-client/internal/errors"
	"github.com/jrsteele09/go-oauth2-client/token"
	tokenjwt "github.com/jrsteele09/go-oauth2-client/token/jwt"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Show the stored token and its claims",
	Long: `Show the stored token: validity, expiry, scope and, for JWT-shaped access or
ID tokens, their claims. Signatures are not verified.`,
	Args: cobra.NoArgs,
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

// tokenReport is what inspect prints.
type tokenReport struct {
	Profile         string                       `json:"profile"`
	Valid           bool                         `json:"valid"`
	TokenType       string                       `json:"token_type,omitempty"`
	Scope           string                       `json:"scope,omitempty"`
	Expires         string                       `json:"expires,omitempty"`
	HasRefreshToken bool                         `json:"has_refresh_token"`
	AccessToken     *tokenjwt.TokenIntrospection `json:"access_token,omitempty"`
	IDToken         *tokenjwt.TokenIntrospection `json:"id_token,omitempty"`
	Extra           map[string]any               `json:"extra,omitempty"`
}

func runInspect(cmd *cobra.Command, _ []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	if s.stored == nil {
		return errNotAuthenticated
	}

	report, err := newTokenReport(profile, *s.stored)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func newTokenReport(name string, tok token.Token) (tokenReport, error) {
	tok = token.Normalize(tok)
	report := tokenReport{
		Profile:         name,
		Valid:           tok.Valid(),
		TokenType:       tok.TokenType,
		Scope:           tok.Scope,
		HasRefreshToken: tok.RefreshToken != "",
		Extra:           tok.Extra,
	}
	if expiry := tok.Expiry(); !expiry.IsZero() {
		report.Expires = expiry.UTC().Format(time.RFC3339)
	}

	var err error
	if report.AccessToken, err = introspect(tok.AccessToken); err != nil {
		return tokenReport{}, fmt.Errorf("access token: %w", err)
	}
	if report.IDToken, err = introspect(tok.IDToken); err != nil {
		return tokenReport{}, fmt.Errorf("id token: %w", err)
	}
	return report, nil
}

// introspect returns nil for empty and opaque tokens.
func introspect(raw string) (*tokenjwt.TokenIntrospection, error) {
	if raw == "" {
		return nil, nil
	}
	ti, err := tokenjwt.Introspect(raw)
	if errors.Is(err, tokenjwt.ErrNotJWT) {
		return nil, nil
	}
	return ti, err
}
