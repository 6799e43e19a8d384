package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Exchange the stored refresh token for a new access token",
	Args:  cobra.NoArgs,
	RunE:  runRefresh,
}

func init() {
	rootCmd.AddCommand(refreshCmd)
}

func runRefresh(cmd *cobra.Command, _ []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	if s.stored == nil {
		return errNotAuthenticated
	}

	tok, err := s.client(s.opts, nil, nil).RefreshToken(cmd.Context(), nil)
	if err != nil {
		return err
	}
	if err := s.save(tok); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if expiry := tok.Expiry(); !expiry.IsZero() {
		_, err = fmt.Fprintf(out, "Token refreshed, expires %s\n", expiry.Format(time.RFC3339))
		return err
	}
	_, err = fmt.Fprintln(out, "Token refreshed")
	return err
}
