package cli

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var urlCmd = &cobra.Command{
	Use:   "url",
	Short: "Print the authorization URL",
	Long: `Print the URL the user must visit to grant access.

A random state value is generated when none is configured.`,
	Args: cobra.NoArgs,
	RunE: runURL,
}

func init() {
	rootCmd.AddCommand(urlCmd)
}

func runURL(cmd *cobra.Command, _ []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	opts := s.opts
	if opts.State == "" {
		opts.State = uuid.NewString()
	}

	authURL, err := s.client(opts, nil, nil).CreateURL()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), authURL)
	return err
}
