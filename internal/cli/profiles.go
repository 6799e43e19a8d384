package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List stored token profiles",
	Args:  cobra.NoArgs,
	RunE:  runProfiles,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the token of the selected profile",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

func init() {
	rootCmd.AddCommand(profilesCmd)
	rootCmd.AddCommand(logoutCmd)
}

func runProfiles(cmd *cobra.Command, _ []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	names, err := s.repo.List()
	if err != nil {
		return err
	}
	for _, name := range names {
		fmt.Fprintln(cmd.OutOrStdout(), name)
	}
	return nil
}

func runLogout(cmd *cobra.Command, _ []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(profile); err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Removed token for profile %s\n", profile)
	return err
}
