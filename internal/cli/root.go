// Package cli implements the oauth2client command line.
package cli

import (
	"context"
	"io"
	"strings"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-oauth2-client/internal/config"
	"github.com/jrsteele09/go-oauth2-client/internal/tokenstore"
	"github.com/jrsteele09/go-oauth2-client/transport"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// Global flags.
var (
	configPath string
	tokenPath  string
	profile    string
	verbose    bool
)

// Collaborators replaced by tests.
var (
	loadConfig       = config.Load
	transportFactory = func() transport.Transport { return transport.New(nil) }
	repoFactory      = func(path string) tokenstore.Repo { return tokenstore.NewFileRepo(path) }
)

var rootCmd = &cobra.Command{
	Use:   "oauth2client",
	Short: "OAuth2 authorization code client",
	Long: `Obtain, refresh and use OAuth2 tokens from the command line.

Client settings come from a TOML file ([client] table) and OAUTH2_* environment
variables. Tokens are kept in a JSON file, one entry per profile.

Examples:
  oauth2client --config client.toml login
  oauth2client query https://www.googleapis.com/calendar/v3/users/me/calendarList
  oauth2client refresh
  oauth2client inspect`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		setupLogging(cmd.ErrOrStderr())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "TOML config file (default $OAUTH2_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&tokenPath, "token", "", "token file (default $OAUTH2_TOKEN_FILE or ./token.json)")
	rootCmd.PersistentFlags().StringVarP(&profile, "profile", "p", tokenstore.DefaultProfile, "token profile")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

// Execute runs the command line with ctx as the base context of every command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func setupLogging(w io.Writer) {
	level, err := zerolog.ParseLevel(strings.ToLower(config.EnvVars{}.GetLogLevel()))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	if verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}).With().Timestamp().Logger()
}

func displayAppname(w io.Writer, appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	_, _ = io.WriteString(w, myFigure.String())
	_, _ = io.WriteString(w, "\n")
}
