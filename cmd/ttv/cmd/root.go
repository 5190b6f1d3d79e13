// Package cmd implements the CLI commands for ttv.
package cmd

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"
)

// version is overridden at build time with -ldflags "-X".
var version = "dev"

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "ttv",
	Short: "Watch Twitch streams via streamlink and mpv",
	Long: `ttv manages Twitch API credentials, keeps a local list of followed
streamers, shows who is live and launches streams through streamlink and mpv.

Examples:
  ttv config --client-id <ID> --client-secret -
  ttv follow shroud lirik
  ttv list --status all
  ttv watch shroud https://twitch.tv/lirik`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging(cmd.ErrOrStderr(), verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print request and update details to stderr")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func setupLogging(w io.Writer, verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}
