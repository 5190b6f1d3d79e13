package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Fetch a new Twitch app access token and update config",
	Long: `Exchange the stored client ID and secret for a new app access token
(client-credentials grant) and save it with its expiry.

Other commands refresh the token automatically when it is missing or
expired; use this to force a refresh.`,
	Args: cobra.NoArgs,
	RunE: runAuth,
}

func init() {
	authCmd.Flags().Bool("show", false, "print the updated configuration (secrets masked)")
	rootCmd.AddCommand(authCmd)
}

func runAuth(cmd *cobra.Command, args []string) error {
	show, _ := cmd.Flags().GetBool("show")

	s, err := openSession()
	if err != nil {
		return err
	}

	cfg, err := s.auth.Refresh(cmd.Context(), s.cfg)
	if err != nil {
		return err
	}
	s.cfg = cfg

	out := cmd.OutOrStdout()
	if cfg.Twitch.ExpiresAt != nil {
		remaining := time.Until(*cfg.Twitch.ExpiresAt)
		fmt.Fprintf(out, "Fetched new access token (expires in %s).\n", formatDurationShort(remaining))
	} else {
		fmt.Fprintln(out, "Fetched new access token.")
	}

	if show {
		return printConfig(out, &cfg)
	}
	return nil
}
