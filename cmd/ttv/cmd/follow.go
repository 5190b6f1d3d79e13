package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/ttv/internal/db"
	"github.com/Dicklesworthstone/ttv/internal/twitch"
)

var followCmd = &cobra.Command{
	Use:   "follow <login>...",
	Short: "Follow Twitch streamers locally",
	Long: `Look up Twitch logins and add them to the local follow list.

Logins Twitch does not know are reported and skipped.

Examples:
  ttv follow shroud
  ttv follow lirik summit1g`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFollow,
}

func init() {
	rootCmd.AddCommand(followCmd)
}

func runFollow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	logins := make([]string, 0, len(args))
	for _, arg := range args {
		if login := strings.TrimSpace(arg); login != "" {
			logins = append(logins, login)
		}
	}
	if len(logins) == 0 {
		return errors.New("no login names provided")
	}

	s, err := openSession()
	if err != nil {
		return err
	}

	slog.Debug("resolving streamers", "count", len(logins))
	users, err := withCredential(ctx, s, func(cred twitch.Credential) ([]twitch.User, error) {
		return s.client.Users(ctx, cred, logins)
	})
	if err != nil {
		return err
	}

	if missing := twitch.MissingLogins(logins, users); len(missing) > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "Not found on Twitch: %s\n", strings.Join(missing, ", "))
	}
	if len(users) == 0 {
		return errors.New("no streamers found for the provided login names")
	}

	store, err := db.Open()
	if err != nil {
		return err
	}
	defer store.Close()
	slog.Debug("using database", "path", store.Path())

	for _, u := range users {
		if err := store.UpsertStreamer(ctx, db.Streamer{ID: u.ID, Login: u.Login, DisplayName: u.DisplayName}); err != nil {
			return err
		}
		slog.Debug("followed", "login", u.Login, "display_name", u.DisplayName)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Followed %d streamer(s).\n", len(users))
	return nil
}

func dbPath() string {
	return db.DefaultPath()
}
