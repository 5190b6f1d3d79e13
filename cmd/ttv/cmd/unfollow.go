package cmd

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/ttv/internal/db"
)

var unfollowCmd = &cobra.Command{
	Use:   "unfollow <login>...",
	Short: "Unfollow Twitch streamers locally",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runUnfollow,
}

func init() {
	rootCmd.AddCommand(unfollowCmd)
}

func runUnfollow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	store, err := db.Open()
	if err != nil {
		return err
	}
	defer store.Close()

	var removed int64
	var missing []string
	seen := make(map[string]struct{}, len(args))
	for _, login := range args {
		login = strings.TrimSpace(login)
		key := strings.ToLower(login)
		if _, dup := seen[key]; dup || key == "" {
			continue
		}
		seen[key] = struct{}{}

		n, err := store.DeleteStreamerByLogin(ctx, login)
		if err != nil {
			return err
		}
		if n == 0 {
			missing = append(missing, login)
			continue
		}
		removed += n
		slog.Debug("unfollowed", "login", login)
	}

	if len(missing) > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "Not followed: %s\n", strings.Join(missing, ", "))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Unfollowed %d streamer(s).\n", removed)
	return nil
}
