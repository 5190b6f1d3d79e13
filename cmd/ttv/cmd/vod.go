package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/ttv/internal/twitch"
	"github.com/Dicklesworthstone/ttv/internal/watch"
)

const (
	videoBaseURL  = "https://www.twitch.tv/videos/"
	maxTitleWidth = 60
)

var vodCmd = &cobra.Command{
	Use:   "vod <login>",
	Short: "Watch past broadcasts for a Twitch streamer",
	Long: `List a streamer's archived broadcasts, pick one by number and play it
with streamlink and mpv.`,
	Args: cobra.ExactArgs(1),
	RunE: runVod,
}

func init() {
	rootCmd.AddCommand(vodCmd)
}

func runVod(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	login := args[0]
	if !watch.IsLogin(login) {
		return &watch.InvalidInputError{Input: args[0]}
	}

	s, err := openSession()
	if err != nil {
		return err
	}

	users, err := withCredential(ctx, s, func(cred twitch.Credential) ([]twitch.User, error) {
		return s.client.Users(ctx, cred, []string{login})
	})
	if err != nil {
		return err
	}
	if len(users) == 0 {
		return fmt.Errorf("streamer %q not found on Twitch", login)
	}
	user := users[0]

	vods, err := withCredential(ctx, s, func(cred twitch.Credential) ([]twitch.Video, error) {
		return s.client.Videos(ctx, cred, user.ID)
	})
	if err != nil {
		return err
	}
	if len(vods) == 0 {
		fmt.Fprintf(out, "No VODs found for %s.\n", user.DisplayName)
		return nil
	}

	fmt.Fprintf(out, "VODs for %s:\n", user.DisplayName)
	for i, v := range vods {
		fmt.Fprintf(out, "%2d) [%s] %s (%s)\n", i+1, v.CreatedAt.Local().Format("2006-01-02 15:04"), ansi.Truncate(v.Title, maxTitleWidth, "…"), v.Duration)
	}

	choice, err := promptSelection(cmd.InOrStdin(), out, len(vods))
	if err != nil {
		return err
	}
	vod := vods[choice-1]

	orch, cleanup, err := newOrchestrator()
	if err != nil {
		return err
	}
	defer cleanup()

	fmt.Fprintf(out, "Starting VOD %s...\n", vod.ID)
	_, err = orch.Launch(ctx, []watch.Target{{Login: user.Login, URL: videoBaseURL + vod.ID}})
	return err
}

// promptSelection asks for a number in [1, max] until one is given.
// An empty answer or end of input cancels.
func promptSelection(in io.Reader, out io.Writer, max int) (int, error) {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprintf(out, "Select a VOD (1-%d): ", max)
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return 0, fmt.Errorf("read selection: %w", err)
			}
			fmt.Fprintln(out)
			return 0, errors.New("no selection provided")
		}

		answer := strings.TrimSpace(scanner.Text())
		if answer == "" {
			return 0, errors.New("no selection provided")
		}
		n, err := strconv.Atoi(answer)
		if err == nil && n >= 1 && n <= max {
			return n, nil
		}
		fmt.Fprintf(out, "Invalid selection. Please enter a number between 1 and %d.\n", max)
	}
}
