package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/ttv/internal/db"
	"github.com/Dicklesworthstone/ttv/internal/twitch"
)

const (
	statusOnline  = "online"
	statusOffline = "offline"
	statusAll     = "all"

	maxGameWidth = 32
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List followed streamers",
	Long: `Show followed streamers with their live status.

By default only streamers that are live right now are shown.

Examples:
  ttv list
  ttv list --status offline
  ttv list --status all`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	listCmd.Flags().String("status", statusOnline, "filter by status: online, offline or all")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	status, _ := cmd.Flags().GetString("status")
	switch status {
	case statusOnline, statusOffline, statusAll:
	default:
		return fmt.Errorf("invalid --status %q (valid: online, offline, all)", status)
	}

	store, err := db.Open()
	if err != nil {
		return err
	}
	defer store.Close()

	streamers, err := store.ListStreamers(ctx)
	if err != nil {
		return err
	}
	if len(streamers) == 0 {
		fmt.Fprintln(out, "No followed streamers.")
		return nil
	}

	s, err := openSession()
	if err != nil {
		return err
	}

	ids := make([]string, 0, len(streamers))
	for _, st := range streamers {
		ids = append(ids, st.ID)
	}
	streams, err := withCredential(ctx, s, func(cred twitch.Credential) ([]twitch.Stream, error) {
		return s.client.Streams(ctx, cred, ids)
	})
	if err != nil {
		return err
	}

	live := make(map[string]twitch.Stream, len(streams))
	for _, st := range streams {
		live[st.UserID] = st
	}

	rows, onlineRows := buildListRows(streamers, live, status, time.Now())
	if len(rows) == 0 {
		switch status {
		case statusOnline:
			fmt.Fprintln(out, "No online streamers.")
		case statusOffline:
			fmt.Fprintln(out, "No offline streamers.")
		default:
			fmt.Fprintln(out, "No streamers found.")
		}
		return nil
	}

	headers := []string{"LOGIN", "NAME", "GAME", "VIEWERS", "UPTIME"}
	if status == statusAll {
		headers = append(headers, "STATUS")
	}
	renderTable(out, headers, rows, func(row, col int) lipgloss.TerminalColor {
		if col == 0 && onlineRows[row] {
			return colorOnline
		}
		return nil
	})
	return nil
}

// buildListRows filters streamers by status and returns table rows plus a
// per-row online flag.
func buildListRows(streamers []db.Streamer, live map[string]twitch.Stream, status string, now time.Time) ([][]string, []bool) {
	var rows [][]string
	var online []bool

	for _, st := range streamers {
		stream, isLive := live[st.ID]
		switch {
		case status == statusOnline && !isLive:
			continue
		case status == statusOffline && isLive:
			continue
		}

		row := []string{st.Login, st.DisplayName, "", "", ""}
		if isLive {
			row[2] = ansi.Truncate(stream.GameName, maxGameWidth, "…")
			row[3] = strconv.Itoa(stream.ViewerCount)
			if !stream.StartedAt.IsZero() {
				row[4] = formatDurationShort(now.Sub(stream.StartedAt))
			}
		}
		if status == statusAll {
			if isLive {
				row = append(row, statusOnline)
			} else {
				row = append(row, statusOffline)
			}
		}
		rows = append(rows, row)
		online = append(online, isLive)
	}
	return rows, online
}
