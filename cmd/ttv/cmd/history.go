package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/ttv/internal/db"
	"github.com/Dicklesworthstone/ttv/internal/watch"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent stream launches",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().Int("limit", 20, "number of launches to show")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	if limit <= 0 {
		return fmt.Errorf("--limit must be positive")
	}

	store, err := db.Open()
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.RecentLaunches(cmd.Context(), limit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(records) == 0 {
		fmt.Fprintln(out, "No launches recorded yet.")
		return nil
	}

	now := time.Now()
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		exit := "-"
		if r.ExitCode != nil {
			exit = strconv.Itoa(*r.ExitCode)
		}
		run := r.RunID
		if len(run) > 8 {
			run = run[:8]
		}
		rows = append(rows, []string{
			formatAge(r.StartedAt, now),
			r.Login,
			r.State,
			exit,
			formatDurationShort(r.Duration),
			run,
		})
	}

	renderTable(out, []string{"STARTED", "LOGIN", "STATE", "EXIT", "WATCHED", "RUN"}, rows, func(row, col int) lipgloss.TerminalColor {
		if col != 2 {
			return nil
		}
		if records[row].State == string(watch.StateSucceeded) {
			return colorOnline
		}
		return colorFailed
	})
	return nil
}
