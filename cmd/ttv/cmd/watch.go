package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/ttv/internal/config"
	"github.com/Dicklesworthstone/ttv/internal/db"
	"github.com/Dicklesworthstone/ttv/internal/streamlink"
	"github.com/Dicklesworthstone/ttv/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch <login-or-url>...",
	Short: "Watch one or more streams with streamlink and mpv",
	Long: `Launch one streamlink + mpv pipeline per channel and wait until every
player has exited.

Channels may be bare logins or https://twitch.tv/<login> URLs; duplicates
are collapsed. Any invalid channel aborts before anything is launched.

Examples:
  ttv watch shroud
  ttv watch lirik https://www.twitch.tv/summit1g`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	targets, err := watch.Normalize(args)
	if err != nil {
		return err
	}

	orch, cleanup, err := newOrchestrator()
	if err != nil {
		return err
	}
	defer cleanup()

	out := cmd.OutOrStdout()
	for _, t := range targets {
		fmt.Fprintf(out, "Starting stream for %s...\n", t.Login)
	}

	res, err := orch.Launch(ctx, targets)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "All %d stream(s) ended.\n", res.Succeeded())
	return nil
}

// newOrchestrator wires the launcher from settings and, when the database
// can be opened, an activity-log recorder.
func newOrchestrator() (*watch.Orchestrator, func(), error) {
	settings, err := config.LoadSettings()
	if err != nil {
		return nil, nil, err
	}

	command := streamlink.Command{Launcher: settings.Player.Launcher, Player: settings.Player.Player}
	launcher := streamlink.NewLauncher(command, streamlink.WithLogger(slog.Default()))
	opts := []watch.Option{watch.WithLogger(slog.Default())}

	cleanup := func() {}
	store, err := db.Open()
	if err != nil {
		slog.Warn("activity log unavailable", "error", err)
	} else {
		rec := &launchRecorder{store: store, runID: uuid.NewString()}
		opts = append(opts, watch.WithRecorder(rec))
		cleanup = func() { _ = store.Close() }
	}

	return watch.New(launcher, &streamlink.Prober{}, command.Binaries(), opts...), cleanup, nil
}

// launchRecorder writes watch outcomes to the activity log under one run id.
type launchRecorder struct {
	store *db.DB
	runID string
}

func (r *launchRecorder) RecordOutcome(ctx context.Context, o watch.Outcome) error {
	rec := db.LaunchRecord{
		RunID:     r.runID,
		Login:     o.Target.Login,
		State:     string(o.State),
		Message:   o.Message,
		StartedAt: o.StartedAt,
		Duration:  o.Duration,
	}
	if o.State != watch.StateLaunchError {
		code := o.ExitCode
		rec.ExitCode = &code
	}
	return r.store.RecordLaunch(ctx, rec)
}
