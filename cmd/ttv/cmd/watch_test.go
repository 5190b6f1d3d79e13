package cmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dicklesworthstone/ttv/internal/db"
	"github.com/Dicklesworthstone/ttv/internal/streamlink"
	"github.com/Dicklesworthstone/ttv/internal/watch"
)

func TestWatch_LaunchesEachTargetOnce(t *testing.T) {
	env := newTestEnv(t)

	stdout, _, err := executeCommand(t, nil, "watch", "foo", "https://www.twitch.tv/FOO", "baz")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Starting stream for foo...")
	assert.Contains(t, stdout, "Starting stream for baz...")
	assert.Contains(t, stdout, "All 2 stream(s) ended.")

	assert.ElementsMatch(t, []string{"foo", "baz"}, env.launched(t))

	raw, err := os.ReadFile(filepath.Join(env.launchd, "foo"))
	require.NoError(t, err)
	args := strings.Split(strings.TrimSpace(string(raw)), "\n")
	assert.Equal(t, []string{
		"--twitch-disable-ads",
		"--player", filepath.Join(env.home, "fake-mpv"),
		"-a", "--cache=yes --cache-secs=600",
		"https://www.twitch.tv/foo",
		"best",
	}, args)
}

func TestWatch_PartialFailureIsRecorded(t *testing.T) {
	env := newTestEnv(t)

	_, _, err := executeCommand(t, nil, "watch", "foo", "bar", "baz")

	var partial *watch.PartialFailureError
	require.True(t, errors.As(err, &partial))
	require.Len(t, partial.Failures, 1)
	assert.Equal(t, "bar", partial.Failures[0].Target.Login)
	assert.Equal(t, 1, partial.Failures[0].ExitCode)
	assert.Contains(t, err.Error(), "2 succeeded")
	assert.Len(t, env.launched(t), 3)

	store, err := db.Open()
	require.NoError(t, err)
	defer store.Close()
	records, err := store.RecentLaunches(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, records, 3)

	runIDs := map[string]bool{}
	states := map[string]string{}
	for _, r := range records {
		runIDs[r.RunID] = true
		states[r.Login] = r.State
	}
	assert.Len(t, runIDs, 1)
	assert.Equal(t, map[string]string{"foo": "succeeded", "bar": "nonzero_exit", "baz": "succeeded"}, states)

	stdout, _, err := executeCommand(t, nil, "history")
	require.NoError(t, err)
	assert.Contains(t, stdout, "nonzero_exit")
	assert.Contains(t, stdout, "bar")
}

func TestWatch_InvalidInputLaunchesNothing(t *testing.T) {
	env := newTestEnv(t)

	_, _, err := executeCommand(t, nil, "watch", "foo", "http://example.com/foo")

	var invalid *watch.InvalidInputError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "http://example.com/foo", invalid.Input)
	assert.Empty(t, env.launched(t))
}

func TestWatch_MissingPlayerLaunchesNothing(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, os.Remove(filepath.Join(env.home, "fake-mpv")))

	_, _, err := executeCommand(t, nil, "watch", "foo")

	var depErr *streamlink.DependencyMissingError
	require.True(t, errors.As(err, &depErr))
	assert.Equal(t, filepath.Join(env.home, "fake-mpv"), depErr.Name)
	assert.Empty(t, env.launched(t))
}

func TestHistory_Empty(t *testing.T) {
	newTestEnv(t)

	stdout, _, err := executeCommand(t, nil, "history")
	require.NoError(t, err)
	assert.Contains(t, stdout, "No launches recorded yet.")
}

func TestHistory_RejectsBadLimit(t *testing.T) {
	newTestEnv(t)

	_, _, err := executeCommand(t, nil, "history", "--limit", "0")
	assert.Error(t, err)
}

func TestLaunchRecorder(t *testing.T) {
	newTestEnv(t)
	store, err := db.Open()
	require.NoError(t, err)
	defer store.Close()

	rec := &launchRecorder{store: store, runID: "run-1"}
	ctx := context.Background()
	started := time.Date(2026, 10, 19, 20, 0, 0, 0, time.UTC)

	require.NoError(t, rec.RecordOutcome(ctx, watch.Outcome{
		Target: watch.NewTarget("foo"), State: watch.StateLaunchError, Message: "gone", StartedAt: started,
	}))
	require.NoError(t, rec.RecordOutcome(ctx, watch.Outcome{
		Target: watch.NewTarget("bar"), State: watch.StateNonZeroExit, ExitCode: 2, StartedAt: started.Add(time.Second),
	}))

	records, err := store.RecentLaunches(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.NotNil(t, records[0].ExitCode)
	assert.Equal(t, 2, *records[0].ExitCode)
	assert.Nil(t, records[1].ExitCode)
	assert.Equal(t, "gone", records[1].Message)
}
