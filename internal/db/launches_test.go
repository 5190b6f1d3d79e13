package db

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordLaunch_RoundTrip(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()

	base := time.Date(2026, 10, 19, 20, 0, 0, 0, time.UTC)
	code := 1
	require.NoError(t, d.RecordLaunch(ctx, LaunchRecord{
		RunID: "run-1", Login: "foo", State: "succeeded",
		StartedAt: base, Duration: 90 * time.Minute,
	}))
	require.NoError(t, d.RecordLaunch(ctx, LaunchRecord{
		RunID: "run-1", Login: "bar", State: "nonzero_exit", ExitCode: &code,
		Message: "exit status 1", StartedAt: base.Add(time.Second), Duration: 2 * time.Second,
	}))

	got, err := d.RecentLaunches(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "bar", got[0].Login)
	require.NotNil(t, got[0].ExitCode)
	assert.Equal(t, 1, *got[0].ExitCode)
	assert.Equal(t, "exit status 1", got[0].Message)
	assert.Equal(t, 2*time.Second, got[0].Duration)

	assert.Equal(t, "foo", got[1].Login)
	assert.Nil(t, got[1].ExitCode)
	assert.Equal(t, "run-1", got[1].RunID)
	assert.True(t, got[1].StartedAt.Equal(base))
}

func TestRecentLaunches_Limit(t *testing.T) {
	d := openTestDB(t)
	ctx := context.Background()

	base := time.Date(2026, 10, 19, 20, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, d.RecordLaunch(ctx, LaunchRecord{
			RunID: "run", Login: "foo", State: "succeeded", StartedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	got, err := d.RecentLaunches(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, got, 3)
	assert.True(t, got[0].StartedAt.Equal(base.Add(4*time.Minute)))
}
