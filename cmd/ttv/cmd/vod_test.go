package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dicklesworthstone/ttv/internal/config"
	"github.com/Dicklesworthstone/ttv/internal/watch"
)

func TestVod_SelectsAndLaunches(t *testing.T) {
	env := newTestEnv(t)
	env.saveCredentials(t, config.Credentials{ClientID: "cid", ClientSecret: "secret"})

	stdout, _, err := executeCommand(t, strings.NewReader("9\nabc\n2\n"), "vod", "foo")
	require.NoError(t, err)
	assert.Contains(t, stdout, "VODs for Foo:")
	assert.Contains(t, stdout, " 1) ")
	assert.Contains(t, stdout, "Yesterday (3h2m1s)")
	assert.Equal(t, 2, strings.Count(stdout, "Invalid selection."))
	assert.Contains(t, stdout, "Starting VOD 222...")

	assert.Equal(t, []string{"222"}, env.launched(t))
	raw, err := os.ReadFile(filepath.Join(env.launchd, "222"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "https://www.twitch.tv/videos/222")
}

func TestVod_EmptySelectionCancels(t *testing.T) {
	env := newTestEnv(t)
	env.saveCredentials(t, config.Credentials{ClientID: "cid", ClientSecret: "secret"})

	_, _, err := executeCommand(t, strings.NewReader("\n"), "vod", "foo")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no selection provided")
	assert.Empty(t, env.launched(t))
}

func TestVod_UnknownStreamer(t *testing.T) {
	env := newTestEnv(t)
	env.saveCredentials(t, config.Credentials{ClientID: "cid", ClientSecret: "secret"})

	_, _, err := executeCommand(t, nil, "vod", "ghost")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"ghost" not found`)
}

func TestVod_RejectsPaddedLogin(t *testing.T) {
	env := newTestEnv(t)
	env.saveCredentials(t, config.Credentials{ClientID: "cid", ClientSecret: "secret"})

	_, _, err := executeCommand(t, nil, "vod", " foo")
	var invalid *watch.InvalidInputError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, " foo", invalid.Input)

	tokenCalls, helixCalls := env.twitch.counts()
	assert.Zero(t, tokenCalls)
	assert.Zero(t, helixCalls)
}

func TestPromptSelection(t *testing.T) {
	var out strings.Builder
	n, err := promptSelection(strings.NewReader(" 3 \n"), &out, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, "Select a VOD (1-3): ", out.String())

	_, err = promptSelection(strings.NewReader("0\n"), &strings.Builder{}, 3)
	assert.Error(t, err)
}
