package cmd

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dicklesworthstone/ttv/internal/config"
)

func TestConfig_RequiresAFlag(t *testing.T) {
	newTestEnv(t)

	_, _, err := executeCommand(t, nil, "config")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one flag is required")
}

func TestConfig_SetsCredentialsWithPromptedSecret(t *testing.T) {
	env := newTestEnv(t)

	stdout, _, err := executeCommand(t, strings.NewReader("s3cret\n"),
		"config", "--client-id", " cid ", "--client-secret", "-")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Config updated at")

	cfg := env.loadConfig(t)
	assert.Equal(t, "cid", cfg.Twitch.ClientID)
	assert.Equal(t, "s3cret", cfg.Twitch.ClientSecret)
}

func TestConfig_ShowMasksSecrets(t *testing.T) {
	env := newTestEnv(t)
	expires := time.Date(2026, 1, 26, 12, 34, 56, 0, time.UTC)
	env.saveCredentials(t, config.Credentials{
		ClientID:     "cid",
		ClientSecret: "secret",
		AccessToken:  "token",
		ExpiresAt:    &expires,
	})

	stdout, _, err := executeCommand(t, nil, "config", "--show")
	require.NoError(t, err)

	var shown config.Config
	require.NoError(t, json.Unmarshal([]byte(stdout), &shown))
	assert.Equal(t, "cid", shown.Twitch.ClientID)
	assert.Equal(t, "********", shown.Twitch.ClientSecret)
	assert.Equal(t, "********", shown.Twitch.AccessToken)
	require.NotNil(t, shown.Twitch.ExpiresAt)
	assert.True(t, shown.Twitch.ExpiresAt.Equal(expires))
	assert.NotContains(t, stdout, `"secret"`)
}

func TestConfig_ExpiresAt(t *testing.T) {
	env := newTestEnv(t)

	_, _, err := executeCommand(t, nil, "config", "--access-token", "tok", "--expires-at", "2026-01-26T14:34:56+02:00")
	require.NoError(t, err)

	cfg := env.loadConfig(t)
	require.NotNil(t, cfg.Twitch.ExpiresAt)
	assert.Equal(t, time.Date(2026, 1, 26, 12, 34, 56, 0, time.UTC), *cfg.Twitch.ExpiresAt)
	assert.Equal(t, "tok", cfg.Twitch.AccessToken)
}

func TestConfig_RejectsBadExpiresAt(t *testing.T) {
	env := newTestEnv(t)

	_, _, err := executeCommand(t, nil, "config", "--expires-at", "tomorrow")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RFC3339")
	assert.Empty(t, env.loadConfig(t).Twitch.AccessToken)
}

func TestConfig_Path(t *testing.T) {
	env := newTestEnv(t)

	stdout, _, err := executeCommand(t, nil, "config", "--path")
	require.NoError(t, err)
	assert.Contains(t, stdout, env.home+"/config.json")
	assert.Contains(t, stdout, env.home+"/settings.yaml")
	assert.Contains(t, stdout, env.home+"/data/ttv.db")
}

func TestPromptSecret_PipedInput(t *testing.T) {
	secret, err := promptSecret(strings.NewReader("abc\r\n"), &strings.Builder{}, "Secret: ")
	require.NoError(t, err)
	assert.Equal(t, "abc", secret)

	secret, err = promptSecret(strings.NewReader("no-newline"), &strings.Builder{}, "Secret: ")
	require.NoError(t, err)
	assert.Equal(t, "no-newline", secret)

	_, err = promptSecret(strings.NewReader(""), &strings.Builder{}, "Secret: ")
	assert.Error(t, err)
}
