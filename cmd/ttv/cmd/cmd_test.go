package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/Dicklesworthstone/ttv/internal/config"
)

// fakeTwitch serves the token endpoint and the Helix routes ttv uses.
type fakeTwitch struct {
	server *httptest.Server

	mu          sync.Mutex
	tokenCalls  int
	helixCalls  int
	rejectUsers int
	users       map[string][3]string // login -> id, login, display name
	live        map[string]bool      // user id -> live
}

func newFakeTwitch(t *testing.T) *fakeTwitch {
	t.Helper()
	f := &fakeTwitch{
		users: map[string][3]string{
			"foo": {"1", "foo", "Foo"},
			"bar": {"2", "bar", "Bar"},
		},
		live: map[string]bool{"1": true},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/token", f.handleToken)
	mux.HandleFunc("/helix/users", f.handleUsers)
	mux.HandleFunc("/helix/streams", f.handleStreams)
	mux.HandleFunc("/helix/videos", f.handleVideos)
	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeTwitch) counts() (token, helix int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tokenCalls, f.helixCalls
}

func (f *fakeTwitch) handleToken(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.tokenCalls++
	n := f.tokenCalls
	f.mu.Unlock()

	if err := r.ParseForm(); err != nil || r.PostForm.Get("grant_type") != "client_credentials" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if r.PostForm.Get("client_secret") != "secret" {
		w.WriteHeader(http.StatusForbidden)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"access_token":"tok-%d","expires_in":3600,"token_type":"bearer"}`, n)
}

func (f *fakeTwitch) authorize(w http.ResponseWriter, r *http.Request) bool {
	f.mu.Lock()
	f.helixCalls++
	f.mu.Unlock()
	if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer tok-") || r.Header.Get("Client-Id") != "cid" {
		w.WriteHeader(http.StatusUnauthorized)
		return false
	}
	return true
}

func (f *fakeTwitch) handleUsers(w http.ResponseWriter, r *http.Request) {
	if !f.authorize(w, r) {
		return
	}
	f.mu.Lock()
	reject := f.rejectUsers > 0
	if reject {
		f.rejectUsers--
	}
	f.mu.Unlock()
	if reject {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	var data []map[string]string
	for _, login := range r.URL.Query()["login"] {
		if u, ok := f.users[strings.ToLower(login)]; ok {
			data = append(data, map[string]string{"id": u[0], "login": u[1], "display_name": u[2]})
		}
	}
	writeData(w, data)
}

func (f *fakeTwitch) handleStreams(w http.ResponseWriter, r *http.Request) {
	if !f.authorize(w, r) {
		return
	}
	var data []map[string]any
	for _, id := range r.URL.Query()["user_id"] {
		if !f.live[id] {
			continue
		}
		for _, u := range f.users {
			if u[0] == id {
				data = append(data, map[string]any{
					"user_id":      id,
					"user_login":   u[1],
					"user_name":    u[2],
					"game_name":    "Just Chatting",
					"viewer_count": 42,
					"started_at":   time.Now().Add(-90 * time.Minute).UTC().Format(time.RFC3339),
				})
			}
		}
	}
	writeData(w, data)
}

func (f *fakeTwitch) handleVideos(w http.ResponseWriter, r *http.Request) {
	if !f.authorize(w, r) {
		return
	}
	writeData(w, []map[string]string{
		{"id": "111", "title": "Yesterday", "duration": "3h2m1s", "url": "https://www.twitch.tv/videos/111", "created_at": "2026-10-18T20:00:00Z"},
		{"id": "222", "title": "Last week", "duration": "1h0m0s", "url": "https://www.twitch.tv/videos/222", "created_at": "2026-10-11T20:00:00Z"},
	})
}

func writeData(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"data": data})
}

// testEnv isolates every path ttv touches under a temp TTV_HOME.
type testEnv struct {
	home    string
	twitch  *fakeTwitch
	launchd string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake launchers are shell scripts")
	}

	home := t.TempDir()
	t.Setenv("TTV_HOME", home)
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("XDG_DATA_HOME", "")

	env := &testEnv{home: home, twitch: newFakeTwitch(t), launchd: filepath.Join(home, "launched")}
	require.NoError(t, os.MkdirAll(env.launchd, 0o755))

	launcher := filepath.Join(home, "fake-streamlink")
	launcherScript := `#!/bin/sh
if [ "$1" = "--version" ]; then echo "streamlink 6.7.0"; exit 0; fi
for arg in "$@"; do
  case "$arg" in
    https://*) url="$arg" ;;
  esac
done
name=$(basename "$url")
printf '%s\n' "$@" > "` + env.launchd + `/$name"
case "$name" in
  bar) exit 1 ;;
esac
exit 0
`
	require.NoError(t, os.WriteFile(launcher, []byte(launcherScript), 0o755))

	player := filepath.Join(home, "fake-mpv")
	require.NoError(t, os.WriteFile(player, []byte("#!/bin/sh\necho 'mpv 0.38.0'\n"), 0o755))

	settings := fmt.Sprintf(`api:
  base_url: %[1]s/helix
  token_url: %[1]s/token
  timeout: 2s
player:
  launcher: %[2]s
  player: %[3]s
`, env.twitch.server.URL, launcher, player)
	require.NoError(t, os.WriteFile(filepath.Join(home, "settings.yaml"), []byte(settings), 0o600))

	return env
}

func (e *testEnv) saveCredentials(t *testing.T, creds config.Credentials) {
	t.Helper()
	require.NoError(t, config.NewStore("").Save(&config.Config{Twitch: creds}))
}

func (e *testEnv) loadConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.NewStore("").Load()
	require.NoError(t, err)
	return cfg
}

func (e *testEnv) launched(t *testing.T) []string {
	t.Helper()
	entries, err := os.ReadDir(e.launchd)
	require.NoError(t, err)
	var names []string
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func executeCommand(t *testing.T, stdin io.Reader, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)

	if stdin == nil {
		stdin = strings.NewReader("")
	}
	var stdout, stderr bytes.Buffer
	rootCmd.SetIn(stdin)
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}
