package cmd

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Dicklesworthstone/ttv/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage Twitch API credentials and tokens",
	Long: `Store the Twitch application credentials used to fetch app access tokens.

Pass "-" as the client secret to type it without echo (or pipe it in).

Examples:
  ttv config --client-id abc123 --client-secret -
  ttv config --access-token xyz --expires-at 2026-01-26T12:34:56Z
  ttv config --show
  ttv config --path`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

func init() {
	configCmd.Flags().String("client-id", "", "Twitch application client ID")
	configCmd.Flags().String("client-secret", "", `Twitch application client secret ("-" to prompt)`)
	configCmd.Flags().String("access-token", "", "app access token for Twitch API calls")
	configCmd.Flags().String("expires-at", "", "token expiry as an RFC3339 timestamp (e.g. 2026-01-26T12:34:56Z)")
	configCmd.Flags().Bool("show", false, "print the current configuration (secrets masked)")
	configCmd.Flags().Bool("path", false, "print the config, settings and database paths")
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	show, _ := cmd.Flags().GetBool("show")
	showPath, _ := cmd.Flags().GetBool("path")
	out := cmd.OutOrStdout()

	updates := []string{"client-id", "client-secret", "access-token", "expires-at"}
	hasUpdates := false
	for _, name := range updates {
		if cmd.Flags().Changed(name) {
			hasUpdates = true
		}
	}

	if showPath {
		printPaths(out)
		if !show && !hasUpdates {
			return nil
		}
	}

	if !show && !hasUpdates {
		return errors.New("at least one flag is required; use --client-id, --client-secret, --access-token, --expires-at, --show or --path")
	}

	store := config.NewStore("")
	cfg, err := store.Load()
	if err != nil {
		return err
	}

	if !hasUpdates {
		return printConfig(out, cfg)
	}

	if cmd.Flags().Changed("client-id") {
		v, _ := cmd.Flags().GetString("client-id")
		cfg.Twitch.ClientID = strings.TrimSpace(v)
	}
	if cmd.Flags().Changed("client-secret") {
		v, _ := cmd.Flags().GetString("client-secret")
		if v == "-" {
			v, err = promptSecret(cmd.InOrStdin(), cmd.ErrOrStderr(), "Client secret: ")
			if err != nil {
				return fmt.Errorf("read client secret: %w", err)
			}
		}
		cfg.Twitch.ClientSecret = strings.TrimSpace(v)
	}
	if cmd.Flags().Changed("access-token") {
		v, _ := cmd.Flags().GetString("access-token")
		cfg.Twitch.AccessToken = strings.TrimSpace(v)
	}
	if cmd.Flags().Changed("expires-at") {
		v, _ := cmd.Flags().GetString("expires-at")
		t, err := time.Parse(time.RFC3339, strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("expires-at must be an RFC3339 timestamp: %w", err)
		}
		t = t.UTC()
		cfg.Twitch.ExpiresAt = &t
	}

	if err := store.Save(cfg); err != nil {
		return err
	}
	fmt.Fprintf(out, "Config updated at %s\n", store.Path())

	if show {
		return printConfig(out, cfg)
	}
	return nil
}

func printConfig(w io.Writer, cfg *config.Config) error {
	data, err := json.MarshalIndent(cfg.Masked(), "", "  ")
	if err != nil {
		return fmt.Errorf("format config: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}

func printPaths(w io.Writer) {
	fmt.Fprintf(w, "config:   %s\n", config.ConfigPath())
	fmt.Fprintf(w, "settings: %s\n", config.SettingsPath())
	fmt.Fprintf(w, "database: %s\n", dbPath())
}

// promptSecret reads a secret from the terminal without echo, or a single
// line when input is piped.
func promptSecret(in io.Reader, prompt io.Writer, label string) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(prompt, label)
		secret, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return "", err
		}
		return string(secret), nil
	}

	reader := bufio.NewReader(in)
	line, err := reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
