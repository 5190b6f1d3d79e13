package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Default endpoints and binaries.
const (
	DefaultAPIBaseURL  = "https://api.twitch.tv/helix"
	DefaultTokenURL    = "https://id.twitch.tv/oauth2/token"
	DefaultAPITimeout  = 5 * time.Second
	DefaultLauncherBin = "streamlink"
	DefaultPlayerBin   = "mpv"
)

// Duration wraps time.Duration for YAML values like "5s" or "1m30s".
type Duration time.Duration

// Duration returns the value as a time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// UnmarshalYAML parses a Go duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		*d = 0
		return nil
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// APISettings controls the Twitch HTTP client.
type APISettings struct {
	BaseURL  string   `yaml:"base_url"`
	TokenURL string   `yaml:"token_url"`
	Timeout  Duration `yaml:"timeout"`
}

// PlayerSettings names the playback binaries.
type PlayerSettings struct {
	Launcher string `yaml:"launcher"`
	Player   string `yaml:"player"`
}

// Settings is the on-disk layout of settings.yaml.
type Settings struct {
	API    APISettings    `yaml:"api"`
	Player PlayerSettings `yaml:"player"`
}

// DefaultSettings returns the built-in settings.
func DefaultSettings() *Settings {
	return &Settings{
		API: APISettings{
			BaseURL:  DefaultAPIBaseURL,
			TokenURL: DefaultTokenURL,
			Timeout:  Duration(DefaultAPITimeout),
		},
		Player: PlayerSettings{
			Launcher: DefaultLauncherBin,
			Player:   DefaultPlayerBin,
		},
	}
}

// SettingsPath returns the path to settings.yaml.
func SettingsPath() string {
	return filepath.Join(Dir(), "settings.yaml")
}

// LoadSettings reads settings.yaml from the default location.
func LoadSettings() (*Settings, error) {
	return LoadSettingsFrom(SettingsPath())
}

// LoadSettingsFrom reads settings from path, filling unset values with
// defaults. A missing file yields the defaults.
func LoadSettingsFrom(path string) (*Settings, error) {
	settings := DefaultSettings()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return nil, fmt.Errorf("read settings %s: %w", path, err)
	}

	var fromFile Settings
	if err := yaml.Unmarshal(data, &fromFile); err != nil {
		return nil, fmt.Errorf("parse settings %s: %w", path, err)
	}
	settings.merge(fromFile)
	return settings, nil
}

func (s *Settings) merge(other Settings) {
	if v := strings.TrimSpace(other.API.BaseURL); v != "" {
		s.API.BaseURL = strings.TrimRight(v, "/")
	}
	if v := strings.TrimSpace(other.API.TokenURL); v != "" {
		s.API.TokenURL = v
	}
	if other.API.Timeout > 0 {
		s.API.Timeout = other.API.Timeout
	}
	if v := strings.TrimSpace(other.Player.Launcher); v != "" {
		s.Player.Launcher = v
	}
	if v := strings.TrimSpace(other.Player.Player); v != "" {
		s.Player.Player = v
	}
}
