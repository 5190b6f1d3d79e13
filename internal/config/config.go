// Package config manages the ttv credential record and tool settings.
//
// Credentials live in config.json and are only ever replaced as a whole file
// (temp file, fsync, rename) so a concurrent reader sees either the old or the
// new record. Tool settings live in settings.yaml next to it.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const appName = "ttv"

// Credentials is the Twitch credential record.
type Credentials struct {
	ClientID     string     `json:"client_id,omitempty"`
	ClientSecret string     `json:"client_secret,omitempty"`
	AccessToken  string     `json:"access_token,omitempty"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
}

// Config is the on-disk layout of config.json.
type Config struct {
	Twitch Credentials `json:"twitch"`
}

// TrimmedClientID returns the client id with surrounding whitespace removed.
func (c Credentials) TrimmedClientID() string { return strings.TrimSpace(c.ClientID) }

// TrimmedClientSecret returns the client secret with surrounding whitespace removed.
func (c Credentials) TrimmedClientSecret() string { return strings.TrimSpace(c.ClientSecret) }

// TrimmedAccessToken returns the access token with surrounding whitespace removed.
func (c Credentials) TrimmedAccessToken() string { return strings.TrimSpace(c.AccessToken) }

// Dir returns the ttv configuration directory.
//
// TTV_HOME wins, then XDG_CONFIG_HOME/ttv, then ~/.config/ttv.
func Dir() string {
	if home := os.Getenv("TTV_HOME"); home != "" {
		return home
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".config", appName)
	}
	return filepath.Join(homeDir, ".config", appName)
}

// ConfigPath returns the path to config.json.
func ConfigPath() string {
	return filepath.Join(Dir(), "config.json")
}

// Store reads and writes config.json.
type Store struct {
	path string
}

// NewStore creates a store at path. An empty path means ConfigPath().
func NewStore(path string) *Store {
	if path == "" {
		path = ConfigPath()
	}
	return &Store{path: path}
}

// Path returns the file the store persists to.
func (s *Store) Path() string {
	return s.path
}

// Load reads the config file. A missing file yields an empty config.
func (s *Store) Load() (*Config, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("read config %s: %w", s.path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", s.path, err)
	}
	if cfg.Twitch.ExpiresAt != nil {
		utc := cfg.Twitch.ExpiresAt.UTC()
		cfg.Twitch.ExpiresAt = &utc
	}
	return &cfg, nil
}

// Save writes the config atomically with owner-only permissions.
func (s *Store) Save(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.Chmod(dir, 0700); err != nil {
		return fmt.Errorf("chmod config dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	data = append(data, '\n')

	return writeFileAtomic(s.path, data)
}

// writeFileAtomic replaces path with data via a temp file in the same directory.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmpFile, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if err := tmpFile.Chmod(0600); err != nil {
		tmpFile.Close()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}

	success = true
	return nil
}

const maskedValue = "********"

// Masked returns a copy of the config with secrets replaced, for display.
func (c Config) Masked() Config {
	out := c
	if out.Twitch.ClientSecret != "" {
		out.Twitch.ClientSecret = maskedValue
	}
	if out.Twitch.AccessToken != "" {
		out.Twitch.AccessToken = maskedValue
	}
	return out
}
