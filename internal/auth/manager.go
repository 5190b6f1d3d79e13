// Package auth keeps the Twitch app access token usable.
//
// A cached token is trusted only when it is non-empty and carries an expiry
// that is still in the future. Anything else is refreshed with a
// client-credentials exchange, and the new token is persisted before the
// caller sees it.
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dicklesworthstone/ttv/internal/config"
	"github.com/Dicklesworthstone/ttv/internal/twitch"
)

// TokenExchanger performs the client-credentials grant.
type TokenExchanger interface {
	ExchangeClientCredentials(ctx context.Context, clientID, clientSecret string) (*twitch.Token, error)
}

// Saver persists a complete config record.
type Saver interface {
	Save(cfg *config.Config) error
}

// Manager decides whether a token needs refreshing and performs the refresh.
type Manager struct {
	exchanger TokenExchanger
	store     Saver
	now       func() time.Time
	logger    *slog.Logger
}

// Option customizes a Manager.
type Option func(*Manager)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewManager creates a manager that exchanges tokens with exchanger and
// writes refreshed records to store.
func NewManager(exchanger TokenExchanger, store Saver, opts ...Option) *Manager {
	m := &Manager{
		exchanger: exchanger,
		store:     store,
		now:       time.Now,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// NeedsRefresh reports whether the cached token must be replaced at now.
// A token without an expiry is never trusted.
func NeedsRefresh(c config.Credentials, now time.Time) bool {
	if c.TrimmedAccessToken() == "" || c.ExpiresAt == nil {
		return true
	}
	return !now.Before(*c.ExpiresAt)
}

// EnsureFresh returns cfg unchanged when its token is usable, and otherwise
// the refreshed record.
func (m *Manager) EnsureFresh(ctx context.Context, cfg config.Config) (config.Config, error) {
	if !NeedsRefresh(cfg.Twitch, m.now()) {
		m.logger.Debug("access token still valid", "expires_at", cfg.Twitch.ExpiresAt)
		return cfg, nil
	}
	m.logger.Debug("access token missing or expired, refreshing")
	return m.Refresh(ctx, cfg)
}

// Refresh exchanges the client credentials for a new token, persists the
// updated record with a single write and returns it. On any failure nothing
// is written and cfg is returned unchanged.
func (m *Manager) Refresh(ctx context.Context, cfg config.Config) (config.Config, error) {
	clientID := cfg.Twitch.TrimmedClientID()
	clientSecret := cfg.Twitch.TrimmedClientSecret()

	var missing []string
	if clientID == "" {
		missing = append(missing, "client ID")
	}
	if clientSecret == "" {
		missing = append(missing, "client secret")
	}
	if len(missing) > 0 {
		return cfg, &MissingCredentialsError{Fields: missing}
	}

	tok, err := m.exchanger.ExchangeClientCredentials(ctx, clientID, clientSecret)
	if err != nil {
		return cfg, err
	}
	if tok == nil || tok.AccessToken == "" {
		return cfg, fmt.Errorf("token endpoint returned no access token")
	}

	// Expiry is anchored to the local clock; server skew is not compensated.
	expiresAt := m.now().UTC().Add(tok.ExpiresIn)

	updated := cfg
	updated.Twitch.AccessToken = tok.AccessToken
	updated.Twitch.ExpiresAt = &expiresAt

	if err := m.store.Save(&updated); err != nil {
		return cfg, fmt.Errorf("save refreshed token: %w", err)
	}

	m.logger.Debug("access token refreshed", "expires_at", expiresAt.Format(time.RFC3339))
	return updated, nil
}
