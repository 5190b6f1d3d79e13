package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dicklesworthstone/ttv/internal/auth"
	"github.com/Dicklesworthstone/ttv/internal/config"
	"github.com/Dicklesworthstone/ttv/internal/twitch"
)

// session is the per-invocation state shared by commands that talk to
// Twitch. The credential record is loaded once and threaded through.
type session struct {
	settings *config.Settings
	store    *config.Store
	cfg      config.Config
	client   *twitch.Client
	auth     *auth.Manager

	// refreshed is set once a token exchange has happened in this session.
	refreshed bool
}

func openSession() (*session, error) {
	settings, err := config.LoadSettings()
	if err != nil {
		return nil, err
	}

	store := config.NewStore("")
	cfg, err := store.Load()
	if err != nil {
		return nil, err
	}

	opts := twitch.OptionsFromSettings(settings)
	opts.Logger = slog.Default()
	client, err := twitch.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("twitch client: %w", err)
	}

	return &session{
		settings: settings,
		store:    store,
		cfg:      *cfg,
		client:   client,
		auth:     auth.NewManager(client, store, auth.WithLogger(slog.Default())),
	}, nil
}

// credential returns a request credential, refreshing the token first when
// it is missing or expired.
func (s *session) credential(ctx context.Context) (twitch.Credential, error) {
	cfg, err := s.auth.EnsureFresh(ctx, s.cfg)
	if err != nil {
		return twitch.Credential{}, err
	}
	if cfg.Twitch.AccessToken != s.cfg.Twitch.AccessToken {
		s.refreshed = true
	}
	s.cfg = cfg
	return twitch.CredentialFrom(cfg.Twitch), nil
}

// withCredential calls fn with a fresh credential. If Twitch rejects a cached
// token (revoked server-side), it refreshes once and retries. A session never
// exchanges tokens more than once.
func withCredential[T any](ctx context.Context, s *session, fn func(twitch.Credential) (T, error)) (T, error) {
	cred, err := s.credential(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	out, err := fn(cred)
	if !errors.Is(err, twitch.ErrUnauthorized) || s.refreshed {
		return out, err
	}

	slog.Debug("access token rejected, refreshing once")
	cfg, refreshErr := s.auth.Refresh(ctx, s.cfg)
	if refreshErr != nil {
		return out, fmt.Errorf("%w (refresh failed: %v)", err, refreshErr)
	}
	s.cfg = cfg
	s.refreshed = true
	return fn(twitch.CredentialFrom(cfg.Twitch))
}
