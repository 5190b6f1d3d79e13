// Package twitch talks to the Twitch token endpoint and the Helix API.
//
// The client holds no credentials: every call takes the client id and access
// token it should authenticate with.
package twitch

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Dicklesworthstone/ttv/internal/config"
)

// Credential authenticates Helix requests.
type Credential struct {
	ClientID    string
	AccessToken string
}

// CredentialFrom extracts the request credential from a credential record.
func CredentialFrom(c config.Credentials) Credential {
	return Credential{ClientID: c.TrimmedClientID(), AccessToken: c.TrimmedAccessToken()}
}

// Options configures a Client.
type Options struct {
	// BaseURL is the Helix root, e.g. https://api.twitch.tv/helix.
	BaseURL string

	// TokenURL is the OAuth token endpoint.
	TokenURL string

	// Timeout bounds each HTTP request. Ignored when HTTPClient is set.
	Timeout time.Duration

	// HTTPClient overrides the default client.
	HTTPClient *http.Client

	Logger *slog.Logger
}

// OptionsFromSettings builds client options from tool settings.
func OptionsFromSettings(s *config.Settings) Options {
	if s == nil {
		s = config.DefaultSettings()
	}
	return Options{
		BaseURL:  s.API.BaseURL,
		TokenURL: s.API.TokenURL,
		Timeout:  s.API.Timeout.Duration(),
	}
}

// Client is a Twitch API client.
type Client struct {
	baseURL    string
	tokenURL   string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient validates the endpoints and builds a client.
func NewClient(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		opts.BaseURL = config.DefaultAPIBaseURL
	}
	if opts.TokenURL == "" {
		opts.TokenURL = config.DefaultTokenURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = config.DefaultAPITimeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	if err := validateEndpoint(opts.BaseURL, allowedHosts); err != nil {
		return nil, fmt.Errorf("api base url: %w", err)
	}
	if err := validateEndpoint(opts.TokenURL, allowedHosts); err != nil {
		return nil, fmt.Errorf("token url: %w", err)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		tokenURL:   opts.TokenURL,
		httpClient: httpClient,
		logger:     opts.Logger,
	}, nil
}
