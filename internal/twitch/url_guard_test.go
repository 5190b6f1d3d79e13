package twitch

import (
	"testing"
)

func TestValidateEndpoint(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{name: "empty", raw: "", wantErr: true},
		{name: "whitespace only", raw: "   ", wantErr: true},
		{name: "invalid url", raw: "://invalid", wantErr: true},
		{name: "missing host", raw: "https:///token", wantErr: true},
		{name: "token endpoint", raw: "https://id.twitch.tv/oauth2/token"},
		{name: "helix", raw: "https://api.twitch.tv/helix"},
		{name: "apex host", raw: "https://twitch.tv/x"},
		{name: "http on allowlisted host", raw: "http://api.twitch.tv/helix", wantErr: true},
		{name: "http localhost", raw: "http://localhost:8080/token"},
		{name: "http loopback ip", raw: "http://127.0.0.1:8080/token"},
		{name: "https loopback", raw: "https://localhost:8443/token"},
		{name: "foreign host", raw: "https://evil.example.org/token", wantErr: true},
		{name: "suffix trick", raw: "https://eviltwitch.tv/token", wantErr: true},
		{name: "ftp scheme", raw: "ftp://id.twitch.tv/token", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateEndpoint(tt.raw, allowedHosts)
			if tt.wantErr && err == nil {
				t.Errorf("validateEndpoint(%q) should error", tt.raw)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("validateEndpoint(%q) error = %v", tt.raw, err)
			}
		})
	}
}

func TestNewClient_RejectsForeignEndpoints(t *testing.T) {
	if _, err := NewClient(Options{BaseURL: "https://api.example.com/helix"}); err == nil {
		t.Error("NewClient() should reject a non-Twitch API base")
	}
	if _, err := NewClient(Options{TokenURL: "http://id.twitch.tv/oauth2/token"}); err == nil {
		t.Error("NewClient() should reject a plain-http token endpoint")
	}
	if _, err := NewClient(Options{}); err != nil {
		t.Errorf("NewClient() with defaults error = %v", err)
	}
}
