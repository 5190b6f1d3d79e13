package twitch

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Sentinel errors for well-known upstream responses.
var (
	ErrInvalidClientID     = errors.New("invalid Twitch client ID (check `ttv config --client-id`)")
	ErrInvalidClientSecret = errors.New("invalid Twitch client secret (check `ttv config --client-secret`)")
	ErrRateLimited         = errors.New("Twitch API rate limit exceeded, try again later")
	ErrUnauthorized        = errors.New("unauthorized Twitch API request (run `ttv auth` to refresh your token)")
)

// UnexpectedResponseError is returned for any other non-2xx response.
type UnexpectedResponseError struct {
	Endpoint string
	Status   int
	Body     string
}

func (e *UnexpectedResponseError) Error() string {
	if e == nil {
		return "unexpected Twitch response"
	}
	msg := fmt.Sprintf("unexpected Twitch %s response (%d %s)", e.Endpoint, e.Status, http.StatusText(e.Status))
	if body := strings.TrimSpace(e.Body); body != "" {
		msg += ": " + body
	}
	return msg
}

// TransportError wraps network-level failures (DNS, connect, timeout).
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	if e == nil || e.Err == nil {
		return "Twitch request failed"
	}
	return fmt.Sprintf("Twitch request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// tokenStatusError maps a non-2xx token endpoint status.
func tokenStatusError(status int, body string) error {
	switch status {
	case http.StatusBadRequest:
		return ErrInvalidClientID
	case http.StatusForbidden:
		return ErrInvalidClientSecret
	case http.StatusTooManyRequests:
		return ErrRateLimited
	default:
		return &UnexpectedResponseError{Endpoint: "auth", Status: status, Body: body}
	}
}

// apiStatusError maps a non-2xx Helix status. It mirrors the token endpoint
// taxonomy and adds 401.
func apiStatusError(status int, body string) error {
	if status == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	err := tokenStatusError(status, body)
	var unexpected *UnexpectedResponseError
	if errors.As(err, &unexpected) {
		unexpected.Endpoint = "API"
	}
	return err
}
