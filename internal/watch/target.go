package watch

import (
	"errors"
	"fmt"
	"strings"
)

const (
	channelHost    = "twitch.tv"
	channelBaseURL = "https://www.twitch.tv/"
)

// ErrNoValidTargets is returned when normalization leaves nothing to watch.
var ErrNoValidTargets = errors.New("no valid channels to watch")

// InvalidInputError names an input that is neither a channel URL nor a bare
// login.
type InvalidInputError struct {
	Input string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid channel %q: expected a login (letters, digits, underscore) or https://twitch.tv/<login>", e.Input)
}

// Target is one channel slated for playback.
type Target struct {
	Login string
	URL   string
}

// NewTarget builds a target from an already valid login.
func NewTarget(login string) Target {
	login = strings.ToLower(login)
	return Target{Login: login, URL: channelBaseURL + login}
}

// Normalize turns raw inputs into an ordered, deduplicated target list.
// Any malformed input fails the whole batch.
func Normalize(inputs []string) ([]Target, error) {
	seen := make(map[string]struct{}, len(inputs))
	targets := make([]Target, 0, len(inputs))

	for _, raw := range inputs {
		login, ok := parseInput(raw)
		if !ok {
			return nil, &InvalidInputError{Input: raw}
		}
		login = strings.ToLower(login)
		if _, dup := seen[login]; dup {
			continue
		}
		seen[login] = struct{}{}
		targets = append(targets, NewTarget(login))
	}

	if len(targets) == 0 {
		return nil, ErrNoValidTargets
	}
	return targets, nil
}

// parseInput validates raw as given; surrounding whitespace is not stripped.
func parseInput(raw string) (string, bool) {
	if login, ok := parseChannelURL(raw); ok {
		return login, true
	}
	if IsLogin(raw) {
		return raw, true
	}
	return "", false
}

// parseChannelURL accepts http(s)://[www.]twitch.tv/<login>.
func parseChannelURL(s string) (string, bool) {
	rest, ok := cutPrefixFold(s, "https://")
	if !ok {
		rest, ok = cutPrefixFold(s, "http://")
	}
	if !ok {
		return "", false
	}

	host, segment, found := strings.Cut(rest, "/")
	if !found {
		return "", false
	}
	host = strings.ToLower(host)
	host = strings.TrimPrefix(host, "www.")
	if host != channelHost {
		return "", false
	}

	if segment == "" || strings.ContainsAny(segment, "/?#") {
		return "", false
	}
	if !IsLogin(segment) {
		return "", false
	}
	return segment, true
}

// IsLogin reports whether s is a non-empty run of ASCII letters, digits and
// underscores.
func IsLogin(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '_':
		default:
			return false
		}
	}
	return true
}

func cutPrefixFold(s, prefix string) (string, bool) {
	if len(s) < len(prefix) || !strings.EqualFold(s[:len(prefix)], prefix) {
		return s, false
	}
	return s[len(prefix):], true
}
