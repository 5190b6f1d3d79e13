package twitch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// MaxBatchSize is the Helix limit on repeated query parameters per request.
const MaxBatchSize = 100

// User is a Helix user.
type User struct {
	ID          string `json:"id"`
	Login       string `json:"login"`
	DisplayName string `json:"display_name"`
}

// Stream is a live Helix stream.
type Stream struct {
	UserID      string    `json:"user_id"`
	UserLogin   string    `json:"user_login"`
	UserName    string    `json:"user_name"`
	GameName    string    `json:"game_name"`
	Title       string    `json:"title"`
	ViewerCount int       `json:"viewer_count"`
	StartedAt   time.Time `json:"started_at"`
}

// Video is an archived broadcast.
type Video struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Duration  string    `json:"duration"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}

type dataResponse[T any] struct {
	Data []T `json:"data"`
}

// Users resolves logins to users. Unknown logins are absent from the result.
func (c *Client) Users(ctx context.Context, cred Credential, logins []string) ([]User, error) {
	var users []User
	for _, batch := range batches(logins, MaxBatchSize) {
		query := url.Values{}
		for _, login := range batch {
			query.Add("login", login)
		}
		var resp dataResponse[User]
		if err := c.get(ctx, cred, "/users", query, &resp); err != nil {
			return nil, err
		}
		users = append(users, resp.Data...)
	}
	return users, nil
}

// Streams returns the live streams among userIDs. Offline users are absent.
func (c *Client) Streams(ctx context.Context, cred Credential, userIDs []string) ([]Stream, error) {
	var streams []Stream
	for _, batch := range batches(userIDs, MaxBatchSize) {
		query := url.Values{}
		for _, id := range batch {
			query.Add("user_id", id)
		}
		query.Set("first", fmt.Sprint(MaxBatchSize))
		var resp dataResponse[Stream]
		if err := c.get(ctx, cred, "/streams", query, &resp); err != nil {
			return nil, err
		}
		streams = append(streams, resp.Data...)
	}
	return streams, nil
}

// Videos lists archived broadcasts for a user, newest first.
func (c *Client) Videos(ctx context.Context, cred Credential, userID string) ([]Video, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("user id is required")
	}
	query := url.Values{}
	query.Set("user_id", userID)
	query.Set("type", "archive")

	var resp dataResponse[Video]
	if err := c.get(ctx, cred, "/videos", query, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// MissingLogins returns the requested logins that have no matching user,
// compared case-insensitively, in request order.
func MissingLogins(requested []string, users []User) []string {
	found := make(map[string]struct{}, len(users))
	for _, u := range users {
		found[strings.ToLower(u.Login)] = struct{}{}
	}
	var missing []string
	for _, login := range requested {
		if _, ok := found[strings.ToLower(login)]; !ok {
			missing = append(missing, login)
		}
	}
	return missing
}

func batches(items []string, size int) [][]string {
	if len(items) == 0 || size <= 0 {
		return nil
	}
	out := make([][]string, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		out = append(out, items[start:end])
	}
	return out
}

func (c *Client) get(ctx context.Context, cred Credential, path string, query url.Values, out any) error {
	if strings.TrimSpace(cred.AccessToken) == "" {
		return ErrUnauthorized
	}

	endpoint := c.baseURL + path
	if encoded := query.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+cred.AccessToken)
	req.Header.Set("Client-Id", cred.ClientID)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Err: fmt.Errorf("read response: %w", err)}
	}
	c.logger.Debug("twitch request", "path", path, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apiStatusError(resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parse Twitch %s response: %w", path, err)
	}
	return nil
}
