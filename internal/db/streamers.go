package db

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Streamer is a followed channel.
type Streamer struct {
	ID          string
	Login       string
	DisplayName string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// UpsertStreamer inserts or updates a streamer keyed by its external id.
func (d *DB) UpsertStreamer(ctx context.Context, s Streamer) error {
	if d == nil || d.conn == nil {
		return fmt.Errorf("db is nil")
	}
	if strings.TrimSpace(s.ID) == "" {
		return fmt.Errorf("streamer id is required")
	}

	_, err := d.conn.ExecContext(ctx, `
INSERT INTO streamers (id, name, display_name)
VALUES (?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    name = excluded.name,
    display_name = excluded.display_name,
    updated_at = CURRENT_TIMESTAMP
`, s.ID, s.Login, s.DisplayName)
	if err != nil {
		return fmt.Errorf("upsert streamer %s: %w", s.Login, err)
	}
	return nil
}

// ListStreamers returns every followed streamer sorted by login.
func (d *DB) ListStreamers(ctx context.Context) ([]Streamer, error) {
	if d == nil || d.conn == nil {
		return nil, fmt.Errorf("db is nil")
	}

	rows, err := d.conn.QueryContext(ctx, `
SELECT id, name, display_name, created_at, updated_at
FROM streamers
ORDER BY name COLLATE NOCASE
`)
	if err != nil {
		return nil, fmt.Errorf("list streamers: %w", err)
	}
	defer rows.Close()

	var out []Streamer
	for rows.Next() {
		var s Streamer
		if err := rows.Scan(&s.ID, &s.Login, &s.DisplayName, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan streamer: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate streamers: %w", err)
	}
	return out, nil
}

// DeleteStreamerByLogin removes streamers whose login matches
// case-insensitively and returns how many rows were removed.
func (d *DB) DeleteStreamerByLogin(ctx context.Context, login string) (int64, error) {
	if d == nil || d.conn == nil {
		return 0, fmt.Errorf("db is nil")
	}

	res, err := d.conn.ExecContext(ctx, `DELETE FROM streamers WHERE name = ? COLLATE NOCASE`, strings.TrimSpace(login))
	if err != nil {
		return 0, fmt.Errorf("delete streamer %s: %w", login, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}
