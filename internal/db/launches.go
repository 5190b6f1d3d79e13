package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// LaunchRecord is one row of the launch activity log.
type LaunchRecord struct {
	RunID     string
	Login     string
	State     string
	ExitCode  *int
	Message   string
	StartedAt time.Time
	Duration  time.Duration
}

// RecordLaunch appends a launch outcome to the activity log.
func (d *DB) RecordLaunch(ctx context.Context, r LaunchRecord) error {
	if d == nil || d.conn == nil {
		return fmt.Errorf("db is nil")
	}

	var exitCode sql.NullInt64
	if r.ExitCode != nil {
		exitCode = sql.NullInt64{Int64: int64(*r.ExitCode), Valid: true}
	}

	_, err := d.conn.ExecContext(ctx, `
INSERT INTO launch_log (run_id, login, state, exit_code, message, started_at, duration_ms)
VALUES (?, ?, ?, ?, ?, ?, ?)
`, r.RunID, r.Login, r.State, exitCode, r.Message, r.StartedAt.UTC(), r.Duration.Milliseconds())
	if err != nil {
		return fmt.Errorf("record launch %s: %w", r.Login, err)
	}
	return nil
}

// RecentLaunches returns up to limit log rows, newest first.
func (d *DB) RecentLaunches(ctx context.Context, limit int) ([]LaunchRecord, error) {
	if d == nil || d.conn == nil {
		return nil, fmt.Errorf("db is nil")
	}
	if limit <= 0 {
		limit = 20
	}

	rows, err := d.conn.QueryContext(ctx, `
SELECT run_id, login, state, exit_code, COALESCE(message, ''), started_at, duration_ms
FROM launch_log
ORDER BY started_at DESC, id DESC
LIMIT ?
`, limit)
	if err != nil {
		return nil, fmt.Errorf("query launches: %w", err)
	}
	defer rows.Close()

	var out []LaunchRecord
	for rows.Next() {
		var (
			r          LaunchRecord
			exitCode   sql.NullInt64
			durationMs int64
		)
		if err := rows.Scan(&r.RunID, &r.Login, &r.State, &exitCode, &r.Message, &r.StartedAt, &durationMs); err != nil {
			return nil, fmt.Errorf("scan launch: %w", err)
		}
		if exitCode.Valid {
			code := int(exitCode.Int64)
			r.ExitCode = &code
		}
		r.Duration = time.Duration(durationMs) * time.Millisecond
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate launches: %w", err)
	}
	return out, nil
}
