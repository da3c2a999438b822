package journal

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/starford/ansuz/internal/models"
)

const (
	defaultRecent = 50
	maxRecent     = 500
)

// Record appends one invocation.
func (db *DB) Record(ctx context.Context, inv models.Invocation) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO invocations (command, path, checksum, ok, error_kind, error, duration_ns, invoked_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, inv.Command, inv.Path, inv.Checksum, inv.OK, inv.ErrorKind, inv.Error,
		inv.Duration.Nanoseconds(), inv.InvokedAt.UTC())
	if err != nil {
		return fmt.Errorf("journal: record: %w", err)
	}
	return nil
}

// Recent returns up to limit invocations, newest first. A non-positive
// limit selects the default; limits above the maximum are clamped.
func (db *DB) Recent(ctx context.Context, limit int) ([]models.Invocation, error) {
	if limit <= 0 {
		limit = defaultRecent
	}
	if limit > maxRecent {
		limit = maxRecent
	}
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, command, path, checksum, ok, error_kind, error, duration_ns, invoked_at
		FROM invocations
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("journal: recent: %w", err)
	}
	defer rows.Close()

	out := []models.Invocation{}
	for rows.Next() {
		var inv models.Invocation
		var durNS int64
		if err := rows.Scan(&inv.ID, &inv.Command, &inv.Path, &inv.Checksum, &inv.OK,
			&inv.ErrorKind, &inv.Error, &durNS, &inv.InvokedAt); err != nil {
			return nil, fmt.Errorf("journal: scan: %w", err)
		}
		inv.Duration = time.Duration(durNS)
		out = append(out, inv)
	}
	return out, rows.Err()
}

// Count returns the number of recorded invocations.
func (db *DB) Count(ctx context.Context) (int, error) {
	var n int
	if err := db.conn.QueryRowContext(ctx, `SELECT count(*) FROM invocations`).Scan(&n); err != nil {
		return 0, fmt.Errorf("journal: count: %w", err)
	}
	return n, nil
}

// Observer returns a command observer that records every invocation.
// Failures are logged and otherwise ignored.
func (db *DB) Observer(logger *slog.Logger) func(context.Context, models.Invocation) {
	return func(ctx context.Context, inv models.Invocation) {
		if err := db.Record(context.WithoutCancel(ctx), inv); err != nil {
			logger.Warn("journal: record failed",
				slog.String("command", inv.Command),
				slog.String("error", err.Error()))
		}
	}
}
