package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Listen subscribes to the given catalog channels and calls fn for each
// change until ctx is cancelled. It opens its own connection outside the
// pool, so a listener never competes with queries for pooled connections.
func (db *DB) Listen(ctx context.Context, channels []string, fn func(channel string, c Change)) error {
	conn, err := pgx.ConnectConfig(ctx, db.pool.Config().ConnConfig)
	if err != nil {
		return fmt.Errorf("failed to open listen connection: %w", err)
	}
	defer func() {
		_ = conn.Close(context.Background())
	}()

	for _, channel := range channels {
		if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{channel}.Sanitize()); err != nil {
			return fmt.Errorf("failed to listen on %s: %w", channel, err)
		}
	}

	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("failed waiting for notifications: %w", err)
		}
		fn(n.Channel, decodeChange(n.Payload))
	}
}

// decodeChange parses a trigger payload. Unreadable payloads still count
// as a change so subscribers reload.
func decodeChange(payload string) Change {
	var c Change
	if err := json.Unmarshal([]byte(payload), &c); err != nil {
		return Change{Op: "unknown"}
	}
	return c
}
