package archive

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"question-exporter/internal/collector"
)

// Store is the local message archive the collector scans. The archiver
// bot appends incoming channel messages here; message ids are per-chat
// monotonically increasing, which is exactly what the checkpointed
// traversal needs.
type Store struct {
	db *sql.DB
}

func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS messages (
			channel_id INTEGER NOT NULL,
			message_id INTEGER NOT NULL,
			channel_name TEXT NOT NULL,
			author_is_bot INTEGER NOT NULL,
			content TEXT NOT NULL,
			created_at INTEGER NOT NULL,
			PRIMARY KEY (channel_id, message_id)
		)
	`)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Append stores one message. Re-delivered messages are ignored.
func (s *Store) Append(ctx context.Context, m collector.Message) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO messages
			(channel_id, message_id, channel_name, author_is_bot, content, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, m.ChannelID, m.ID, m.ChannelName, boolToInt(m.AuthorIsBot), m.Content, m.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}
	return nil
}

// ListAfter implements collector.Source: messages strictly after
// afterID, oldest first.
func (s *Store) ListAfter(ctx context.Context, channelID, afterID int64, limit int) ([]collector.Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT channel_id, message_id, channel_name, author_is_bot, content, created_at
		FROM messages
		WHERE channel_id = ? AND message_id > ?
		ORDER BY message_id
		LIMIT ?
	`, channelID, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var out []collector.Message
	for rows.Next() {
		var (
			m         collector.Message
			isBot     int
			createdAt int64
		)
		if err := rows.Scan(&m.ChannelID, &m.ID, &m.ChannelName, &isBot, &m.Content, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		m.AuthorIsBot = isBot != 0
		m.CreatedAt = time.Unix(createdAt, 0).UTC()
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read messages: %w", err)
	}
	return out, nil
}

// Channels lists every channel present in the archive, for runs that
// scan everything instead of a configured id list.
func (s *Store) Channels(ctx context.Context) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT channel_id FROM messages ORDER BY channel_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query channels: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan channel id: %w", err)
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read channels: %w", err)
	}
	return out, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
