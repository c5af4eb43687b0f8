package chat

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/zhouzirui/pocket-coach/internal/model/chat"
)

const schema = `CREATE TABLE IF NOT EXISTS messages (
	id TEXT PRIMARY KEY,
	sender TEXT,
	message TEXT,
	timestamp TEXT
)`

// Service is the durable log of the single conversation.
type Service struct {
	db  *sql.DB
	now func() time.Time
}

// Option customises a Service.
type Option func(*Service)

// WithClock replaces time.Now as the source of message timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService wraps an open database. Call Initialize before first use.
func NewService(db *sql.DB, opts ...Option) *Service {
	s := &Service{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Initialize creates the messages table if it is missing. Safe on every start.
func (s *Service) Initialize(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return &StorageError{Op: "initialize", Err: err}
	}
	return nil
}

// Append persists a new message and returns it with its id and timestamp.
func (s *Service) Append(ctx context.Context, sender chat.Sender, body string) (chat.Message, error) {
	if !sender.Valid() {
		return chat.Message{}, ErrUnknownSender
	}

	message := chat.Message{
		ID:        uuid.NewString(),
		Sender:    sender,
		Body:      body,
		Timestamp: chat.FormatTimestamp(s.now()),
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (id, sender, message, timestamp) VALUES (?, ?, ?, ?)`,
		message.ID, string(message.Sender), message.Body, message.Timestamp,
	)
	if err != nil {
		log.Printf("[store] append failed sender=%s: %v", sender, err)
		return chat.Message{}, &StorageError{Op: "append", Err: err}
	}
	return message, nil
}

// List returns the whole conversation, oldest first. Same-second messages keep
// insertion order.
func (s *Service) List(ctx context.Context) ([]chat.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, sender, message, timestamp FROM messages ORDER BY timestamp ASC, rowid ASC`)
	if err != nil {
		return nil, &StorageError{Op: "list", Err: err}
	}
	defer rows.Close()

	messages := make([]chat.Message, 0, 16)
	for rows.Next() {
		var (
			msg    chat.Message
			sender string
		)
		if err := rows.Scan(&msg.ID, &sender, &msg.Body, &msg.Timestamp); err != nil {
			return nil, &StorageError{Op: "list", Err: err}
		}
		msg.Sender = chat.Sender(sender)
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "list", Err: err}
	}
	return messages, nil
}

// Clear irreversibly deletes every message.
func (s *Service) Clear(ctx context.Context) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM messages`)
	if err != nil {
		return &StorageError{Op: "clear", Err: err}
	}
	if n, err := res.RowsAffected(); err == nil {
		log.Printf("[store] cleared %d messages", n)
	}
	return nil
}
