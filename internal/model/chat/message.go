package chat

import "time"

// TimestampLayout is the sortable second-granularity form stored with every message.
const TimestampLayout = "2006-01-02 15:04:05"

// Sender identifies who produced a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Valid reports whether s is one of the known senders.
func (s Sender) Valid() bool {
	return s == SenderUser || s == SenderBot
}

// Message is one immutable turn of the conversation log.
type Message struct {
	ID        string `json:"id" yaml:"id"`
	Sender    Sender `json:"sender" yaml:"sender"`
	Body      string `json:"body" yaml:"body"`
	Timestamp string `json:"timestamp" yaml:"timestamp"`
}

// FormatTimestamp renders t in TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}
