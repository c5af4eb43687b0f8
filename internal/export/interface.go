package export

import (
	"fmt"
	"io"

	"github.com/zhouzirui/pocket-coach/internal/model/chat"
)

// Transcript is the exported form of the conversation log.
type Transcript struct {
	Title        string         `json:"title" yaml:"title"`
	MessageCount int            `json:"messageCount" yaml:"message_count"`
	Messages     []chat.Message `json:"messages" yaml:"messages"`
}

// NewTranscript wraps messages for export.
func NewTranscript(messages []chat.Message) *Transcript {
	if messages == nil {
		messages = []chat.Message{}
	}
	return &Transcript{
		Title:        "Pocket Coach",
		MessageCount: len(messages),
		Messages:     messages,
	}
}

// Exporter writes a transcript in one format.
type Exporter interface {
	Export(transcript *Transcript, w io.Writer) error
	Extension() string
}

// NewExporter creates a new exporter based on format
func NewExporter(format string) (Exporter, error) {
	switch format {
	case "md", "markdown":
		return &MarkdownExporter{}, nil
	case "yaml", "yml":
		return &YAMLExporter{}, nil
	case "json":
		return &JSONExporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (supported: json, yaml, md)", format)
	}
}
