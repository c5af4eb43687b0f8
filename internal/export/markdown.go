package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/zhouzirui/pocket-coach/internal/model/chat"
)

// MarkdownExporter exports the transcript as a Markdown document.
type MarkdownExporter struct{}

func (e *MarkdownExporter) Export(transcript *Transcript, w io.Writer) error {
	if _, err := fmt.Fprintf(w, "# %s\n\n**Messages:** %d\n\n---\n\n", transcript.Title, transcript.MessageCount); err != nil {
		return err
	}

	for i, msg := range transcript.Messages {
		label := "Coach"
		if msg.Sender == chat.SenderUser {
			label = "You"
		}
		if _, err := fmt.Fprintf(w, "**%s** (%s)\n\n%s\n\n", label, msg.Timestamp, escapeMarkdown(msg.Body)); err != nil {
			return err
		}
		if i < len(transcript.Messages)-1 {
			if _, err := io.WriteString(w, "---\n\n"); err != nil {
				return err
			}
		}
	}
	return nil
}

// escapeMarkdown escapes emphasis markers outside fenced code blocks.
func escapeMarkdown(text string) string {
	lines := strings.Split(text, "\n")
	inCodeBlock := false

	for i, line := range lines {
		if strings.HasPrefix(line, "```") {
			inCodeBlock = !inCodeBlock
			continue
		}
		if inCodeBlock {
			continue
		}
		line = strings.ReplaceAll(line, "**", "\\*\\*")
		lines[i] = strings.ReplaceAll(line, "__", "\\_\\_")
	}

	return strings.Join(lines, "\n")
}

func (e *MarkdownExporter) Extension() string {
	return "md"
}
