package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/zhouzirui/pocket-coach/internal/model/chat"
	"github.com/zhouzirui/pocket-coach/internal/model/persona"
)

const defaultWidth = 80

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("255")).
			Padding(0, 1)

	personaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243")).
			Italic(true)

	userBubbleStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("24")).
			Foreground(lipgloss.Color("255")).
			Padding(0, 1)

	botBubbleStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Padding(0, 1)

	timestampStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	starterStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	emptyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

// Renderer draws the conversation as chat bubbles: user turns on the right,
// bot turns on the left, each with its timestamp.
type Renderer struct {
	width int
}

// NewRenderer creates a renderer for a terminal of the given width.
func NewRenderer(width int) *Renderer {
	if width <= 20 {
		width = defaultWidth
	}
	return &Renderer{width: width}
}

// Header renders the title line with the active persona.
func (r *Renderer) Header(p persona.Persona) string {
	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("🖤 Pocket Coach"),
		personaStyle.Render(" persona: "+string(p)),
	)
}

// Transcript renders every message in order.
func (r *Renderer) Transcript(messages []chat.Message) string {
	if len(messages) == 0 {
		return emptyStyle.Render("No messages yet.")
	}
	blocks := make([]string, 0, len(messages))
	for _, msg := range messages {
		blocks = append(blocks, r.Message(msg))
	}
	return strings.Join(blocks, "\n")
}

// Message renders a single bubble.
func (r *Renderer) Message(msg chat.Message) string {
	bubbleWidth := r.width * 8 / 10

	style, align := botBubbleStyle, lipgloss.Left
	if msg.Sender == chat.SenderUser {
		style, align = userBubbleStyle, lipgloss.Right
	}

	body := Sanitize(msg.Body)
	// Border and padding take four columns.
	if lipgloss.Width(body)+4 > bubbleWidth {
		style = style.Width(bubbleWidth - 2)
	}

	bubble := lipgloss.JoinVertical(align,
		style.Render(body),
		timestampStyle.Render(msg.Timestamp),
	)
	return lipgloss.PlaceHorizontal(r.width, align, bubble)
}

// Starters renders the numbered quick-start menu.
func (r *Renderer) Starters(starters []string) string {
	lines := make([]string, 0, len(starters)+1)
	lines = append(lines, titleStyle.Render("✨ Quick Start"))
	for i, q := range starters {
		lines = append(lines, starterStyle.Render(fmt.Sprintf("  %d. %s", i+1, q)))
	}
	return strings.Join(lines, "\n")
}

// Sanitize removes terminal escape sequences and control characters from text
// stored verbatim in the log, keeping newlines and tabs.
func Sanitize(text string) string {
	text = ansi.Strip(text)
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, text)
}

// Thinking renders the waiting indicator shown while the model answers.
func (r *Renderer) Thinking() string {
	return emptyStyle.Render("Thinking...")
}
