package turn

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/zhouzirui/pocket-coach/internal/model/chat"
	"github.com/zhouzirui/pocket-coach/internal/model/persona"
	"github.com/zhouzirui/pocket-coach/internal/service/ai"
)

var (
	ErrEmptyMessage   = errors.New("message is empty")
	ErrUnknownStarter = errors.New("unknown starter prompt")
)

// Store is the part of the message log a turn needs.
type Store interface {
	Append(ctx context.Context, sender chat.Sender, body string) (chat.Message, error)
}

// Gateway answers a prompt in the voice of a persona.
type Gateway interface {
	Query(ctx context.Context, prompt string, p persona.Persona) ai.Reply
}

// Turn is the pair of messages produced by one exchange.
type Turn struct {
	User  chat.Message `json:"user"`
	Bot   chat.Message `json:"bot"`
	Reply ai.Reply     `json:"-"`
}

// Runner appends the user message, asks the gateway and appends its reply.
type Runner struct {
	store   Store
	gateway Gateway
}

// NewRunner wires a store and a gateway.
func NewRunner(store Store, gateway Gateway) *Runner {
	return &Runner{store: store, gateway: gateway}
}

// Run performs one exchange. Storage errors abort the turn; model failures,
// including cancellation of ctx during the model call, are stored as the bot
// message.
func (r *Runner) Run(ctx context.Context, text string, p persona.Persona) (Turn, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Turn{}, ErrEmptyMessage
	}

	userMsg, err := r.store.Append(ctx, chat.SenderUser, text)
	if err != nil {
		return Turn{}, fmt.Errorf("save user message failed: %w", err)
	}

	reply := r.gateway.Query(ctx, text, p)

	// A cancelled caller still gets its failed reply recorded.
	botMsg, err := r.store.Append(context.WithoutCancel(ctx), chat.SenderBot, reply.String())
	if err != nil {
		return Turn{User: userMsg, Reply: reply}, fmt.Errorf("save bot message failed: %w", err)
	}

	return Turn{User: userMsg, Bot: botMsg, Reply: reply}, nil
}

// Starter runs the quick-start prompt at index.
func (r *Runner) Starter(ctx context.Context, index int, p persona.Persona) (Turn, error) {
	starters := chat.Starters()
	if index < 0 || index >= len(starters) {
		return Turn{}, fmt.Errorf("%w: %d", ErrUnknownStarter, index)
	}
	return r.Run(ctx, starters[index], p)
}
