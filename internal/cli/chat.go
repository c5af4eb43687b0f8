package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zhouzirui/pocket-coach/internal/model/chat"
	"github.com/zhouzirui/pocket-coach/internal/model/persona"
	"github.com/zhouzirui/pocket-coach/internal/service/turn"
)

const chatHelp = "Commands: /persona <name>, /history, /clear, /quit"

func newChatCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			return a.chatLoop(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

// chatLoop reads lines from in until EOF or /quit, running one turn per line.
func (a *app) chatLoop(ctx context.Context, in io.Reader, out io.Writer) error {
	session := chat.NewSession(a.persona)

	messages, err := a.store.List(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, a.renderer.Header(session.Persona))
	if len(messages) > 0 {
		fmt.Fprintln(out, a.renderer.Transcript(messages))
	}
	a.offerStarters(out, session, len(messages) == 0)
	fmt.Fprintln(out, chatHelp)

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for {
		fmt.Fprint(out, "💭 ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			quit, err := a.handleCommand(ctx, out, session, line)
			if err != nil {
				return err
			}
			if quit {
				return nil
			}
			continue
		}

		if err := a.handleInput(ctx, out, session, line); err != nil {
			return err
		}
	}
}

func (a *app) handleCommand(ctx context.Context, out io.Writer, session *chat.Session, line string) (bool, error) {
	name, arg, _ := strings.Cut(line, " ")
	switch name {
	case "/quit", "/exit":
		return true, nil
	case "/clear":
		if err := a.store.Clear(ctx); err != nil {
			return false, err
		}
		session.Reset()
		fmt.Fprintln(out, "🧹 Conversation cleared.")
		a.offerStarters(out, session, true)
	case "/persona":
		p, err := persona.Parse(arg)
		if err != nil || strings.TrimSpace(arg) == "" {
			fmt.Fprintf(out, "Unknown persona %q. Choose one of: %s\n", strings.TrimSpace(arg), personaNames())
			return false, nil
		}
		session.Persona = p
		fmt.Fprintf(out, "🧠 Persona set to %s.\n", p)
	case "/history":
		messages, err := a.store.List(ctx)
		if err != nil {
			return false, err
		}
		fmt.Fprintln(out, a.renderer.Transcript(messages))
	default:
		fmt.Fprintln(out, chatHelp)
	}
	return false, nil
}

func (a *app) handleInput(ctx context.Context, out io.Writer, session *chat.Session, line string) error {
	var (
		result turn.Turn
		err    error
	)

	fmt.Fprintln(out, a.renderer.Thinking())
	if index, ok := a.starterIndex(ctx, session, line); ok {
		result, err = a.runner.Starter(ctx, index, session.Persona)
		if err == nil {
			session.StarterShown = true
		}
	} else {
		result, err = a.runner.Run(ctx, line, session.Persona)
	}
	if errors.Is(err, turn.ErrEmptyMessage) {
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(out, a.renderer.Message(result.User))
	fmt.Fprintln(out, a.renderer.Message(result.Bot))
	return nil
}

// starterIndex maps "1".."4" to a starter while the quick-start menu is offered.
func (a *app) starterIndex(ctx context.Context, session *chat.Session, line string) (int, bool) {
	n, err := strconv.Atoi(line)
	if err != nil || n < 1 || n > len(chat.Starters()) {
		return 0, false
	}
	messages, err := a.store.List(ctx)
	if err != nil || !session.ShowStarters(len(messages) == 0) {
		return 0, false
	}
	return n - 1, true
}

func (a *app) offerStarters(out io.Writer, session *chat.Session, logEmpty bool) {
	if !session.ShowStarters(logEmpty) {
		return
	}
	fmt.Fprintln(out, a.renderer.Starters(chat.Starters()))
	fmt.Fprintln(out, "Type a number to use a starter, or write your own message.")
}

func personaNames() string {
	names := make([]string, 0, 4)
	for _, p := range persona.All() {
		names = append(names, string(p))
	}
	return strings.Join(names, ", ")
}
