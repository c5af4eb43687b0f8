package cli

import (
	"database/sql"
	"fmt"
	"io"
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/zhouzirui/pocket-coach/internal/config"
	"github.com/zhouzirui/pocket-coach/internal/model/persona"
	"github.com/zhouzirui/pocket-coach/internal/service/ai"
	chatService "github.com/zhouzirui/pocket-coach/internal/service/chat"
	"github.com/zhouzirui/pocket-coach/internal/service/turn"
	"github.com/zhouzirui/pocket-coach/internal/storage"
	"github.com/zhouzirui/pocket-coach/internal/view"
)

var (
	version = "dev"
	commit  = "unknown"
)

type options struct {
	verbose bool
	dbPath  string
	persona string
	width   int
}

// app holds the services shared by every subcommand.
type app struct {
	db       *sql.DB
	store    *chatService.Service
	gateway  *ai.Service
	runner   *turn.Runner
	renderer *view.Renderer
	persona  persona.Persona
}

func (a *app) Close() error {
	return a.db.Close()
}

// NewRootCommand builds the pocketcoach command tree.
func NewRootCommand() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "pocketcoach",
		Short: "Chat with a local model in the terminal",
		Long: `Pocket Coach keeps one conversation with a locally hosted model (Ollama).

Every exchange is stored in a SQLite file and shown as chat bubbles.
Pick a persona to change the tone of the replies:
  Friendly, Serious, Coach, Motivational

Quick Start:
  pocketcoach chat                     # interactive session
  pocketcoach ask "plan my morning"    # single exchange
  pocketcoach history                  # show the stored conversation
  pocketcoach export --format md       # export the conversation`,
		Version:       fmt.Sprintf("%s (commit: %s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.verbose {
				log.SetOutput(cmd.ErrOrStderr())
			} else {
				log.SetOutput(io.Discard)
			}
		},
	}

	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose logging")
	root.PersistentFlags().StringVar(&opts.dbPath, "db", "", "Path to the conversation database (overrides DB_PATH)")
	root.PersistentFlags().StringVarP(&opts.persona, "persona", "p", "", "Persona: Friendly, Serious, Coach or Motivational")
	root.PersistentFlags().IntVar(&opts.width, "width", 80, "Terminal width used for rendering")
	root.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	root.AddCommand(
		newChatCommand(opts),
		newAskCommand(opts),
		newHistoryCommand(opts),
		newExportCommand(opts),
		newClearCommand(opts),
	)
	return root
}

// openApp loads configuration and opens the store. Callers must Close it.
func openApp(cmd *cobra.Command, opts *options) (*app, error) {
	// A missing .env is normal for the CLI.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if opts.dbPath != "" {
		cfg.Store.Path = opts.dbPath
	}

	p := cfg.Persona
	if opts.persona != "" {
		if p, err = persona.Parse(opts.persona); err != nil {
			return nil, err
		}
	}

	db, err := storage.Open(cfg.Store.Path)
	if err != nil {
		return nil, err
	}

	store := chatService.NewService(db)
	if err := store.Initialize(cmd.Context()); err != nil {
		db.Close()
		return nil, err
	}

	log.Printf("[cli] store=%s model=%s persona=%s", cfg.Store.Path, cfg.Model.Name, p)
	gateway := ai.NewService(ai.NewOllamaModel(cfg.Model))
	return &app{
		db:       db,
		store:    store,
		gateway:  gateway,
		runner:   turn.NewRunner(store, gateway),
		renderer: view.NewRenderer(opts.width),
		persona:  p,
	}, nil
}
