package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/zhouzirui/pocket-coach/internal/config"
	"github.com/zhouzirui/pocket-coach/internal/handler"
	"github.com/zhouzirui/pocket-coach/internal/service/ai"
	"github.com/zhouzirui/pocket-coach/internal/service/chat"
	"github.com/zhouzirui/pocket-coach/internal/storage"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	db, err := storage.Open(cfg.Store.Path)
	if err != nil {
		log.Fatalf("failed to open message store: %v", err)
	}
	defer db.Close()

	chatService := chat.NewService(db)
	if err := chatService.Initialize(ctx); err != nil {
		log.Fatalf("failed to initialize message store: %v", err)
	}
	log.Printf("message store ready at %s", cfg.Store.Path)

	aiService := ai.NewService(ai.NewOllamaModel(cfg.Model))
	log.Printf("model gateway using %s (model=%s)", cfg.Model.URL, cfg.Model.Name)

	router := handler.NewRouter(chatService, aiService, cfg.Persona)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("Pocket Coach backend listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
