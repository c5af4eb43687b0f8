package testutil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/zhouzirui/pocket-coach/internal/config"
	"github.com/zhouzirui/pocket-coach/internal/service/ai"
	chatService "github.com/zhouzirui/pocket-coach/internal/service/chat"
	"github.com/zhouzirui/pocket-coach/internal/storage"
)

// NewStore opens an initialized message store in a temp directory.
func NewStore(t *testing.T) *chatService.Service {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "chat_history.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	svc := chatService.NewService(db)
	if err := svc.Initialize(context.Background()); err != nil {
		t.Fatalf("Failed to initialize store: %v", err)
	}
	return svc
}

// OllamaStub is a fake generate endpoint with a fixed answer.
type OllamaStub struct {
	Server *httptest.Server

	mu      sync.Mutex
	status  int
	body    string
	prompts int
}

// NewOllamaStub starts a stub that answers every request with status and body.
func NewOllamaStub(t *testing.T, status int, body string) *OllamaStub {
	t.Helper()
	stub := &OllamaStub{status: status, body: body}
	stub.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		stub.mu.Lock()
		stub.prompts++
		status, body := stub.status, stub.body
		stub.mu.Unlock()

		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(stub.Server.Close)
	return stub
}

// Requests reports how many generate calls the stub has served.
func (s *OllamaStub) Requests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prompts
}

// Gateway returns a model gateway pointed at the stub.
func (s *OllamaStub) Gateway() *ai.Service {
	return ai.NewService(ai.NewOllamaModel(config.ModelConfig{URL: s.Server.URL, Name: "gemma3:1b"}))
}
