package cli

import (
	"bytes"
	"context"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zhouzirui/pocket-coach/internal/service/chat"
	"github.com/zhouzirui/pocket-coach/internal/storage"
	"github.com/zhouzirui/pocket-coach/internal/testutil"
)

func setupEnv(t *testing.T, status int, body string) (string, *testutil.OllamaStub) {
	t.Helper()
	stub := testutil.NewOllamaStub(t, status, body)
	for _, key := range []string{"POCKET_COACH_CONFIG", "PORT", "MODEL_NAME", "MODEL_TIMEOUT", "DEFAULT_PERSONA"} {
		t.Setenv(key, "")
	}
	dbPath := filepath.Join(t.TempDir(), "chat_history.db")
	t.Setenv("DB_PATH", dbPath)
	t.Setenv("OLLAMA_URL", stub.Server.URL)
	return dbPath, stub
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	var stdout, stderr bytes.Buffer
	root.SetArgs(args)
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), err
}

func countMessages(t *testing.T, dbPath string) int {
	t.Helper()
	db, err := storage.Open(dbPath)
	if err != nil {
		t.Fatalf("Open err: %v", err)
	}
	defer db.Close()
	messages, err := chat.NewService(db).List(context.Background())
	if err != nil {
		t.Fatalf("List err: %v", err)
	}
	return len(messages)
}

func TestVersionAndHelp(t *testing.T) {
	for _, args := range [][]string{{"--version"}, {"--help"}} {
		if _, err := run(t, "", args...); err != nil {
			t.Fatalf("%v: unexpected error %v", args, err)
		}
	}
}

func TestAskStoresTurn(t *testing.T) {
	dbPath, stub := setupEnv(t, http.StatusOK, `{"response":" Drink some water. "}`)

	out, err := run(t, "", "ask", "--plain", "--persona", "coach", "what", "now?")
	if err != nil {
		t.Fatalf("ask err: %v", err)
	}
	if strings.TrimSpace(out) != "Drink some water." {
		t.Fatalf("unexpected output: %q", out)
	}
	if stub.Requests() != 1 {
		t.Fatalf("expected one model call, got %d", stub.Requests())
	}
	if n := countMessages(t, dbPath); n != 2 {
		t.Fatalf("expected 2 stored messages, got %d", n)
	}
}

func TestAskRejectsUnknownPersona(t *testing.T) {
	setupEnv(t, http.StatusOK, `{}`)
	if _, err := run(t, "", "ask", "--persona", "pirate", "hi"); err == nil {
		t.Fatal("expected error for unknown persona")
	}
}

func TestAskModelFailureIsPrinted(t *testing.T) {
	setupEnv(t, http.StatusInternalServerError, "server exploded")

	out, err := run(t, "", "ask", "--plain", "hello")
	if err != nil {
		t.Fatalf("ask err: %v", err)
	}
	if !strings.Contains(out, "⚠️ Error contacting model: server exploded") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestChatLoopStarterAndCommands(t *testing.T) {
	dbPath, _ := setupEnv(t, http.StatusOK, `{"response":"Let's plan it."}`)

	input := strings.Join([]string{
		"3",
		"/persona serious",
		"/persona pirate",
		"thanks",
		"/history",
		"/quit",
		"never sent",
	}, "\n")
	out, err := run(t, input, "chat")
	if err != nil {
		t.Fatalf("chat err: %v", err)
	}

	for _, want := range []string{
		"Quick Start",
		"Do you want to plan your day?",
		"Let's plan it.",
		"Persona set to Serious",
		`Unknown persona "pirate"`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	if n := countMessages(t, dbPath); n != 4 {
		t.Fatalf("expected 4 stored messages, got %d", n)
	}
}

func TestChatNumberIsTextOnceStarted(t *testing.T) {
	dbPath, stub := setupEnv(t, http.StatusOK, `{"response":"ok"}`)

	if _, err := run(t, "hello\n2\n", "chat"); err != nil {
		t.Fatalf("chat err: %v", err)
	}
	if stub.Requests() != 2 {
		t.Fatalf("expected 2 model calls, got %d", stub.Requests())
	}

	db, err := storage.Open(dbPath)
	if err != nil {
		t.Fatalf("Open err: %v", err)
	}
	defer db.Close()
	messages, _ := chat.NewService(db).List(context.Background())
	if len(messages) != 4 || messages[2].Body != "2" {
		t.Fatalf("expected literal \"2\" as a user message, got %+v", messages)
	}
}

func TestChatClearOffersStartersAgain(t *testing.T) {
	dbPath, _ := setupEnv(t, http.StatusOK, `{"response":"ok"}`)

	out, err := run(t, "1\n/clear\n", "chat")
	if err != nil {
		t.Fatalf("chat err: %v", err)
	}
	if strings.Count(out, "Quick Start") != 2 {
		t.Fatalf("expected starters before and after clear:\n%s", out)
	}
	if n := countMessages(t, dbPath); n != 0 {
		t.Fatalf("expected empty log, got %d", n)
	}
}

func TestHistoryExportAndClear(t *testing.T) {
	dbPath, _ := setupEnv(t, http.StatusOK, `{"response":"You can do it"}`)

	if _, err := run(t, "", "ask", "motivate me"); err != nil {
		t.Fatalf("ask err: %v", err)
	}

	out, err := run(t, "", "history")
	if err != nil {
		t.Fatalf("history err: %v", err)
	}
	if !strings.Contains(out, "motivate me") || !strings.Contains(out, "You can do it") {
		t.Fatalf("unexpected history:\n%s", out)
	}

	out, err = run(t, "", "export", "--format", "yaml")
	if err != nil {
		t.Fatalf("export err: %v", err)
	}
	if !strings.Contains(out, "message_count: 2") {
		t.Fatalf("unexpected yaml export:\n%s", out)
	}

	file := filepath.Join(t.TempDir(), "chat.md")
	if _, err := run(t, "", "export", "-f", "md", "-o", file); err != nil {
		t.Fatalf("export to file err: %v", err)
	}
	data, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if !strings.Contains(string(data), "**Coach**") {
		t.Fatalf("unexpected markdown export:\n%s", data)
	}

	if _, err := run(t, "", "export", "--format", "csv"); err == nil {
		t.Fatal("expected error for unsupported format")
	}

	if _, err := run(t, "", "clear"); err != nil {
		t.Fatalf("clear err: %v", err)
	}
	if n := countMessages(t, dbPath); n != 0 {
		t.Fatalf("expected empty log after clear, got %d", n)
	}
}

func TestVerboseLogsResolvedConfig(t *testing.T) {
	dbPath, _ := setupEnv(t, http.StatusOK, `{"response":"ok"}`)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	root := NewRootCommand()
	var stdout, stderr bytes.Buffer
	root.SetArgs([]string{"ask", "--plain", "--verbose", "hi"})
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("ask err: %v", err)
	}

	logs := stderr.String()
	for _, want := range []string{"[cli] store=" + dbPath, "model=gemma3:1b", "persona=Friendly"} {
		if !strings.Contains(logs, want) {
			t.Fatalf("expected %q in logs:\n%s", want, logs)
		}
	}
}
