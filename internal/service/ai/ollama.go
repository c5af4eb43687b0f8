package ai

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/zhouzirui/pocket-coach/internal/config"
)

// StatusError is returned when the inference server answers with a non-200 status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("ollama non-success status=%d body=%s", e.StatusCode, e.Body)
}

// OllamaModel adapts the Ollama /api/generate endpoint to eino's ChatModel.
// The conversation is flattened into a single "User:/Assistant:" transcript
// ending with an "Assistant:" cue; streaming is never requested.
type OllamaModel struct {
	url        string
	model      string
	httpClient *http.Client
}

var _ model.ChatModel = (*OllamaModel)(nil)

// NewOllamaModel creates an adapter for the configured endpoint. A zero timeout
// leaves the call unbounded.
func NewOllamaModel(cfg config.ModelConfig) *OllamaModel {
	return &OllamaModel{
		url:   cfg.URL,
		model: cfg.Name,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// Generate sends one blocking generate request.
func (m *OllamaModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	modelName := m.model
	options := model.GetCommonOptions(&model.Options{Model: &modelName}, opts...)
	if options.Model != nil && *options.Model != "" {
		modelName = *options.Model
	}

	payload, err := sonic.Marshal(generateRequest{
		Model:  modelName,
		Prompt: FlattenPrompt(input),
		Stream: false,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal ollama request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create ollama request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ollama request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed reading ollama response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var parsed generateResponse
	if err := sonic.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse ollama response: %w", err)
	}

	return schema.AssistantMessage(strings.TrimSpace(parsed.Response), nil), nil
}

// Stream satisfies model.BaseChatModel by delivering the full reply as one chunk.
func (m *OllamaModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := m.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

// BindTools is a no-op: the generate endpoint is used without tool calling.
func (m *OllamaModel) BindTools(_ []*schema.ToolInfo) error {
	return nil
}

// FlattenPrompt renders chat messages as the plain-text instruction the generate
// endpoint expects.
func FlattenPrompt(messages []*schema.Message) string {
	var builder strings.Builder
	for _, msg := range messages {
		if msg == nil {
			continue
		}
		switch msg.Role {
		case schema.System:
			builder.WriteString(msg.Content)
		case schema.User:
			builder.WriteString("\nUser: ")
			builder.WriteString(msg.Content)
		case schema.Assistant:
			builder.WriteString("\nAssistant: ")
			builder.WriteString(msg.Content)
		}
	}
	builder.WriteString("\nAssistant:")
	return builder.String()
}
