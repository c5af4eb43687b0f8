package ai

import (
	"context"
	"fmt"
	"log"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/zhouzirui/pocket-coach/internal/model/persona"
)

// Service is the stateless model gateway.
type Service struct {
	chatModel model.BaseChatModel
	template  prompt.ChatTemplate
}

// NewService creates a gateway on top of chatModel, normally an *OllamaModel.
func NewService(chatModel model.BaseChatModel) *Service {
	return &Service{
		chatModel: chatModel,
		template: prompt.FromMessages(
			schema.FString,
			schema.SystemMessage("{system}"),
			schema.UserMessage("{query}"),
		),
	}
}

// Query asks the model to answer userPrompt in the voice of p. It never returns
// an error; failures are carried inside the Reply. An unknown persona panics.
func (s *Service) Query(ctx context.Context, userPrompt string, p persona.Persona) Reply {
	input := map[string]any{
		"system": p.SystemPrompt(),
		"query":  userPrompt,
	}

	messages, err := s.template.Format(ctx, input)
	if err != nil {
		return Reply{Err: fmt.Errorf("failed to format prompt: %w", err)}
	}

	response, err := s.chatModel.Generate(ctx, messages)
	if err != nil {
		log.Printf("[ai] query failed persona=%s: %v", p, err)
		return Reply{Err: err}
	}

	log.Printf("[ai] generated response persona=%s, length=%d", p, len(response.Content))
	return Reply{Text: response.Content}
}
