package adapter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"faqgraph/backend/internal/graph"
	"faqgraph/backend/pkg/logger"
)

// LLMAdapter handles communication with an OpenAI-compatible chat endpoint.
// It is the process's generation capability: the core never talks to the
// model API directly.
type LLMAdapter struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// NewLLMAdapter creates a new LLM adapter. An empty baseURL targets the
// public API; a gateway URL may be supplied instead.
func NewLLMAdapter(baseURL, apiKey, model string) *LLMAdapter {
	if apiKey == "" {
		apiKey = "dummy-key"
	}

	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}

	return &LLMAdapter{
		client: openai.NewClientWithConfig(config),
		model:  model,
		logger: logger.Get(),
	}
}

// Generate produces a chat completion for the user message, preceded by the
// system instructions and any prior conversation history
func (a *LLMAdapter) Generate(ctx context.Context, systemPrompt, userMsg string, history []graph.Message) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	if systemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		})
	}
	for _, msg := range history {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    chatRole(msg.Role),
			Content: msg.Content,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: userMsg,
	})

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       a.model,
		Messages:    messages,
		Temperature: 0.7,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in chat completion response")
	}

	a.logger.Debug("Chat completion generated",
		zap.String("model", a.model),
		zap.Int("history_len", len(history)),
	)
	return resp.Choices[0].Message.Content, nil
}

// GenerateJSON produces a completion constrained to the JSON schema derived
// from out's type and unmarshals the result into out
func (a *LLMAdapter) GenerateJSON(ctx context.Context, systemPrompt, userMsg, schemaName string, out any) error {
	reflector := jsonschema.Reflector{
		DoNotReference: true,
		ExpandedStruct: true,
	}
	schema := reflector.Reflect(out)

	schemaJSON, err := json.Marshal(schema)
	if err != nil {
		return fmt.Errorf("failed to marshal response schema: %w", err)
	}

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userMsg},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   schemaName,
				Schema: json.RawMessage(schemaJSON),
				Strict: false,
			},
		},
		Temperature: 0,
	})
	if err != nil {
		return fmt.Errorf("structured completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return fmt.Errorf("no choices in structured completion response")
	}

	content := resp.Choices[0].Message.Content
	if err := json.Unmarshal([]byte(content), out); err != nil {
		return fmt.Errorf("failed to parse structured response: %w", err)
	}
	return nil
}

func chatRole(role string) string {
	switch role {
	case graph.RoleAssistant:
		return openai.ChatMessageRoleAssistant
	case graph.RoleSystem:
		return openai.ChatMessageRoleSystem
	default:
		return openai.ChatMessageRoleUser
	}
}
