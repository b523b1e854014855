package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"odireport/config"
)

// SpecRequester sends chart-specification prompts to the configured chat
// model and returns its raw textual reply.
type SpecRequester struct {
	ChatModel model.ChatModel
	Log       func(string)
}

// NewSpecRequester creates a requester backed by an OpenAI-compatible chat
// model (covers OpenAI itself plus compatible endpoints such as Groq via
// BaseURL).
func NewSpecRequester(cfg config.Config, logFunc func(string)) (*SpecRequester, error) {
	if cfg.APIKey == "" && cfg.LLMProvider != "OpenAI-Compatible" {
		return nil, fmt.Errorf("API key not configured")
	}

	chatModel, err := openai.NewChatModel(context.Background(), &openai.ChatModelConfig{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Model:   cfg.ModelName,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	return &SpecRequester{ChatModel: chatModel, Log: logFunc}, nil
}

func (s *SpecRequester) log(msg string) {
	if s.Log != nil {
		s.Log(msg)
	}
}

// RequestChartSpec sends one prompt embedding the dataset columns and the
// user query, and returns the model's raw reply text. Transport and auth
// errors surface to the caller unchanged; there is no retry.
func (s *SpecRequester) RequestChartSpec(ctx context.Context, query string, columns []string) (string, error) {
	prompt := BuildChartSpecPrompt(query, columns)
	s.log(fmt.Sprintf("Chart spec request: %s", strings.ReplaceAll(query, "\n", " ")))

	resp, err := s.ChatModel.Generate(ctx, []*schema.Message{schema.UserMessage(prompt)})
	if err != nil {
		s.log(fmt.Sprintf("Chart spec request failed: %v", err))
		return "", fmt.Errorf("model request failed: %w", err)
	}

	s.log(fmt.Sprintf("Chart spec response: %s", resp.Content))
	return resp.Content, nil
}
