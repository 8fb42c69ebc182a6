package completion

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/kovalyov-valentin/sales-outreach-bot/internal/model"
	"github.com/sashabaranov/go-openai"
)

const DefaultOpenAIModel = openai.GPT3Dot5Turbo

// Имплементация Completer поверх OpenAI chat completions
type OpenAICompleter struct {
	// sdk для openai
	client *openai.Client
	model  string
}

// baseURL нужен для совместимых API и для тестов, пустой - api.openai.com
func NewOpenAICompleter(apiKey, baseURL, modelName string) *OpenAICompleter {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}

	if modelName == "" {
		modelName = DefaultOpenAIModel
	}

	return &OpenAICompleter{
		client: openai.NewClientWithConfig(cfg),
		model:  modelName,
	}
}

func (c *OpenAICompleter) Complete(ctx context.Context, prompt string, temperature float32) (string, error) {
	// Промпт уходит одним пользовательским сообщением, без общего контекста между вызовами
	request := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		Temperature: temperature,
	}

	resp, err := c.client.CreateChatCompletion(ctx, request)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && rejected(apiErr.HTTPStatusCode) {
			return "", fmt.Errorf("%w: openai: %w: %w", model.ErrCompletion, ErrRejected, err)
		}
		return "", fmt.Errorf("%w: openai: %w", model.ErrCompletion, err)
	}

	// openai может прислать несколько вариантов, берем первый
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: openai: no choices in response", model.ErrCompletion)
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// 4xx кроме 429 повторять не нужно
func rejected(status int) bool {
	return status >= http.StatusBadRequest &&
		status < http.StatusInternalServerError &&
		status != http.StatusTooManyRequests
}
