package completion

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/kovalyov-valentin/sales-outreach-bot/internal/model"
)

const (
	DefaultAnthropicModel = "claude-3-5-haiku-latest"
	anthropicMaxTokens    = 1024
)

type AnthropicCompleter struct {
	client *anthropic.Client
	model  anthropic.Model
}

// opts дополняют ключ, например адресом API в тестах
func NewAnthropicCompleter(apiKey, modelName string, opts ...option.RequestOption) *AnthropicCompleter {
	if modelName == "" {
		modelName = DefaultAnthropicModel
	}

	client := anthropic.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...)
	return &AnthropicCompleter{
		client: &client,
		model:  anthropic.Model(modelName),
	}
}

func (c *AnthropicCompleter) Complete(ctx context.Context, prompt string, temperature float32) (string, error) {
	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       c.model,
		MaxTokens:   anthropicMaxTokens,
		Temperature: anthropic.Float(float64(temperature)),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: anthropic: %w", model.ErrCompletion, err)
	}

	// Пустой текст не ошибка: его разбирает вызывающий, как и у openai
	var sb strings.Builder
	for _, block := range resp.Content {
		sb.WriteString(block.Text)
	}

	return strings.TrimSpace(sb.String()), nil
}
