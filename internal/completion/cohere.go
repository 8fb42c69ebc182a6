package completion

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	cohere "github.com/cohere-ai/cohere-go/v2"
	cohereclient "github.com/cohere-ai/cohere-go/v2/client"
	"github.com/kovalyov-valentin/sales-outreach-bot/internal/model"
)

const DefaultCohereModel = "command-r"

// CohereCompleter использует Cohere Chat API
type CohereCompleter struct {
	client *cohereclient.Client
	model  string
}

func NewCohereCompleter(apiKey, modelName string, httpClient *http.Client) *CohereCompleter {
	if modelName == "" {
		modelName = DefaultCohereModel
	}

	client := cohereclient.NewClient(
		cohereclient.WithToken(apiKey),
		cohereclient.WithHTTPClient(httpClient),
	)

	return &CohereCompleter{client: client, model: modelName}
}

func (c *CohereCompleter) Complete(ctx context.Context, prompt string, temperature float32) (string, error) {
	var (
		modelName = c.model
		temp      = float64(temperature)
	)

	resp, err := c.client.Chat(ctx, &cohere.ChatRequest{
		Message:     prompt,
		Model:       &modelName,
		Temperature: &temp,
	})
	if err != nil {
		return "", fmt.Errorf("%w: cohere: %w", model.ErrCompletion, err)
	}
	if resp == nil {
		return "", fmt.Errorf("%w: cohere: empty response", model.ErrCompletion)
	}

	return strings.TrimSpace(resp.Text), nil
}
