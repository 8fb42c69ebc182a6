package completion

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Completer - внешний сервис генерации текста: промпт и температура на входе, текст на выходе
type Completer interface {
	Complete(ctx context.Context, prompt string, temperature float32) (string, error)
}

const (
	ProviderOpenAI    = "openai"
	ProviderCohere    = "cohere"
	ProviderAnthropic = "anthropic"
)

// Запрос отклонен сервисом (ключ, модель, формат). Повторять бессмысленно
var ErrRejected = errors.New("request rejected")

type Config struct {
	Provider string

	OpenAIKey     string
	OpenAIBaseURL string
	OpenAIModel   string

	CohereKey   string
	CohereModel string

	AnthropicKey   string
	AnthropicModel string

	// Таймаут одного вызова и политика повторов
	Timeout time.Duration
	Retries int
	Backoff time.Duration
}

// New собирает клиента выбранного провайдера и оборачивает его таймаутом и повторами
func New(cfg Config) (Completer, error) {
	var (
		backend    Completer
		httpClient = &http.Client{}
	)

	switch cfg.Provider {
	case "", ProviderOpenAI:
		if cfg.OpenAIKey == "" {
			return nil, fmt.Errorf("openai key is not configured")
		}
		backend = NewOpenAICompleter(cfg.OpenAIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel)
	case ProviderCohere:
		if cfg.CohereKey == "" {
			return nil, fmt.Errorf("cohere key is not configured")
		}
		backend = NewCohereCompleter(cfg.CohereKey, cfg.CohereModel, httpClient)
	case ProviderAnthropic:
		if cfg.AnthropicKey == "" {
			return nil, fmt.Errorf("anthropic key is not configured")
		}
		backend = NewAnthropicCompleter(cfg.AnthropicKey, cfg.AnthropicModel)
	default:
		return nil, fmt.Errorf("unknown completion provider %q", cfg.Provider)
	}

	return NewResilient(backend, cfg.Timeout, cfg.Retries, cfg.Backoff), nil
}
