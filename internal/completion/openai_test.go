package completion

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/assert/v2"
	"github.com/kovalyov-valentin/sales-outreach-bot/internal/model"
)

func TestOpenAICompleter_Complete(t *testing.T) {
	var got struct {
		Model       string  `json:"model"`
		Temperature float32 `json:"temperature"`
		Messages    []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		_ = json.NewDecoder(r.Body).Decode(&got)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"  Supply Chain Director \n"},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	c := NewOpenAICompleter("test-key", srv.URL+"/v1", "")
	text, err := c.Complete(context.Background(), "who to target?", 0.2)

	assert.Equal(t, nil, err)
	assert.Equal(t, "Supply Chain Director", text)
	assert.Equal(t, DefaultOpenAIModel, got.Model)
	assert.Equal(t, float32(0.2), got.Temperature)
	assert.Equal(t, 1, len(got.Messages))
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Equal(t, "who to target?", got.Messages[0].Content)
}

func TestOpenAICompleter_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1","choices":[]}`))
	}))
	defer srv.Close()

	_, err := NewOpenAICompleter("k", srv.URL, "gpt-4o-mini").Complete(context.Background(), "p", 0.7)

	assert.Equal(t, true, errors.Is(err, model.ErrCompletion))
}

func TestOpenAICompleter_RejectedRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	_, err := NewOpenAICompleter("k", srv.URL, "").Complete(context.Background(), "p", 0.2)

	assert.Equal(t, true, errors.Is(err, model.ErrCompletion))
	assert.Equal(t, true, errors.Is(err, ErrRejected))
}

func TestNew_Providers(t *testing.T) {
	_, err := New(Config{Provider: ProviderOpenAI})
	assert.NotEqual(t, nil, err)

	_, err = New(Config{Provider: "llama"})
	assert.NotEqual(t, nil, err)

	c, err := New(Config{OpenAIKey: "k"})
	assert.Equal(t, nil, err)
	_, ok := c.(*Resilient)
	assert.Equal(t, true, ok)

	_, err = New(Config{Provider: ProviderCohere, CohereKey: "k"})
	assert.Equal(t, nil, err)

	_, err = New(Config{Provider: ProviderAnthropic})
	assert.NotEqual(t, nil, err)
}
