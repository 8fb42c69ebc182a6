package completion

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/go-playground/assert/v2"
)

func anthropicServer(t *testing.T, body string) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
}

func TestAnthropicCompleter_Complete(t *testing.T) {
	srv := anthropicServer(t, `{"id":"msg_1","type":"message","role":"assistant","model":"claude-3-5-haiku-latest",`+
		`"content":[{"type":"text","text":"  4\n"}],"stop_reason":"end_turn","stop_sequence":null,`+
		`"usage":{"input_tokens":10,"output_tokens":1}}`)
	defer srv.Close()

	c := NewAnthropicCompleter("test-key", "", option.WithBaseURL(srv.URL), option.WithMaxRetries(0))
	text, err := c.Complete(context.Background(), "score it", 0.2)

	assert.Equal(t, nil, err)
	assert.Equal(t, "4", text)
}

func TestAnthropicCompleter_EmptyContentIsNotAnError(t *testing.T) {
	srv := anthropicServer(t, `{"id":"msg_2","type":"message","role":"assistant","model":"claude-3-5-haiku-latest",`+
		`"content":[],"stop_reason":"end_turn","stop_sequence":null,"usage":{"input_tokens":10,"output_tokens":0}}`)
	defer srv.Close()

	c := NewAnthropicCompleter("test-key", "", option.WithBaseURL(srv.URL), option.WithMaxRetries(0))
	text, err := c.Complete(context.Background(), "filter these", 0.2)

	assert.Equal(t, nil, err)
	assert.Equal(t, "", text)
}
