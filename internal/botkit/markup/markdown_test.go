package markup

import (
	"testing"

	"github.com/go-playground/assert/v2"
)

func TestEscapeForMarkdown(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain text", "plain text"},
		{"Q1 results: +3.5%!", "Q1 results: \\+3\\.5%\\!"},
		{"a_b*c[d](e)", "a\\_b\\*c\\[d\\]\\(e\\)"},
		{"x-y=z|w", "x\\-y\\=z\\|w"},
		{"back\\slash", "back\\\\slash"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, EscapeForMarkdown(tt.in))
	}
}

func TestBold(t *testing.T) {
	assert.Equal(t, "*Rates rise\\.*", Bold("Rates rise."))
}

func TestLink(t *testing.T) {
	assert.Equal(t, "[Read \\(FT\\)](https://x.example/a_(b\\))", Link("Read (FT)", "https://x.example/a_(b)"))
}
