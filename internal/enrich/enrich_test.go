package enrich

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
	"github.com/kovalyov-valentin/sales-outreach-bot/internal/model"
)

// Отвечает по первому слову промпта, чтобы различать вызовы
type scriptedCompleter struct {
	mu    sync.Mutex
	temps map[string]float32
	calls atomic.Int32
	fail  string
	delay time.Duration
}

func (c *scriptedCompleter) Complete(ctx context.Context, prompt string, temperature float32) (string, error) {
	c.calls.Add(1)
	if c.delay > 0 {
		select {
		case <-time.After(c.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	kind := kindOf(prompt)

	c.mu.Lock()
	if c.temps == nil {
		c.temps = map[string]float32{}
	}
	c.temps[kind] = temperature
	c.mu.Unlock()

	if kind == c.fail {
		return "", model.ErrCompletion
	}

	switch kind {
	case "persona":
		return "  COO\n", nil
	case "impact":
		return "4", nil
	case "subject":
		title := prompt[strings.Index(prompt, "\"")+1:]
		title = title[:strings.Index(title, "\"")]
		return "Subject for " + title, nil
	default:
		persona := prompt[strings.Index(prompt, "Persona: ")+len("Persona: "):]
		persona = persona[:strings.Index(persona, "\n")]
		headline := prompt[strings.Index(prompt, "Headline: ")+len("Headline: "):]
		headline = headline[:strings.Index(headline, "\n")]
		return "Dear " + persona + ", about " + headline, nil
	}
}

func kindOf(prompt string) string {
	switch {
	case strings.Contains(prompt, "persona (job title)"):
		return "persona"
	case strings.Contains(prompt, "On a scale of 1-5"):
		return "impact"
	case strings.Contains(prompt, "subject line"):
		return "subject"
	default:
		return "email"
	}
}

func items(titles ...string) []model.RelevantItem {
	out := make([]model.RelevantItem, 0, len(titles))
	for _, t := range titles {
		out = append(out, model.RelevantItem{Title: t, Link: "https://x/" + t, Sector: "finance"})
	}
	return out
}

func TestEnrichItem(t *testing.T) {
	c := &scriptedCompleter{}
	e := NewEnricher(c, Config{Company: "Oxford Economics"})

	draft := e.EnrichItem(context.Background(), items("Rates rise")[0])

	assert.Equal(t, nil, draft.Err)
	assert.Equal(t, "COO", draft.Persona)
	assert.Equal(t, "4", draft.Impact)
	assert.Equal(t, "Subject for Rates rise", draft.Subject)
	assert.Equal(t, "Dear COO, about Rates rise", draft.Email)
	assert.Equal(t, int32(4), c.calls.Load())

	assert.Equal(t, float32(0.2), c.temps["persona"])
	assert.Equal(t, float32(0.2), c.temps["impact"])
	assert.Equal(t, float32(0.7), c.temps["subject"])
	assert.Equal(t, float32(0.7), c.temps["email"])
}

func TestEnrichItem_FailureMarksDraft(t *testing.T) {
	e := NewEnricher(&scriptedCompleter{fail: "subject"}, Config{Company: "Acme"})

	draft := e.EnrichItem(context.Background(), items("Rates rise")[0])

	assert.Equal(t, true, draft.Failed())
	assert.Equal(t, true, errors.Is(draft.Err, model.ErrCompletion))
	assert.Equal(t, "Rates rise", draft.Item.Title)
}

func TestEnrichAll_KeepsOrderAndIsolatesFailures(t *testing.T) {
	e := NewEnricher(&scriptedCompleter{delay: time.Millisecond}, Config{Company: "Acme", Workers: 3})
	in := items("A", "B", "C", "D", "E")

	drafts := e.EnrichAll(context.Background(), in)

	assert.Equal(t, len(in), len(drafts))
	for i, d := range drafts {
		assert.Equal(t, in[i].Title, d.Item.Title)
		assert.Equal(t, "Subject for "+in[i].Title, d.Subject)
		assert.Equal(t, false, d.Failed())
	}
}

func TestEnrichAll_OneFailingItem(t *testing.T) {
	c := &failingTitleCompleter{title: "B", next: &scriptedCompleter{}}
	e := NewEnricher(c, Config{Company: "Acme", Workers: 2})

	drafts := e.EnrichAll(context.Background(), items("A", "B", "C"))

	assert.Equal(t, false, drafts[0].Failed())
	assert.Equal(t, true, drafts[1].Failed())
	assert.Equal(t, false, drafts[2].Failed())
	assert.Equal(t, "Dear COO, about C", drafts[2].Email)
}

func TestEnrichAll_Empty(t *testing.T) {
	e := NewEnricher(&scriptedCompleter{}, Config{})
	assert.Equal(t, 0, len(e.EnrichAll(context.Background(), nil)))
}

func TestEnrichAll_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := &scriptedCompleter{}
	e := NewEnricher(c, Config{Workers: 1})

	drafts := e.EnrichAll(ctx, items("A", "B"))

	assert.Equal(t, true, errors.Is(drafts[0].Err, context.Canceled))
	assert.Equal(t, true, errors.Is(drafts[1].Err, context.Canceled))
	assert.Equal(t, int32(0), c.calls.Load())
}

func TestImpactPrompt_UsesSectorName(t *testing.T) {
	assert.Equal(t, true, strings.Contains(impactPrompt("Finance", "X"), "B2B clients in Finance"))
	assert.Equal(t, true, strings.Contains(impactPrompt("", "X"), "the selected sector"))
}

type failingTitleCompleter struct {
	title string
	next  *scriptedCompleter
}

func (c *failingTitleCompleter) Complete(ctx context.Context, prompt string, temperature float32) (string, error) {
	if strings.Contains(prompt, "\""+c.title+"\"") || strings.Contains(prompt, "Headline: "+c.title+"\n") {
		return "", model.ErrCompletion
	}
	return c.next.Complete(ctx, prompt, temperature)
}
