package enrich

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/kovalyov-valentin/sales-outreach-bot/internal/completion"
	"github.com/kovalyov-valentin/sales-outreach-bot/internal/model"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultAnalysisTemperature = 0.2
	DefaultCreativeTemperature = 0.7
	DefaultWorkers             = 4
)

type Config struct {
	Company string
	// Персона и оценка - аналитические вызовы, тема и письмо - творческие
	AnalysisTemperature float32
	CreativeTemperature float32
	Workers             int
	// Название сектора для промпта оценки, по ID сектора
	SectorNames map[string]string
}

// Enricher готовит черновик письма по новости.
// Каждое поле - отдельный независимый вызов сервиса генерации
type Enricher struct {
	completer completion.Completer
	cfg       Config
}

func NewEnricher(completer completion.Completer, cfg Config) *Enricher {
	if cfg.AnalysisTemperature <= 0 {
		cfg.AnalysisTemperature = DefaultAnalysisTemperature
	}
	if cfg.CreativeTemperature <= 0 {
		cfg.CreativeTemperature = DefaultCreativeTemperature
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}

	return &Enricher{completer: completer, cfg: cfg}
}

func (e *Enricher) AssignPersona(ctx context.Context, item model.RelevantItem) (string, error) {
	return e.complete(ctx, "persona", personaPrompt(e.cfg.Company, item.Title), e.cfg.AnalysisTemperature)
}

// ScoreImpact возвращает ответ как есть. Что это число от 1 до 5, никто не проверяет
func (e *Enricher) ScoreImpact(ctx context.Context, item model.RelevantItem) (string, error) {
	return e.complete(ctx, "impact", impactPrompt(e.cfg.SectorNames[item.Sector], item.Title), e.cfg.AnalysisTemperature)
}

func (e *Enricher) GenerateSubject(ctx context.Context, item model.RelevantItem) (string, error) {
	return e.complete(ctx, "subject", subjectPrompt(item.Title), e.cfg.CreativeTemperature)
}

func (e *Enricher) GenerateEmail(ctx context.Context, item model.RelevantItem, persona string) (string, error) {
	return e.complete(ctx, "email", emailPrompt(e.cfg.Company, item.Title, persona), e.cfg.CreativeTemperature)
}

func (e *Enricher) complete(ctx context.Context, field, prompt string, temperature float32) (string, error) {
	text, err := e.completer.Complete(ctx, prompt, temperature)
	if err != nil {
		return "", fmt.Errorf("generate %s: %w", field, err)
	}
	return strings.TrimSpace(text), nil
}

// EnrichItem: персона, оценка и тема идут параллельно, письмо ждет персону.
// Ошибка любого вызова кладется в draft.Err, черновик возвращается всегда
func (e *Enricher) EnrichItem(ctx context.Context, item model.RelevantItem) model.EnrichedDraft {
	draft := model.EnrichedDraft{Item: item}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		persona, err := e.AssignPersona(gctx, item)
		if err != nil {
			return err
		}
		draft.Persona = persona

		email, err := e.GenerateEmail(gctx, item, persona)
		if err != nil {
			return err
		}
		draft.Email = email
		return nil
	})

	g.Go(func() error {
		impact, err := e.ScoreImpact(gctx, item)
		if err != nil {
			return err
		}
		draft.Impact = impact
		return nil
	})

	g.Go(func() error {
		subject, err := e.GenerateSubject(gctx, item)
		if err != nil {
			return err
		}
		draft.Subject = subject
		return nil
	})

	if err := g.Wait(); err != nil {
		slog.Warn("enriching item", "title", item.Title, "error", err)
		draft.Err = err
	}

	return draft
}

// EnrichAll обогащает все новости пулом воркеров.
// Результат лежит по индексу входа, так что порядок совпадает с порядком релевантности
func (e *Enricher) EnrichAll(ctx context.Context, items []model.RelevantItem) []model.EnrichedDraft {
	drafts := make([]model.EnrichedDraft, len(items))
	if len(items) == 0 {
		return drafts
	}

	var (
		wg   sync.WaitGroup
		jobs = make(chan int, len(items))
	)

	for range min(e.cfg.Workers, len(items)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if err := ctx.Err(); err != nil {
					drafts[i] = model.EnrichedDraft{Item: items[i], Err: err}
					continue
				}
				drafts[i] = e.EnrichItem(ctx, items[i])
			}
		}()
	}

	for i := range items {
		jobs <- i
	}
	close(jobs)

	wg.Wait()

	return drafts
}
