package fetcher

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/kovalyov-valentin/sales-outreach-bot/internal/filter"
	"github.com/kovalyov-valentin/sales-outreach-bot/internal/model"
	"github.com/kovalyov-valentin/sales-outreach-bot/internal/source"
	"github.com/samber/lo"
	"github.com/tomakado/containers/set"
	"golang.org/x/sync/errgroup"
)

type Config struct {
	// Какой парсер лент использовать: gofeed или rss
	Parser string
	// Таймаут на загрузку одной ленты
	FeedTimeout time.Duration
	// Сколько лент качаем одновременно
	Workers int
	// Окно свежести и лимит кандидатов
	Window time.Duration
	Limit  int
	// Стоп-слова: запись с таким словом в заголовке или категориях пропускается
	FilterKeywords []string
	Client         *http.Client
}

// Структура сборщика
type Fetcher struct {
	feeds []model.FeedSource
	cfg   Config

	// Подменяются в тестах
	now   func() time.Time
	build func(keywords []string) []source.Source
}

func NewFetcher(feeds []model.FeedSource, cfg Config) *Fetcher {
	if cfg.Workers <= 0 {
		cfg.Workers = max(len(feeds), 1)
	}
	if cfg.Window <= 0 {
		cfg.Window = filter.DefaultWindow
	}
	if cfg.Limit <= 0 {
		cfg.Limit = filter.DefaultLimit
	}
	if cfg.FeedTimeout <= 0 {
		cfg.FeedTimeout = 15 * time.Second
	}
	if cfg.Client == nil {
		cfg.Client = &http.Client{}
	}
	cfg.FilterKeywords = lo.Map(cfg.FilterKeywords, func(kw string, _ int) string {
		return strings.ToLower(strings.TrimSpace(kw))
	})

	f := &Fetcher{
		feeds: feeds,
		cfg:   cfg,
		now:   time.Now,
	}
	f.build = func(keywords []string) []source.Source {
		return source.Build(f.feeds, keywords, f.cfg.Parser, f.cfg.Client)
	}

	return f
}

// FetchRecentNews собирает свежие уникальные записи по ключевым словам сектора.
// Ленты качаются параллельно, но фильтр проходит по ним строго в объявленном порядке.
// Упавшая лента пропускается, это не ошибка цикла
func (f *Fetcher) FetchRecentNews(ctx context.Context, sector model.Sector) (model.CandidateSet, error) {
	sources := f.build(sector.Keywords)

	var (
		batches = make([][]model.RawEntry, len(sources))
		failed  = make([]bool, len(sources))
		g       errgroup.Group
	)
	g.SetLimit(f.cfg.Workers)

	for i, src := range sources {
		g.Go(func() error {
			fetchCtx, cancel := context.WithTimeout(ctx, f.cfg.FeedTimeout)
			defer cancel()

			items, err := src.Fetch(fetchCtx)
			if err != nil {
				slog.Warn("fetching items from source", "source", src.Name(), "sector", sector.ID, "error", err)
				failed[i] = true
				return nil
			}

			batches[i] = items
			return nil
		})
	}

	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return model.CandidateSet{}, err
	}

	// Граница окна считается один раз на цикл и после загрузки,
	// иначе записи, вышедшие пока качались ленты, оказались бы в будущем
	now := f.now().UTC()

	entries, drops := filter.Candidates(batches, now, f.cfg.Window, f.cfg.Limit, f.itemShouldBeSkipped)

	for i, src := range sources {
		if failed[i] {
			drops.FailedSources = append(drops.FailedSources, src.Name())
		}
	}

	slog.Debug("fetch cycle finished",
		"sector", sector.ID,
		"candidates", len(entries),
		"unparseable", drops.Unparseable,
		"stale", drops.Stale,
		"future", drops.Future,
		"duplicate", drops.Duplicate,
		"blocked", drops.Blocked,
		"failed_sources", len(drops.FailedSources),
	)

	return model.CandidateSet{
		Sector:    sector,
		Entries:   entries,
		FetchedAt: now,
		Drops:     drops,
	}, nil
}

// Проходимся по категориям записи и по заголовку.
// Если там есть стоп-слово, запись пропускаем
func (f *Fetcher) itemShouldBeSkipped(item model.RawEntry) bool {
	if len(f.cfg.FilterKeywords) == 0 {
		return false
	}

	categoriesSet := set.New(lo.Map(item.Categories, func(c string, _ int) string {
		return strings.ToLower(c)
	})...)
	title := strings.ToLower(item.Title)

	for _, keyword := range f.cfg.FilterKeywords {
		if keyword == "" {
			continue
		}

		if categoriesSet.Contains(keyword) || strings.Contains(title, keyword) {
			return true
		}
	}

	return false
}
