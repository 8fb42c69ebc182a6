package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/kovalyov-valentin/sales-outreach-bot/internal/archive"
	"github.com/kovalyov-valentin/sales-outreach-bot/internal/completion"
	"github.com/kovalyov-valentin/sales-outreach-bot/internal/config"
	"github.com/kovalyov-valentin/sales-outreach-bot/internal/enrich"
	"github.com/kovalyov-valentin/sales-outreach-bot/internal/events"
	"github.com/kovalyov-valentin/sales-outreach-bot/internal/fetcher"
	"github.com/kovalyov-valentin/sales-outreach-bot/internal/model"
	"github.com/kovalyov-valentin/sales-outreach-bot/internal/pipeline"
	"github.com/kovalyov-valentin/sales-outreach-bot/internal/relevance"
	"github.com/kovalyov-valentin/sales-outreach-bot/internal/sector"
	"github.com/kovalyov-valentin/sales-outreach-bot/internal/session"
	"github.com/kovalyov-valentin/sales-outreach-bot/internal/source"
	"github.com/kovalyov-valentin/sales-outreach-bot/internal/storage"
	"github.com/samber/lo"

	_ "github.com/lib/pq"
)

// App - собранное ядро и его инфраструктура. Общая сборка для бота, API и CLI
type App struct {
	Service  *pipeline.Service
	Sessions session.Store
	// nil, если архив не настроен
	Archiver *archive.S3Archiver

	closers []func() error
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	a := &App{}

	svc, err := a.build(ctx, cfg)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.Service = svc

	return a, nil
}

func (a *App) build(ctx context.Context, cfg config.Config) (*pipeline.Service, error) {
	catalog, err := sector.Load()
	if err != nil {
		return nil, err
	}

	feeds, err := source.ParseFeeds(cfg.Feeds)
	if err != nil {
		return nil, err
	}

	completer, err := completion.New(completion.Config{
		Provider:       cfg.LLMProvider,
		OpenAIKey:      cfg.OpenAIKey,
		OpenAIBaseURL:  cfg.OpenAIBaseURL,
		OpenAIModel:    cfg.OpenAIModel,
		CohereKey:      cfg.CohereKey,
		CohereModel:    cfg.CohereModel,
		AnthropicKey:   cfg.AnthropicKey,
		AnthropicModel: cfg.AnthropicModel,
		Timeout:        cfg.CompletionTimeout,
		Retries:        cfg.CompletionRetries,
		Backoff:        cfg.CompletionBackoff,
	})
	if err != nil {
		return nil, err
	}

	// Инициализируем подключение к БД
	db, err := sqlx.Connect("postgres", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	a.closers = append(a.closers, db.Close)

	ledger := storage.NewLedgerPostgresStorage(db)
	if err := ledger.Migrate(ctx); err != nil {
		return nil, err
	}

	var (
		newsFetcher = fetcher.NewFetcher(feeds, fetcher.Config{
			Parser:         cfg.FeedParser,
			FeedTimeout:    cfg.FeedTimeout,
			Workers:        cfg.FetchWorkers,
			Window:         cfg.RecencyWindow,
			Limit:          cfg.MaxCandidates,
			FilterKeywords: cfg.FilterKeywords,
		})
		relevanceFilter = relevance.NewFilter(completer, cfg.CompanyName, cfg.PriorityOutlets, cfg.RelevanceTemperature)
		enricher        = enrich.NewEnricher(completer, enrich.Config{
			Company:             cfg.CompanyName,
			AnalysisTemperature: cfg.AnalysisTemperature,
			CreativeTemperature: cfg.CreativeTemperature,
			Workers:             cfg.EnrichWorkers,
			SectorNames: lo.Associate(catalog.All(), func(s model.Sector) (string, string) {
				return s.ID, s.Name
			}),
		})
	)

	svc := pipeline.NewService(catalog, newsFetcher, relevanceFilter, enricher, ledger)

	if len(cfg.KafkaBrokers) > 0 {
		publisher, err := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, publisher.Close)
		svc.WithEvents(publisher)
	}

	if cfg.S3Bucket != "" {
		a.Archiver, err = archive.NewS3Archiver(ctx, cfg.S3Bucket, cfg.S3Prefix, cfg.S3Region)
		if err != nil {
			return nil, err
		}
	}

	if cfg.RedisURL != "" {
		client, err := session.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client.Close)
		a.Sessions = session.NewRedisStore(client, cfg.SessionTTL)
	} else {
		a.Sessions = session.NewMemoryStore(cfg.SessionTTL)
	}

	slog.Info("core assembled",
		"provider", cfg.LLMProvider,
		"feeds", len(feeds),
		"sessions", lo.Ternary(cfg.RedisURL != "", "redis", "memory"),
		"events", len(cfg.KafkaBrokers) > 0,
		"archive", a.Archiver != nil,
	)

	return svc, nil
}

// Close закрывает ресурсы в обратном порядке
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
