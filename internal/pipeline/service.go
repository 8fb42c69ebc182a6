package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/kovalyov-valentin/sales-outreach-bot/internal/model"
	"github.com/samber/lo"
)

type SectorCatalog interface {
	All() []model.Sector
	Resolve(arg string) (model.Sector, error)
}

type NewsFetcher interface {
	FetchRecentNews(ctx context.Context, sector model.Sector) (model.CandidateSet, error)
}

type RelevanceFilter interface {
	FilterRelevant(ctx context.Context, set model.CandidateSet, sector model.Sector) ([]model.RelevantItem, error)
}

type Enricher interface {
	EnrichItem(ctx context.Context, item model.RelevantItem) model.EnrichedDraft
	EnrichAll(ctx context.Context, items []model.RelevantItem) []model.EnrichedDraft
}

type Ledger interface {
	RecordUsed(ctx context.Context, user model.User, title string) (int64, error)
	RecordOutcome(ctx context.Context, user model.User, title string, success bool) (int64, error)
	RecordOutcomeByID(ctx context.Context, user model.User, id int64, success bool) (int64, error)
	Stats(ctx context.Context, user model.User) (model.OutreachStats, error)
	History(ctx context.Context, user model.User, limit int) ([]model.OutreachRecord, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event model.OutreachEvent) error
}

// Почему цикл закончился без черновиков
type EmptyKind string

const (
	EmptyNone            EmptyKind = "none"
	EmptyNoNews          EmptyKind = "no-news"
	EmptyNothingRelevant EmptyKind = "nothing-relevant"
)

// Результат одного цикла по сектору
type Result struct {
	RunID      string                `json:"run_id"`
	Sector     model.Sector          `json:"sector"`
	Candidates model.CandidateSet    `json:"candidates"`
	Relevant   []model.RelevantItem  `json:"relevant"`
	Drafts     []model.EnrichedDraft `json:"drafts"`
	Empty      EmptyKind             `json:"empty"`
	StartedAt  time.Time             `json:"started_at"`
}

// Service - ядро, которое вызывают все UI: бот, HTTP API и CLI
type Service struct {
	sectors  SectorCatalog
	fetcher  NewsFetcher
	relevant RelevanceFilter
	enricher Enricher
	ledger   Ledger
	events   EventPublisher

	now func() time.Time
}

func NewService(
	sectors SectorCatalog,
	fetcher NewsFetcher,
	relevant RelevanceFilter,
	enricher Enricher,
	ledger Ledger,
) *Service {
	return &Service{
		sectors:  sectors,
		fetcher:  fetcher,
		relevant: relevant,
		enricher: enricher,
		ledger:   ledger,
		now:      time.Now,
	}
}

// WithEvents подключает публикацию событий журнала. nil отключает
func (s *Service) WithEvents(events EventPublisher) *Service {
	s.events = events
	return s
}

func (s *Service) Sectors() []model.Sector {
	return s.sectors.All()
}

func (s *Service) ResolveSector(arg string) (model.Sector, error) {
	return s.sectors.Resolve(arg)
}

func (s *Service) FetchRecentNews(ctx context.Context, sectorArg string) (model.CandidateSet, error) {
	sector, err := s.sectors.Resolve(sectorArg)
	if err != nil {
		return model.CandidateSet{}, err
	}
	return s.fetcher.FetchRecentNews(ctx, sector)
}

func (s *Service) FilterRelevant(ctx context.Context, set model.CandidateSet, sector model.Sector) ([]model.RelevantItem, error) {
	return s.relevant.FilterRelevant(ctx, set, sector)
}

func (s *Service) EnrichItem(ctx context.Context, item model.RelevantItem) model.EnrichedDraft {
	return s.enricher.EnrichItem(ctx, item)
}

func (s *Service) EnrichAll(ctx context.Context, items []model.RelevantItem) []model.EnrichedDraft {
	return s.enricher.EnrichAll(ctx, items)
}

// Run прогоняет сбор, фильтр релевантности и обогащение по очереди.
// Между этапами проверяется отмена. Пустой результат - не ошибка, причина в Result.Empty
func (s *Service) Run(ctx context.Context, sectorArg string) (Result, error) {
	sector, err := s.sectors.Resolve(sectorArg)
	if err != nil {
		return Result{}, err
	}

	result := Result{
		RunID:     uuid.NewString(),
		Sector:    sector,
		Empty:     EmptyNone,
		StartedAt: s.now().UTC(),
	}
	log := slog.With("run_id", result.RunID, "sector", sector.ID)

	result.Candidates, err = s.fetcher.FetchRecentNews(ctx, sector)
	if err != nil {
		return result, fmt.Errorf("fetch recent news: %w", err)
	}
	if result.Candidates.Empty() {
		log.Info("no recent news", "failed_sources", len(result.Candidates.Drops.FailedSources))
		result.Empty = EmptyNoNews
		return result, nil
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}

	result.Relevant, err = s.relevant.FilterRelevant(ctx, result.Candidates, sector)
	if err != nil {
		return result, err
	}
	if len(result.Relevant) == 0 {
		log.Info("nothing relevant", "candidates", len(result.Candidates.Entries))
		result.Empty = EmptyNothingRelevant
		return result, nil
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}

	result.Drafts = s.enricher.EnrichAll(ctx, result.Relevant)

	log.Info("run finished",
		"candidates", len(result.Candidates.Entries),
		"relevant", len(result.Relevant),
		"failed_drafts", lo.CountBy(result.Drafts, func(d model.EnrichedDraft) bool { return d.Failed() }),
	)

	return result, nil
}

// RecordUsed пишет строку в журнал. Событие уходит только после успешной записи
func (s *Service) RecordUsed(ctx context.Context, user model.User, title string) (int64, error) {
	id, err := s.ledger.RecordUsed(ctx, user, title)
	if err != nil {
		return 0, err
	}

	s.publish(ctx, model.OutreachEvent{
		Kind:     model.EventUsed,
		RecordID: id,
		User:     user.ID,
		Title:    title,
		At:       s.now().UTC(),
	})

	return id, nil
}

// RecordOutcome отмечает исход у самой новой строки с этим заголовком.
// 0 затронутых строк значит, что новость не отмечалась как использованная
func (s *Service) RecordOutcome(ctx context.Context, user model.User, title string, success bool) (int64, error) {
	affected, err := s.ledger.RecordOutcome(ctx, user, title, success)
	if err != nil {
		return 0, err
	}

	if affected > 0 {
		s.publish(ctx, model.OutreachEvent{
			Kind:    model.EventOutcome,
			User:    user.ID,
			Title:   title,
			Success: lo.ToPtr(success),
			At:      s.now().UTC(),
		})
	}

	return affected, nil
}

func (s *Service) RecordOutcomeByID(ctx context.Context, user model.User, id int64, title string, success bool) (int64, error) {
	affected, err := s.ledger.RecordOutcomeByID(ctx, user, id, success)
	if err != nil {
		return 0, err
	}

	if affected > 0 {
		s.publish(ctx, model.OutreachEvent{
			Kind:     model.EventOutcome,
			RecordID: id,
			User:     user.ID,
			Title:    title,
			Success:  lo.ToPtr(success),
			At:       s.now().UTC(),
		})
	}

	return affected, nil
}

func (s *Service) ComputeStats(ctx context.Context, user model.User) (model.OutreachStats, error) {
	return s.ledger.Stats(ctx, user)
}

func (s *Service) History(ctx context.Context, user model.User, limit int) ([]model.OutreachRecord, error) {
	return s.ledger.History(ctx, user, limit)
}

// Запись в журнал уже закоммичена, поэтому ошибка публикации только логируется
func (s *Service) publish(ctx context.Context, event model.OutreachEvent) {
	if s.events == nil {
		return
	}

	if err := s.events.Publish(ctx, event); err != nil {
		slog.Warn("publishing outreach event", "kind", event.Kind, "user", event.User, "error", err)
	}
}
