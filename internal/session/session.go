package session

import (
	"context"
	"fmt"
	"time"

	"github.com/kovalyov-valentin/sales-outreach-bot/internal/model"
)

const DefaultTTL = 24 * time.Hour

// Session хранит черновики последнего запуска и id строк журнала, созданных по ним.
// По id исход пишется в нужную строку, а не в самую новую с таким заголовком
type Session struct {
	ID        string                `json:"id"`
	User      model.User            `json:"user"`
	Sector    model.Sector          `json:"sector"`
	RunID     string                `json:"run_id"`
	Drafts    []model.EnrichedDraft `json:"drafts"`
	RecordIDs map[int]int64         `json:"record_ids"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`
}

func New(id string, user model.User, now time.Time) *Session {
	return &Session{
		ID:        id,
		User:      user,
		RecordIDs: map[int]int64{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Draft возвращает черновик по номеру, как его видит пользователь (с единицы)
func (s *Session) Draft(n int) (model.EnrichedDraft, error) {
	if n < 1 || n > len(s.Drafts) {
		return model.EnrichedDraft{}, fmt.Errorf("%w: %d", model.ErrNoDraft, n)
	}
	return s.Drafts[n-1], nil
}

func (s *Session) SetRecord(n int, id int64) {
	if s.RecordIDs == nil {
		s.RecordIDs = map[int]int64{}
	}
	s.RecordIDs[n] = id
}

func (s *Session) Record(n int) (int64, bool) {
	id, ok := s.RecordIDs[n]
	return id, ok
}

// Store - хранилище сессий. Get возвращает ErrSessionNotFound, если сессии нет или она истекла
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
}
