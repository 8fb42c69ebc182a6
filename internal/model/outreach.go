package model

import (
	"fmt"
	"time"
)

// Запись журнала рассылок. Success == nil, пока исход не отмечен
type OutreachRecord struct {
	ID        int64     `json:"id"`
	User      string    `json:"user"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	Used      bool      `json:"used"`
	Success   *bool     `json:"success"`
}

// Статистика считается заново на каждый запрос, нигде не хранится
type OutreachStats struct {
	UsedCount    int `json:"used_count"`
	NotUsedCount int `json:"not_used_count"`
	SuccessCount int `json:"success_count"`
}

// SuccessRate возвращает долю успешных среди использованных.
// Второе значение false, если использованных нет
func (s OutreachStats) SuccessRate() (float64, bool) {
	if s.UsedCount == 0 {
		return 0, false
	}
	return float64(s.SuccessCount) / float64(s.UsedCount), true
}

func (s OutreachStats) SuccessRateText() string {
	rate, ok := s.SuccessRate()
	if !ok {
		return "N/A"
	}
	return fmt.Sprintf("%.1f%%", rate*100)
}

type OutreachEventKind string

const (
	EventUsed    OutreachEventKind = "used"
	EventOutcome OutreachEventKind = "outcome"
)

// Событие для внешних потребителей (отчеты и т.п.)
type OutreachEvent struct {
	Kind     OutreachEventKind `json:"kind"`
	RecordID int64             `json:"record_id,omitempty"`
	User     string            `json:"user"`
	Title    string            `json:"title"`
	Success  *bool             `json:"success,omitempty"`
	At       time.Time         `json:"at"`
}
