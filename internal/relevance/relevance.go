package relevance

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	"github.com/kovalyov-valentin/sales-outreach-bot/internal/completion"
	"github.com/kovalyov-valentin/sales-outreach-bot/internal/model"
)

const DefaultTemperature = 0.2

var DefaultPriorityOutlets = []string{"Bloomberg", "Reuters"}

const promptFormat = `You are a research assistant for Sales at %s.
Sector: %s (%s).
From this list of headlines (Title | Link | pubDate), return only those that are clearly B2B-relevant to European companies in this sector or relevant macro topics (tariffs, trade policy, supply-chain risk).
Prioritize %s content.

Output each item as: Title | Link | pubDate | Region, one per line, sorted newest first:

%s
`

// Filter сводит кандидатов к релевантным новостям. Решение целиком за сервисом генерации
type Filter struct {
	completer   completion.Completer
	company     string
	outlets     []string
	temperature float32
}

func NewFilter(completer completion.Completer, company string, outlets []string, temperature float32) *Filter {
	if len(outlets) == 0 {
		outlets = DefaultPriorityOutlets
	}
	if temperature <= 0 {
		temperature = DefaultTemperature
	}

	return &Filter{
		completer:   completer,
		company:     company,
		outlets:     outlets,
		temperature: temperature,
	}
}

// FilterRelevant делает один вызов на весь список. Запасного детерминированного пути нет:
// ошибка сервиса возвращается как есть, пустой ответ - пустой список
func (f *Filter) FilterRelevant(ctx context.Context, set model.CandidateSet, sector model.Sector) ([]model.RelevantItem, error) {
	if set.Empty() {
		return nil, nil
	}

	text, err := f.completer.Complete(ctx, f.Prompt(set, sector), f.temperature)
	if err != nil {
		return nil, fmt.Errorf("filter relevant news: %w", err)
	}

	items := Parse(text, sector.ID)
	slog.Debug("relevance filter finished", "sector", sector.ID, "candidates", len(set.Entries), "relevant", len(items))

	return items, nil
}

func (f *Filter) Prompt(set model.CandidateSet, sector model.Sector) string {
	return fmt.Sprintf(promptFormat,
		f.company,
		sector.Name,
		sector.Description,
		strings.Join(f.outlets, " and "),
		strings.Join(set.Lines(), "\n"),
	)
}

// Маркеры списков, которые модель любит добавлять: "1.", "2)", "-", "*", "•"
var listMarker = regexp.MustCompile(`^\s*(?:\d+[.)]|[-*•])\s+`)

// Parse разбирает ответ построчно.
// Строка без "|" пропускается молча. Строка делится максимум на 4 поля, поля обрезаются.
// Схема: заголовок и ссылка обязательны, ссылка должна быть абсолютным URL. Регион необязателен
func Parse(text, sectorID string) []model.RelevantItem {
	var items []model.RelevantItem

	for _, line := range strings.Split(text, "\n") {
		if !strings.Contains(line, "|") {
			continue
		}

		line = listMarker.ReplaceAllString(line, "")

		fields := strings.SplitN(line, "|", 4)
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}

		item := model.RelevantItem{Title: fields[0], Sector: sectorID}
		if len(fields) > 1 {
			item.Link = fields[1]
		}
		if len(fields) > 2 {
			item.PubDate = fields[2]
		}
		if len(fields) > 3 {
			item.Region = fields[3]
		}

		if !valid(item) {
			slog.Debug("skipping malformed relevance line", "line", line)
			continue
		}

		items = append(items, item)
	}

	return items
}

func valid(item model.RelevantItem) bool {
	if item.Title == "" || item.Link == "" {
		return false
	}

	u, err := url.Parse(item.Link)
	if err != nil || u.Host == "" {
		return false
	}

	return u.Scheme == "http" || u.Scheme == "https"
}
