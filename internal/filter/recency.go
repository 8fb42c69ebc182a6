package filter

import (
	"time"

	"github.com/kovalyov-valentin/sales-outreach-bot/internal/model"
)

const (
	DefaultWindow = 7 * 24 * time.Hour
	DefaultLimit  = 20
	// Запись из будущего в пределах этого допуска считается опубликованной в now.
	// Покрывает расхождение часов у лент
	ClockSkew = 5 * time.Minute
)

// SkipFunc решает, нужно ли выбросить запись до дедупликации (например, по стоп-словам)
type SkipFunc func(entry model.RawEntry) bool

// Candidates отбирает свежие уникальные записи.
// batches идут в порядке объявления источников, и этот порядок сохраняется.
// Граница окна считается один раз от now. Как только набрано limit записей,
// остальные записи и источники не просматриваются.
// Множество увиденных ссылок живет только внутри вызова
func Candidates(
	batches [][]model.RawEntry,
	now time.Time,
	window time.Duration,
	limit int,
	skip SkipFunc,
) ([]model.NormalizedEntry, model.DropStats) {
	var (
		stats   model.DropStats
		nowUTC  = now.UTC()
		cutoff  = nowUTC.Add(-window)
		seen    = make(map[string]struct{})
		entries = make([]model.NormalizedEntry, 0, limit)
	)

	if limit <= 0 {
		return entries, stats
	}

	for _, batch := range batches {
		for i, raw := range batch {
			if len(entries) >= limit {
				stats.Overflow += len(batch) - i
				return entries, stats
			}

			publishedAt, err := ParsePublished(raw.PublishedRaw)
			if err != nil {
				stats.Unparseable++
				continue
			}

			if publishedAt.Before(cutoff) {
				stats.Stale++
				continue
			}

			if publishedAt.After(nowUTC) {
				if publishedAt.Sub(nowUTC) > ClockSkew {
					stats.Future++
					continue
				}
				publishedAt = nowUTC
			}

			if skip != nil && skip(raw) {
				stats.Blocked++
				continue
			}

			if _, ok := seen[raw.Link]; ok {
				stats.Duplicate++
				continue
			}
			seen[raw.Link] = struct{}{}

			entries = append(entries, model.NormalizedEntry{
				RawEntry:    raw,
				PublishedAt: publishedAt,
			})
		}

		if len(entries) >= limit {
			return entries, stats
		}
	}

	return entries, stats
}
