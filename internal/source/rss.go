package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/SlyMarbo/rss"
	"github.com/kovalyov-valentin/sales-outreach-bot/internal/model"
	"github.com/samber/lo"
)

// RSS клиент на SlyMarbo/rss. Библиотека сама разбирает дату,
// поэтому мы отдаем ее дальше строкой RFC 1123Z, чтобы нормализация была общей
type RSSSource struct {
	// URL откуда мы забираем данные
	URL        string
	SourceName string
	client     *http.Client
}

func NewRSSSource(name, feedURL string, client *http.Client) RSSSource {
	if client == nil {
		client = http.DefaultClient
	}
	return RSSSource{
		URL:        feedURL,
		SourceName: name,
		client:     client,
	}
}

// Fetch ведет себя так же, как GofeedSource: сеть и статус - источник недоступен,
// битый документ - ноль записей без ошибки
func (s RSSSource) Fetch(ctx context.Context) ([]model.RawEntry, error) {
	body, err := s.loadFeed(ctx, s.URL)
	if err != nil {
		return nil, unavailable(s.SourceName, err)
	}

	feed, err := rss.Parse(body)
	if err != nil {
		slog.Debug("malformed feed document", "source", s.SourceName, "error", err)
		return nil, nil
	}

	return lo.Map(feed.Items, func(item *rss.Item, _ int) model.RawEntry {
		return model.RawEntry{
			Title:        cleanTitle(item.Title),
			Link:         item.Link,
			PublishedRaw: formatDate(item.Date),
			Categories:   item.Categories,
			SourceName:   s.SourceName,
		}
	}), nil
}

// Нулевая дата значит, что библиотека ее не распознала. Такую запись отбросит фильтр
func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC1123Z)
}

// rss.Fetch не принимает контекст и смешивает ошибки сети с ошибками разбора,
// поэтому документ качаем сами, а библиотеке отдаем только разбор
func (s RSSSource) loadFeed(ctx context.Context, url string) ([]byte, error) {
	req, err := newRequest(ctx, url)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("status %s", resp.Status)
	}

	return io.ReadAll(resp.Body)
}

func (s RSSSource) Name() string {
	return s.SourceName
}
