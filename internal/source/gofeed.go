package source

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/kovalyov-valentin/sales-outreach-bot/internal/model"
	"github.com/mmcdole/gofeed"
)

// Клиент RSS/Atom лент на gofeed. Сохраняет сырую строку даты публикации
type GofeedSource struct {
	URL        string
	SourceName string
	client     *http.Client
}

func NewGofeedSource(name, feedURL string, client *http.Client) GofeedSource {
	if client == nil {
		client = http.DefaultClient
	}
	return GofeedSource{URL: feedURL, SourceName: name, client: client}
}

func (s GofeedSource) Name() string {
	return s.SourceName
}

// Fetch загружает ленту. Ошибка сети или статуса - источник недоступен.
// Битый документ дает ноль записей без ошибки
func (s GofeedSource) Fetch(ctx context.Context) ([]model.RawEntry, error) {
	req, err := newRequest(ctx, s.URL)
	if err != nil {
		return nil, unavailable(s.SourceName, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, unavailable(s.SourceName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, unavailable(s.SourceName, fmt.Errorf("status %s", resp.Status))
	}

	feed, err := gofeed.NewParser().Parse(resp.Body)
	if err != nil {
		slog.Debug("malformed feed document", "source", s.SourceName, "error", err)
		return nil, nil
	}

	entries := make([]model.RawEntry, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}

		published := item.Published
		if published == "" {
			published = item.Updated
		}

		entries = append(entries, model.RawEntry{
			Title:        cleanTitle(item.Title),
			Link:         item.Link,
			PublishedRaw: published,
			Categories:   item.Categories,
			SourceName:   s.SourceName,
		})
	}

	return entries, nil
}
