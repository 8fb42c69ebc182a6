package source

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/kovalyov-valentin/sales-outreach-bot/internal/model"
	"github.com/kovalyov-valentin/sales-outreach-bot/internal/sector"
)

// Какой парсер использовать для лент
const (
	ParserGofeed = "gofeed"
	ParserRSS    = "rss"
)

const userAgent = "sales-outreach-bot/1.0 (+rss)"

// Интерфейс источника
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]model.RawEntry, error)
}

// ParseFeeds разбирает список лент из конфига. Формат строки: "Имя|URL" или просто URL
func ParseFeeds(lines []string) ([]model.FeedSource, error) {
	feeds := make([]model.FeedSource, 0, len(lines))

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		name, rawURL, found := strings.Cut(line, "|")
		if !found {
			rawURL, name = name, ""
		}
		name, rawURL = strings.TrimSpace(name), strings.TrimSpace(rawURL)

		u, err := url.Parse(strings.ReplaceAll(rawURL, model.QueryPlaceholder, "q"))
		if err != nil || u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("invalid feed url %q", rawURL)
		}

		if name == "" {
			name = u.Host
		}

		feeds = append(feeds, model.FeedSource{Name: name, URL: rawURL})
	}

	return feeds, nil
}

// Build создает клиентов для лент в объявленном порядке.
// В параметризованные URL подставляется запрос из ключевых слов, статические не меняются
func Build(feeds []model.FeedSource, keywords []string, parser string, client *http.Client) []Source {
	query := sector.Query(keywords)
	sources := make([]Source, 0, len(feeds))

	for _, feed := range feeds {
		feedURL := feed.URL
		if feed.Parametrized() {
			feedURL = strings.ReplaceAll(feedURL, model.QueryPlaceholder, query)
		}

		switch parser {
		case ParserRSS:
			sources = append(sources, NewRSSSource(feed.Name, feedURL, client))
		default:
			sources = append(sources, NewGofeedSource(feed.Name, feedURL, client))
		}
	}

	return sources
}

// В заголовках Bing и Google встречаются html-теги и сущности
func cleanTitle(title string) string {
	if !strings.ContainsAny(title, "<&") {
		return strings.TrimSpace(title)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(title))
	if err != nil {
		return strings.TrimSpace(title)
	}

	return strings.Join(strings.Fields(doc.Text()), " ")
}

func unavailable(name string, err error) error {
	return fmt.Errorf("%w: %s: %v", model.ErrFeedUnavailable, name, err)
}

func newRequest(ctx context.Context, feedURL string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml;q=0.9, */*;q=0.8")
	return req, nil
}
