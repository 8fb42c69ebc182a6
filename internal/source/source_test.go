package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
	"github.com/kovalyov-valentin/sales-outreach-bot/internal/model"
)

const testFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>Business</title>
  <item>
    <title>Tariffs hit &lt;b&gt;EU&lt;/b&gt; exporters</title>
    <link>https://example.com/tariffs</link>
    <pubDate>Wed, 01 May 2024 10:00:00 GMT</pubDate>
    <category>trade</category>
  </item>
  <item>
    <title>No date here</title>
    <link>https://example.com/nodate</link>
  </item>
</channel>
</rss>`

func TestGofeedSource_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(testFeed))
	}))
	defer srv.Close()

	src := NewGofeedSource("Example", srv.URL, srv.Client())
	entries, err := src.Fetch(context.Background())

	assert.Equal(t, nil, err)
	assert.Equal(t, 2, len(entries))
	assert.Equal(t, "Tariffs hit EU exporters", entries[0].Title)
	assert.Equal(t, "https://example.com/tariffs", entries[0].Link)
	assert.Equal(t, "Wed, 01 May 2024 10:00:00 GMT", entries[0].PublishedRaw)
	assert.Equal(t, []string{"trade"}, entries[0].Categories)
	assert.Equal(t, "Example", entries[0].SourceName)
	assert.Equal(t, "", entries[1].PublishedRaw)
}

func TestGofeedSource_MalformedDocumentYieldsNoEntries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body>definitely not a feed"))
	}))
	defer srv.Close()

	entries, err := NewGofeedSource("Broken", srv.URL, srv.Client()).Fetch(context.Background())

	assert.Equal(t, nil, err)
	assert.Equal(t, 0, len(entries))
}

func TestGofeedSource_StatusErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewGofeedSource("Down", srv.URL, srv.Client()).Fetch(context.Background())

	assert.Equal(t, true, errors.Is(err, model.ErrFeedUnavailable))
}

func TestRSSSource_ContextCancelled(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewRSSSource("Slow", srv.URL, srv.Client()).Fetch(ctx)

	assert.Equal(t, true, errors.Is(err, model.ErrFeedUnavailable))
}

func TestRSSSource_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(testFeed))
	}))
	defer srv.Close()

	entries, err := NewRSSSource("Example", srv.URL, srv.Client()).Fetch(context.Background())

	assert.Equal(t, nil, err)
	assert.Equal(t, 2, len(entries))
	assert.Equal(t, "Tariffs hit EU exporters", entries[0].Title)
	assert.Equal(t, "Wed, 01 May 2024 10:00:00 +0000", entries[0].PublishedRaw)
	assert.Equal(t, "Example", entries[0].SourceName)
}

func TestRSSSource_MalformedDocumentYieldsNoEntries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<rss><channel><item><title>cut off"))
	}))
	defer srv.Close()

	entries, err := NewRSSSource("Broken", srv.URL, srv.Client()).Fetch(context.Background())

	assert.Equal(t, nil, err)
	assert.Equal(t, 0, len(entries))
}

func TestRSSSource_StatusErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewRSSSource("Down", srv.URL, srv.Client()).Fetch(context.Background())

	assert.Equal(t, true, errors.Is(err, model.ErrFeedUnavailable))
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "", formatDate(time.Time{}))
	assert.Equal(t, "Wed, 01 May 2024 10:00:00 +0000", formatDate(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)))
}

func TestBuild_SubstitutesQueryIntoParametrizedFeeds(t *testing.T) {
	feeds := []model.FeedSource{
		{Name: "Google", URL: "https://news.google.com/rss/search?q={query}"},
		{Name: "Reuters", URL: "https://feeds.reuters.com/reuters/businessNews"},
		{Name: "Bing", URL: "https://www.bing.com/news/search?q={query}&format=rss"},
	}

	sources := Build(feeds, []string{"real estate", "property"}, ParserGofeed, nil)

	assert.Equal(t, 3, len(sources))
	assert.Equal(t, "https://news.google.com/rss/search?q=real+estate+property", sources[0].(GofeedSource).URL)
	assert.Equal(t, "https://feeds.reuters.com/reuters/businessNews", sources[1].(GofeedSource).URL)
	assert.Equal(t, "https://www.bing.com/news/search?q=real+estate+property&format=rss", sources[2].(GofeedSource).URL)
	assert.Equal(t, "Bing", sources[2].Name())

	legacy := Build(feeds[:1], []string{"banking"}, ParserRSS, nil)
	assert.Equal(t, "https://news.google.com/rss/search?q=banking", legacy[0].(RSSSource).URL)
}

func TestParseFeeds(t *testing.T) {
	feeds, err := ParseFeeds([]string{
		"Google News|https://news.google.com/rss/search?q={query}",
		"  ",
		"https://feeds.reuters.com/reuters/worldNews",
	})

	assert.Equal(t, nil, err)
	assert.Equal(t, []model.FeedSource{
		{Name: "Google News", URL: "https://news.google.com/rss/search?q={query}"},
		{Name: "feeds.reuters.com", URL: "https://feeds.reuters.com/reuters/worldNews"},
	}, feeds)

	_, err = ParseFeeds([]string{"Broken|not a url"})
	assert.NotEqual(t, nil, err)
}

func TestCleanTitle(t *testing.T) {
	assert.Equal(t, "Plain title", cleanTitle("  Plain title "))
	assert.Equal(t, "Fish & Chips index rises", cleanTitle("Fish &amp; Chips <i>index</i> rises"))
}
