package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Отраслевой сектор. Набор ключевых слов используется для поисковых запросов к лентам
type Sector struct {
	ID          string   `yaml:"id" json:"id"`
	Name        string   `yaml:"name" json:"name"`
	Description string   `yaml:"description" json:"description"`
	Keywords    []string `yaml:"keywords" json:"keywords"`
}

// Источник новостей. URL может содержать плейсхолдер {query}
type FeedSource struct {
	Name string
	URL  string
}

const QueryPlaceholder = "{query}"

// Parametrized сообщает, принимает ли источник поисковый запрос
func (s FeedSource) Parametrized() bool {
	return strings.Contains(s.URL, QueryPlaceholder)
}

// Запись как она пришла из ленты. Дата публикации в исходном формате ленты
type RawEntry struct {
	Title        string   `json:"title"`
	Link         string   `json:"link"`
	PublishedRaw string   `json:"published"`
	Categories   []string `json:"categories,omitempty"`
	SourceName   string   `json:"source,omitempty"`
}

// Запись с распознанной датой публикации (UTC), попавшая в окно свежести
type NormalizedEntry struct {
	RawEntry
	PublishedAt time.Time `json:"published_at"`
}

// String форматирует запись как строку "title | link | publishedDate" для промпта
func (e NormalizedEntry) String() string {
	return fmt.Sprintf("%s | %s | %s", e.Title, e.Link, e.PublishedRaw)
}

// Диагностика отброшенных записей за один цикл сбора
type DropStats struct {
	Unparseable   int      `json:"unparseable"`
	Stale         int      `json:"stale"`
	Future        int      `json:"future"`
	Duplicate     int      `json:"duplicate"`
	Blocked       int      `json:"blocked"`
	Overflow      int      `json:"overflow"`
	FailedSources []string `json:"failed_sources,omitempty"`
}

// Кандидаты: уникальные по ссылке, в порядке источников, не больше лимита
type CandidateSet struct {
	Sector    Sector            `json:"sector"`
	Entries   []NormalizedEntry `json:"entries"`
	FetchedAt time.Time         `json:"fetched_at"`
	Drops     DropStats         `json:"drops"`
}

func (c CandidateSet) Empty() bool {
	return len(c.Entries) == 0
}

// Lines возвращает кандидатов в виде строк для промпта
func (c CandidateSet) Lines() []string {
	lines := make([]string, 0, len(c.Entries))
	for _, e := range c.Entries {
		lines = append(lines, e.String())
	}
	return lines
}

// Новость, которую сервис генерации признал релевантной.
// PubDate - текст, который вернула модель, он не обязан совпадать с датой из ленты
type RelevantItem struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	PubDate string `json:"pub_date"`
	Region  string `json:"region,omitempty"`
	Sector  string `json:"sector,omitempty"`
}

func (i RelevantItem) HasRegion() bool {
	return i.Region != ""
}

func (i RelevantItem) String() string {
	return fmt.Sprintf("%s | %s | %s | %s", i.Title, i.Link, i.PubDate, i.Region)
}

// Черновик письма по одной новости
type EnrichedDraft struct {
	Item    RelevantItem
	Persona string
	Impact  string
	Subject string
	Email   string
	// Ошибка обогащения. Остальные черновики показываются как обычно
	Err error
}

func (d EnrichedDraft) Failed() bool {
	return d.Err != nil
}

// Clipboard - текст, готовый для вставки в почтовый клиент
func (d EnrichedDraft) Clipboard() string {
	return fmt.Sprintf("Subject: %s\n\n%s", d.Subject, d.Email)
}

// Аутентифицированный пользователь. ID непрозрачен для ядра
type User struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type draftJSON struct {
	Item    RelevantItem `json:"item"`
	Persona string       `json:"persona"`
	Impact  string       `json:"impact"`
	Subject string       `json:"subject"`
	Email   string       `json:"email"`
	Error   string       `json:"error,omitempty"`
}

// Ошибка уходит в JSON текстом, чтобы черновик в сессии и в API оставался в состоянии ошибки
func (d EnrichedDraft) MarshalJSON() ([]byte, error) {
	out := draftJSON{Item: d.Item, Persona: d.Persona, Impact: d.Impact, Subject: d.Subject, Email: d.Email}
	if d.Err != nil {
		out.Error = d.Err.Error()
	}
	return json.Marshal(out)
}

func (d *EnrichedDraft) UnmarshalJSON(data []byte) error {
	var in draftJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	*d = EnrichedDraft{Item: in.Item, Persona: in.Persona, Impact: in.Impact, Subject: in.Subject, Email: in.Email}
	if in.Error != "" {
		d.Err = errors.New(in.Error)
	}
	return nil
}
