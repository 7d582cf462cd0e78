package domain

import (
	"strings"
	"time"
)

// SourcePrefix - префикс полей, которые читаются из метаданных ленты-источника.
const SourcePrefix = "source_"

// Article - нормализованная статья вебринга: элемент ленты вместе с
// метаданными ленты-источника. Даты равны nil, если поле отсутствует
// или не распознано.
type Article struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	ID      string `json:"id"`
	Author  string `json:"author"`
	Summary string `json:"summary"`

	Date      *time.Time `json:"date"`
	Published *time.Time `json:"published"`
	Updated   *time.Time `json:"updated"`
	Created   *time.Time `json:"created"`
	Expired   *time.Time `json:"expired"`

	SourceTitle string `json:"source_title"`
	SourceLink  string `json:"source_link"`
	SourceID    string `json:"source_id"`

	entry  Entry
	source FeedMeta
}

// NewArticle связывает статью с копиями сырого элемента и метаданных ленты.
// Строковые поля заполняются сразу; даты и summary заполняет вызывающий код.
func NewArticle(entry Entry, source FeedMeta) Article {
	return Article{
		Title:       entry.Get("title"),
		Link:        entry.Get("link"),
		ID:          entry.Get("id"),
		Author:      entry.Get("author"),
		SourceTitle: source.Get("title"),
		SourceLink:  source.Get("link"),
		SourceID:    source.Get("id"),
		entry:       entry.clone(),
		source:      source.clone(),
	}
}

// SortTime возвращает момент, по которому статьи ранжируются.
// Для статьи без даты это нулевое время, то есть самая старая позиция.
func (a Article) SortTime() time.Time {
	if a.Date == nil {
		return time.Time{}
	}
	return *a.Date
}

// Field возвращает значение поля статьи по имени для шаблонов, выбирая
// источник по StrategyFor. Отсутствующее поле дает пустую строку.
func (a Article) Field(name string) string {
	switch StrategyFor(name) {
	case SummarySanitize:
		return a.Summary
	case DateParse:
		return formatTime(a.DateField(name))
	case SourcePrefixed:
		return a.source.Get(strings.TrimPrefix(name, SourcePrefix))
	default:
		return a.entry.Get(name)
	}
}

// DateField возвращает поле-дату по имени, nil для прочих имен.
func (a Article) DateField(name string) *time.Time {
	switch name {
	case "date":
		return a.Date
	case "published":
		return a.Published
	case "updated":
		return a.Updated
	case "created":
		return a.Created
	case "expired":
		return a.Expired
	}
	return nil
}

// SetDate записывает поле-дату по имени. Прочие имена игнорируются.
func (a *Article) SetDate(name string, t *time.Time) {
	switch name {
	case "date":
		a.Date = t
	case "published":
		a.Published = t
	case "updated":
		a.Updated = t
	case "created":
		a.Created = t
	case "expired":
		a.Expired = t
	}
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}

// Result - итог одного прогона агрегации.
type Result struct {
	Articles    []Article `json:"webring_articles"`
	GeneratedAt time.Time `json:"generated_at"`
}
