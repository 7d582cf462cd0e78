// Package article строит статьи вебринга из сырых элементов лент.
// Каждое поле статьи вычисляется по своей стратегии, см. domain.StrategyFor.
package article

import (
	"log/slog"
	"time"
	"webring/internal/datetime"
	"webring/internal/domain"
	"webring/internal/summary"
)

// computedFields - поля, которые Build вычисляет сам; порядок дат важен.
var computedFields = append(append([]string{}, domain.DateFields...), "summary")

// UnknownTitle подставляется в предупреждения для элемента без заголовка.
const UnknownTitle = "Unknown title"

// Resolver вычисляет поля статей. Безопасен для параллельного использования.
type Resolver struct {
	log     *slog.Logger
	summary summary.Options
}

func NewResolver(log *slog.Logger, opts summary.Options) *Resolver {
	return &Resolver{
		log:     log.With(slog.String("component", "article")),
		summary: opts,
	}
}

// Build строит статью из элемента и метаданных его ленты. Строковые поля
// копирует domain.NewArticle, вычисляемые поля заполняются по таблице стратегий.
func (r *Resolver) Build(entry domain.Entry, source domain.FeedMeta) domain.Article {
	a := domain.NewArticle(entry, source)
	for _, name := range computedFields {
		switch domain.StrategyFor(name) {
		case domain.DateParse:
			a.SetDate(name, r.resolveDate(entry, name, a.Published))
		case domain.SummarySanitize:
			a.Summary = r.Summary(entry)
		}
	}
	return a
}

// resolveDate вычисляет одно поле-дату. date без собственного корректного
// значения берет уже разобранный published.
func (r *Resolver) resolveDate(entry domain.Entry, name string, published *time.Time) *time.Time {
	switch name {
	case "published":
		return r.Date(entry, name)
	case "date":
		if entry.Has(name) {
			if t := r.Date(entry, name); t != nil {
				return t
			}
		}
		return published
	default:
		return r.optionalDate(entry, name)
	}
}

// Date разбирает поле элемента как дату. Пустое или нераспознанное
// значение логируется и дает nil.
func (r *Resolver) Date(entry domain.Entry, field string) *time.Time {
	t, err := datetime.Parse(entry.Get(field))
	if err != nil {
		title := entry.Get("title")
		if title == "" {
			title = UnknownTitle
		}
		r.log.Warn("Invalid date on feed entry",
			slog.String("title", title),
			slog.String("field", field),
			slog.Any("error", err),
		)
		return nil
	}
	return &t
}

// optionalDate разбирает поле, которое есть далеко не во всех лентах
// (updated в RSS, created и expired почти везде): молчит при пустом
// значении, но предупреждает о нераспознанном.
func (r *Resolver) optionalDate(entry domain.Entry, field string) *time.Time {
	if !entry.Has(field) {
		return nil
	}
	return r.Date(entry, field)
}

// Summary готовит краткое описание из поля description.
func (r *Resolver) Summary(entry domain.Entry) string {
	return summary.Sanitize(entry.Get("description"), r.summary)
}
