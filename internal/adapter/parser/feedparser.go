package parser

import (
	"context"
	"log/slog"
	"strings"
	"webring/internal/domain"

	"github.com/mmcdole/gofeed"
	"github.com/mmcdole/gofeed/atom"
)

// FeedParser реализует интерфейс FeedParser поверх gofeed (RSS, Atom, JSON Feed).
// Некорректный документ не считается ошибкой: парсер помечает ленту как
// bozo и возвращает элементы, которые удалось восстановить.
type FeedParser struct {
	log *slog.Logger
}

func NewFeedParser(log *slog.Logger) *FeedParser {
	return &FeedParser{
		log: log.With(slog.String("component", "parser")),
	}
}

// atomTranslator сохраняет <id> Atom-ленты, который стандартный
// транслятор gofeed отбрасывает.
type atomTranslator struct {
	gofeed.DefaultAtomTranslator
}

func (t *atomTranslator) Translate(feed interface{}) (*gofeed.Feed, error) {
	out, err := t.DefaultAtomTranslator.Translate(feed)
	if err != nil {
		return nil, err
	}
	if af, ok := feed.(*atom.Feed); ok && af.ID != "" {
		if out.Custom == nil {
			out.Custom = make(map[string]string)
		}
		out.Custom["id"] = af.ID
	}
	return out, nil
}

func newGofeedParser() *gofeed.Parser {
	fp := gofeed.NewParser()
	fp.AtomTranslator = &atomTranslator{}
	return fp
}

// Parse разбирает текст ленты, загруженной с url. Ошибку возвращает
// только отмененный контекст.
func (p *FeedParser) Parse(ctx context.Context, url, text string) (*domain.ParsedFeed, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	log := p.log.With(slog.String("url", url))
	// gofeed.Parser хранит состояние разбора, поэтому новый на каждый вызов
	feed, err := newGofeedParser().ParseString(text)
	if err != nil {
		recovered := recoverFeed(text)
		recovered.Bozo = true
		recovered.BozoErr = err
		log.Warn("Possible malformed or invalid feed",
			slog.Any("error", err),
			slog.Int("recovered_entries", len(recovered.Entries)),
		)
		return recovered, nil
	}
	parsed := convertFeed(feed)
	log.Debug("Feed parsed",
		slog.String("feed_type", parsed.Type),
		slog.Int("entries", len(parsed.Entries)),
	)
	return parsed, nil
}

func convertFeed(feed *gofeed.Feed) *domain.ParsedFeed {
	out := &domain.ParsedFeed{
		Type:    feed.FeedType,
		Meta:    convertMeta(feed),
		Entries: make([]domain.Entry, 0, len(feed.Items)),
	}
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		out.Entries = append(out.Entries, convertItem(item))
	}
	return out
}

func convertMeta(feed *gofeed.Feed) domain.FeedMeta {
	meta := domain.FeedMeta{}
	for k, v := range feed.Custom {
		setIfEmpty(meta, k, v)
	}
	set(meta, "title", feed.Title)
	set(meta, "link", feed.Link)
	if len(feed.Links) > 0 {
		setIfEmpty(meta, "link", feed.Links[0])
	}
	setIfEmpty(meta, "link", feed.FeedLink)
	set(meta, "feed_link", feed.FeedLink)
	set(meta, "description", feed.Description)
	set(meta, "language", feed.Language)
	set(meta, "updated", feed.Updated)
	set(meta, "published", feed.Published)
	set(meta, "generator", feed.Generator)
	set(meta, "copyright", feed.Copyright)
	if feed.Image != nil {
		set(meta, "image", feed.Image.URL)
	}
	if feed.Author != nil {
		set(meta, "author", feed.Author.Name)
	}
	return meta
}

func convertItem(item *gofeed.Item) domain.Entry {
	entry := domain.Entry{}
	for k, v := range item.Custom {
		setIfEmpty(entry, k, v)
	}
	for prefix, byName := range item.Extensions {
		for name, exts := range byName {
			if len(exts) > 0 {
				setIfEmpty(entry, prefix+"_"+name, strings.TrimSpace(exts[0].Value))
			}
		}
	}
	set(entry, "title", item.Title)
	set(entry, "link", item.Link)
	if len(item.Links) > 0 {
		setIfEmpty(entry, "link", item.Links[0])
	}
	set(entry, "id", item.GUID)
	set(entry, "description", item.Description)
	set(entry, "content", item.Content)
	setIfEmpty(entry, "description", item.Content)
	set(entry, "published", item.Published)
	set(entry, "updated", item.Updated)
	if item.Author != nil {
		set(entry, "author", item.Author.Name)
	}
	for _, a := range item.Authors {
		if a != nil {
			setIfEmpty(entry, "author", a.Name)
		}
	}
	if item.Image != nil {
		set(entry, "image", item.Image.URL)
	}
	if len(item.Categories) > 0 {
		set(entry, "categories", strings.Join(item.Categories, ", "))
	}
	if dc := item.DublinCoreExt; dc != nil {
		if len(dc.Date) > 0 {
			set(entry, "date", dc.Date[0])
		}
		if len(dc.Creator) > 0 {
			setIfEmpty(entry, "author", dc.Creator[0])
		}
	}
	setIfEmpty(entry, "created", entry.Get("dcterms_created"))
	setIfEmpty(entry, "expired", entry.Get("expirationDate"))
	return entry
}

func set(f domain.Fields, key, value string) {
	if value = strings.TrimSpace(value); value != "" {
		f[key] = value
	}
}

func setIfEmpty(f domain.Fields, key, value string) {
	if !f.Has(key) {
		set(f, key, value)
	}
}
