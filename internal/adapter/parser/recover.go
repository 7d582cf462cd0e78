package parser

import (
	"encoding/xml"
	"strings"
	"webring/internal/domain"

	"golang.org/x/net/html/charset"
)

// recoveredKeys сопоставляет элементы RSS/Atom полям domain.Entry.
var recoveredKeys = map[string]string{
	"title":          "title",
	"link":           "link",
	"guid":           "id",
	"id":             "id",
	"description":    "description",
	"summary":        "description",
	"content":        "content",
	"encoded":        "content",
	"pubDate":        "published",
	"published":      "published",
	"issued":         "published",
	"updated":        "updated",
	"modified":       "updated",
	"created":        "created",
	"expirationDate": "expired",
	"author":         "author",
	"creator":        "author",
}

var recoveredMetaKeys = map[string]string{
	"title":         "title",
	"link":          "link",
	"id":            "id",
	"description":   "description",
	"subtitle":      "description",
	"language":      "language",
	"updated":       "updated",
	"lastBuildDate": "updated",
}

const dublinCoreSpace = "http://purl.org/dc/elements/1.1/"

// recoverFeed проходит документ нестрогим XML-декодером до первой
// неустранимой ошибки и собирает все полностью прочитанные item/entry.
func recoverFeed(text string) *domain.ParsedFeed {
	d := xml.NewDecoder(strings.NewReader(text))
	d.Strict = false
	d.Entity = xml.HTMLEntity
	d.CharsetReader = charset.NewReaderLabel

	out := &domain.ParsedFeed{Meta: domain.FeedMeta{}}
	var (
		stack     []string
		cur       domain.Entry
		itemDepth int
		buf       strings.Builder
	)
	for {
		tok, err := d.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			name := t.Name.Local
			stack = append(stack, name)
			buf.Reset()
			switch name {
			case "rss", "RDF":
				out.Type = "rss"
			case "feed":
				out.Type = "atom"
			case "item", "entry":
				cur = domain.Entry{}
				itemDepth = len(stack)
			case "link":
				if href := linkHref(t); href != "" {
					if cur != nil {
						setIfEmpty(cur, "link", href)
					} else if len(stack) <= 3 {
						setIfEmpty(out.Meta, "link", href)
					}
				}
			}
		case xml.CharData:
			buf.Write(t)
		case xml.EndElement:
			name := t.Name.Local
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
			value := strings.TrimSpace(buf.String())
			buf.Reset()
			if cur != nil && (name == "item" || name == "entry") && len(stack) == itemDepth-1 {
				setIfEmpty(cur, "description", cur.Get("content"))
				out.Entries = append(out.Entries, cur)
				cur = nil
				continue
			}
			if value == "" {
				continue
			}
			parent := ""
			if len(stack) > 0 {
				parent = stack[len(stack)-1]
			}
			switch {
			case cur != nil && len(stack) == itemDepth:
				if name == "date" && t.Name.Space == dublinCoreSpace {
					setIfEmpty(cur, "date", value)
				} else if key, ok := recoveredKeys[name]; ok {
					setIfEmpty(cur, key, value)
				}
			case cur != nil && parent == "author" && name == "name":
				setIfEmpty(cur, "author", value)
			case cur == nil && (parent == "channel" || parent == "feed"):
				if key, ok := recoveredMetaKeys[name]; ok {
					setIfEmpty(out.Meta, key, value)
				}
			}
		}
	}
	return out
}

// linkHref возвращает href атомовской ссылки на саму страницу.
func linkHref(t xml.StartElement) string {
	var href, rel string
	for _, a := range t.Attr {
		switch a.Name.Local {
		case "href":
			href = a.Value
		case "rel":
			rel = a.Value
		}
	}
	if rel != "" && rel != "alternate" {
		return ""
	}
	return strings.TrimSpace(href)
}
