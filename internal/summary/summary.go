// Package summary готовит краткое описание статьи для показа на сайте:
// обрезает его по числу слов и при необходимости удаляет разметку.
package summary

import (
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

// Ellipsis добавляется в конец, если обрезка действительно удалила текст.
const Ellipsis = "…"

var (
	ugcPolicy    = bluemonday.UGCPolicy()
	strictPolicy = bluemonday.StrictPolicy()
)

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// Options задает обработку описания. Words <= 0 отключает обрезку.
type Options struct {
	Words int
	Clean bool
}

// Sanitize обрезает описание до opts.Words слов и удаляет теги, если
// opts.Clean. Оставляемая разметка проходит через UGC-политику bluemonday.
func Sanitize(description string, opts Options) string {
	s := description
	if !opts.Clean {
		s = ugcPolicy.Sanitize(s)
	}
	if opts.Words > 0 {
		s = TruncateHTMLWords(s, opts.Words)
	}
	if opts.Clean {
		s = StripTags(s)
	}
	return s
}

// StripTags удаляет всю разметку. Текст остается экранированным HTML:
// одиночный "<" из текста приходит как &lt;.
func StripTags(s string) string {
	return strictPolicy.Sanitize(s)
}

// TruncateHTMLWords оставляет первые n слов текста, не считая теги словами.
// Если текст был обрезан, добавляет " …" и закрывает открытые теги.
func TruncateHTMLWords(s string, n int) string {
	if n <= 0 || s == "" {
		return s
	}
	z := html.NewTokenizer(strings.NewReader(s))
	var b strings.Builder
	var open []string
	words := 0
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			// дошли до конца, ни одно слово не отброшено
			return s
		}
		raw := string(z.Raw())
		switch tt {
		case html.TextToken:
			head, count, cut := cutWords(raw, n-words)
			words += count
			if cut {
				b.WriteString(strings.TrimRightFunc(head, unicode.IsSpace))
				b.WriteString(" " + Ellipsis)
				for i := len(open) - 1; i >= 0; i-- {
					b.WriteString("</" + open[i] + ">")
				}
				return b.String()
			}
		case html.StartTagToken:
			name, _ := z.TagName()
			if !voidElements[string(name)] {
				open = append(open, string(name))
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			for i := len(open) - 1; i >= 0; i-- {
				if open[i] == string(name) {
					open = open[:i]
					break
				}
			}
		}
		b.WriteString(raw)
	}
}

// cutWords считает слова в text, пока их не больше remaining. cut == true,
// если после remaining слов начинается еще одно; head - текст до него.
func cutWords(text string, remaining int) (head string, count int, cut bool) {
	inWord := false
	for i, r := range text {
		if unicode.IsSpace(r) {
			inWord = false
			continue
		}
		if inWord {
			continue
		}
		inWord = true
		if count == remaining {
			return text[:i], count, true
		}
		count++
	}
	return text, count, false
}
