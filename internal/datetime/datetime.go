// Package datetime разбирает даты из RSS и Atom лент.
package datetime

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrEmpty возвращается для пустой строки: пустая дата не означает "сейчас".
var ErrEmpty = errors.New("empty date")

// layouts покрывает RFC-822 (pubDate в RSS) и ISO-8601 (Atom) с
// распространенными отступлениями от стандартов.
var layouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
	time.RFC850,
	time.ANSIC,
	time.UnixDate,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	"Mon, 2 Jan 2006 15:04 -0700",
	"Mon, 2 Jan 2006 15:04 MST",
	"Mon, 02 Jan 2006 15:04 -0700",
	"Mon, 02 Jan 2006 15:04 MST",
	"2 Jan 2006 15:04:05 -0700",
	"2 Jan 2006 15:04:05 MST",
	"02 Jan 2006 15:04:05 -0700",
	"02 Jan 2006 15:04:05 MST",
	"Mon, 2 Jan 06 15:04:05 -0700",
	"Monday, 02 January 2006 15:04:05 -0700",
	"Monday, 02 January 2006 15:04:05 MST",
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05 -0700",
	"2006-01-02 15:04:05 MST",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"20060102T150405Z",
	"20060102",
}

// Parse пробует известные форматы по очереди и возвращает первый успешный.
// Время без зоны считается UTC.
func Parse(value string) (time.Time, error) {
	s := strings.TrimSpace(value)
	if s == "" {
		return time.Time{}, ErrEmpty
	}
	// "Z" в RSS иногда пишут через пробел: "... 10:00:00 Z"
	s = fixZone(strings.Join(strings.Fields(s), " "))
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("could not parse date in any known format: %q", value)
}

// fixZone заменяет буквенные зоны числовым смещением: для незнакомой
// аббревиатуры time.Parse молча подставляет нулевое смещение.
func fixZone(s string) string {
	i := strings.LastIndexByte(s, ' ')
	if i < 0 {
		return s
	}
	if off, ok := zoneOffsets[strings.ToUpper(s[i+1:])]; ok {
		return s[:i+1] + off
	}
	return s
}

var zoneOffsets = map[string]string{
	"UT":  "+0000",
	"GMT": "+0000",
	"Z":   "+0000",
	"EST": "-0500",
	"EDT": "-0400",
	"CST": "-0600",
	"CDT": "-0500",
	"MST": "-0700",
	"MDT": "-0600",
	"PST": "-0800",
	"PDT": "-0700",
}
