package domain

import "strings"

// Strategy определяет, откуда берется значение поля статьи.
type Strategy int

const (
	// Passthrough читает поле сырого элемента как есть.
	Passthrough Strategy = iota
	// SourcePrefixed читает поле source_<name> из метаданных ленты.
	SourcePrefixed
	// DateParse разбирает поле элемента как дату.
	DateParse
	// SummarySanitize строит summary из description.
	SummarySanitize
)

func (s Strategy) String() string {
	switch s {
	case Passthrough:
		return "passthrough"
	case SourcePrefixed:
		return "source"
	case DateParse:
		return "date"
	case SummarySanitize:
		return "summary"
	default:
		return "unknown"
	}
}

// DateFields - поля-даты в порядке вычисления: date идет последним,
// так как без собственного значения берет published.
var DateFields = []string{"published", "updated", "created", "expired", "date"}

// StrategyFor возвращает стратегию вычисления поля по его имени.
// Это единственная таблица полей: по ней строятся статьи и отвечает Article.Field.
func StrategyFor(name string) Strategy {
	switch {
	case name == "summary":
		return SummarySanitize
	case isDateField(name):
		return DateParse
	case strings.HasPrefix(name, SourcePrefix):
		return SourcePrefixed
	default:
		return Passthrough
	}
}

func isDateField(name string) bool {
	for _, f := range DateFields {
		if f == name {
			return true
		}
	}
	return false
}
