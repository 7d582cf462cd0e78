package domain

// Fields хранит сырые строковые поля элемента ленты или метаданных ленты.
// Отсутствующий ключ и nil-карта читаются как пустая строка.
type Fields map[string]string

// Get возвращает значение поля или пустую строку.
func (f Fields) Get(name string) string {
	if f == nil {
		return ""
	}
	return f[name]
}

// Has сообщает, задано ли поле с непустым значением.
func (f Fields) Has(name string) bool {
	return f.Get(name) != ""
}

func (f Fields) clone() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Entry - сырой элемент ленты (RSS item или Atom entry) после разбора.
type Entry = Fields

// FeedMeta - сырые метаданные ленты, из которой получен элемент.
type FeedMeta = Fields

// ParsedFeed представляет результат разбора одной ленты.
// Bozo выставляется, если исходный документ был некорректен и элементы
// получены восстановлением; BozoErr хранит диагностику парсера.
type ParsedFeed struct {
	Type    string
	Meta    FeedMeta
	Entries []Entry
	Bozo    bool
	BozoErr error
}
