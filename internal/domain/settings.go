package domain

const (
	DefaultMaxArticles      = 3
	DefaultArticlesPerFeed  = 1
	DefaultSummaryWords     = 20
	DefaultCleanSummaryHTML = true
)

// ContextKey - имя значения контекста, под которым публикуется результат.
const ContextKey = "webring_articles"

// Settings - параметры одного прогона агрегации. Передаются по значению
// и не меняются во время прогона.
type Settings struct {
	FeedURLs         []string
	MaxArticles      int
	ArticlesPerFeed  int
	SummaryWords     int
	CleanSummaryHTML bool
}

// DefaultSettings возвращает настройки со значениями по умолчанию.
func DefaultSettings() Settings {
	return Settings{
		FeedURLs:         []string{},
		MaxArticles:      DefaultMaxArticles,
		ArticlesPerFeed:  DefaultArticlesPerFeed,
		SummaryWords:     DefaultSummaryWords,
		CleanSummaryHTML: DefaultCleanSummaryHTML,
	}
}
