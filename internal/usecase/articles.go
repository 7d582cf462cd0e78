package usecase

import (
	"sort"
	"webring/internal/article"
	"webring/internal/domain"
)

// FeedArticles строит статьи из первых perFeed элементов ленты.
// Лента без элементов дает пустой срез.
func FeedArticles(feed *domain.ParsedFeed, perFeed int, resolver *article.Resolver) []domain.Article {
	if feed == nil || perFeed <= 0 {
		return nil
	}
	entries := feed.Entries
	if len(entries) > perFeed {
		entries = entries[:perFeed]
	}
	articles := make([]domain.Article, 0, len(entries))
	for _, entry := range entries {
		articles = append(articles, resolver.Build(entry, feed.Meta))
	}
	return articles
}

// SortArticles упорядочивает статьи от новых к старым. Статьи без даты
// уходят в конец, равные даты сохраняют исходный порядок.
func SortArticles(articles []domain.Article) {
	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].SortTime().After(articles[j].SortTime())
	})
}
