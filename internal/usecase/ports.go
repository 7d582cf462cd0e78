package usecase

import (
	"context"
	"webring/internal/domain"
)

// FeedFetcher определяет интерфейс для загрузки лент из внешних источников.
// Возвращает тело ленты как текст.
type FeedFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// FeedParser определяет интерфейс для разбора текста ленты.
// Некорректная лента не является ошибкой: парсер возвращает то, что удалось восстановить.
type FeedParser interface {
	Parse(ctx context.Context, url, text string) (*domain.ParsedFeed, error)
}

// Publisher получает готовый результат каждого прогона агрегации.
type Publisher interface {
	Publish(ctx context.Context, result domain.Result) error
}
