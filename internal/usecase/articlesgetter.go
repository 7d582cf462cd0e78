package usecase

import (
	"context"
	"webring/internal/domain"
)

// ArticleStorage определяет интерфейс для чтения опубликованного вебринга.
type ArticleStorage interface {
	GetArticles(ctx context.Context, n int) ([]domain.Article, error)
}

// ArticlesGetterUseCase предоставляет опубликованные статьи для API.
type ArticlesGetterUseCase struct {
	storage ArticleStorage
}

func NewArticlesGetterUseCase(s ArticleStorage) *ArticlesGetterUseCase {
	return &ArticlesGetterUseCase{storage: s}
}

// GetArticles возвращает не более limit статей последнего прогона.
func (uc *ArticlesGetterUseCase) GetArticles(ctx context.Context, limit int) ([]domain.Article, error) {
	return uc.storage.GetArticles(ctx, limit)
}
