// Package publish содержит получателей результата агрегации.
package publish

import (
	"context"
	"log/slog"
	"sync/atomic"
	"webring/internal/domain"
)

// ContextStore хранит последний результат в памяти и отдает его
// шаблонам сайта и HTTP API.
type ContextStore struct {
	current atomic.Pointer[domain.Result]
	log     *slog.Logger
}

func NewContextStore(log *slog.Logger) *ContextStore {
	return &ContextStore{log: log.With(slog.String("component", "context_store"))}
}

// Publish заменяет сохраненный результат целиком.
func (s *ContextStore) Publish(_ context.Context, result domain.Result) error {
	articles := make([]domain.Article, len(result.Articles))
	copy(articles, result.Articles)
	result.Articles = articles
	s.current.Store(&result)
	s.log.Debug("Webring context updated", slog.Int("count", len(articles)))
	return nil
}

// Result возвращает последний результат и false, если прогонов еще не было.
func (s *ContextStore) Result() (domain.Result, bool) {
	r := s.current.Load()
	if r == nil {
		return domain.Result{}, false
	}
	return *r, true
}

// Context возвращает переменные шаблона: список статей под ключом
// webring_articles. До первого прогона список пуст, но ключ присутствует.
func (s *ContextStore) Context() map[string]any {
	r, _ := s.Result()
	articles := r.Articles
	if articles == nil {
		articles = []domain.Article{}
	}
	return map[string]any{domain.ContextKey: articles}
}

// GetArticles возвращает первые n статей последнего результата.
// При n <= 0 возвращаются все статьи.
func (s *ContextStore) GetArticles(_ context.Context, n int) ([]domain.Article, error) {
	r, _ := s.Result()
	articles := r.Articles
	if n > 0 && len(articles) > n {
		articles = articles[:n]
	}
	out := make([]domain.Article, len(articles))
	copy(out, articles)
	return out, nil
}
