package storage

import (
	"context"
	"webring/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Storage определяет общий интерфейс хранилища вебринга.
// Publish заменяет сохраненный результат, GetArticles читает его.
type Storage interface {
	Publish(ctx context.Context, result domain.Result) error
	GetArticles(ctx context.Context, n int) ([]domain.Article, error)
	Close()
}

// Pool - подмножество pgxpool.Pool, которым пользуется хранилище.
type Pool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Close()
}
