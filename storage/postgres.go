package storage

import (
	"context"
	"fmt"
	"log/slog"
	"webring/internal/domain"

	"github.com/jackc/pgx/v5"
)

const articlesTable = "webring_articles"

var articleColumns = []string{
	"position",
	"title",
	"link",
	"article_id",
	"author",
	"summary",
	"date",
	"published",
	"updated",
	"created",
	"expired",
	"source_title",
	"source_link",
	"source_id",
	"generated_at",
}

type PostgresWebringDB struct {
	pool         Pool
	log          *slog.Logger
	defaultLimit int
}

func NewPostgresWebringDB(pool Pool, defaultLimit int, log *slog.Logger) *PostgresWebringDB {
	log = log.With(slog.String("component", "postgres"))
	log.Info("Initializing Postgres webring storage")
	return &PostgresWebringDB{
		pool:         pool,
		log:          log,
		defaultLimit: defaultLimit,
	}
}

func (db *PostgresWebringDB) Close() {
	db.log.Info("Closing database connection pool")
	db.pool.Close()
}

// Publish заменяет содержимое таблицы результатом прогона в одной транзакции,
// читатели видят либо старый, либо новый вебринг целиком.
func (db *PostgresWebringDB) Publish(ctx context.Context, result domain.Result) (err error) {
	const op = "storage.postgres.Publish"
	log := db.log.With(slog.String("op", op))
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		log.Error("Failed to begin transaction", slog.Any("error", err))
		return fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(context.Background()); rollbackErr != nil {
				log.Error("Failed to rollback transaction", slog.Any("error", rollbackErr))
			}
		}
	}()
	if _, err = tx.Exec(ctx, "DELETE FROM "+articlesTable); err != nil {
		log.Error("Failed to clear articles", slog.Any("error", err))
		return fmt.Errorf("%s: failed to clear articles: %w", op, err)
	}
	if len(result.Articles) > 0 {
		rows := make([][]any, 0, len(result.Articles))
		for i, a := range result.Articles {
			rows = append(rows, []any{
				i,
				a.Title,
				a.Link,
				a.ID,
				a.Author,
				a.Summary,
				a.Date,
				a.Published,
				a.Updated,
				a.Created,
				a.Expired,
				a.SourceTitle,
				a.SourceLink,
				a.SourceID,
				result.GeneratedAt,
			})
		}
		var copied int64
		copied, err = tx.CopyFrom(ctx, pgx.Identifier{articlesTable}, articleColumns, pgx.CopyFromRows(rows))
		if err != nil {
			log.Error("Failed to insert articles", slog.Any("error", err))
			return fmt.Errorf("%s: failed to insert articles: %w", op, err)
		}
		if copied != int64(len(rows)) {
			err = fmt.Errorf("%s: inserted %d of %d articles", op, copied, len(rows))
			log.Error("Incomplete insert", slog.Any("error", err))
			return err
		}
	}
	if err = tx.Commit(ctx); err != nil {
		log.Error("Failed to commit transaction", slog.Any("error", err))
		return fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}
	log.Info("Webring stored", slog.Int("count", len(result.Articles)))
	return nil
}

func (db *PostgresWebringDB) GetArticles(ctx context.Context, n int) ([]domain.Article, error) {
	limit := n
	if limit <= 0 {
		limit = db.defaultLimit
	}
	const op = "storage.postgres.GetArticles"
	log := db.log.With(slog.String("op", op), slog.Int("limit", limit))
	query := `
	SELECT title, link, article_id, author, summary,
		date, published, updated, created, expired,
		source_title, source_link, source_id
	FROM webring_articles
	ORDER BY position
	LIMIT $1;
	`
	rows, err := db.pool.Query(ctx, query, limit)
	if err != nil {
		log.Error("Database query failed", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to execute query: %w", op, err)
	}
	defer rows.Close()
	articles, err := pgx.CollectRows(rows, scanArticle)
	if err != nil {
		log.Error("Failed to collect rows", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to scan row: %w", op, err)
	}
	log.Debug("Retrieved webring articles", slog.Int("count", len(articles)))
	return articles, nil
}

func scanArticle(row pgx.CollectableRow) (domain.Article, error) {
	var (
		title, link, id, author, summary  string
		sourceTitle, sourceLink, sourceID string
		a                                 domain.Article
	)
	err := row.Scan(
		&title, &link, &id, &author, &summary,
		&a.Date, &a.Published, &a.Updated, &a.Created, &a.Expired,
		&sourceTitle, &sourceLink, &sourceID,
	)
	if err != nil {
		return domain.Article{}, err
	}
	dated := a
	a = domain.NewArticle(
		domain.Entry{"title": title, "link": link, "id": id, "author": author},
		domain.FeedMeta{"title": sourceTitle, "link": sourceLink, "id": sourceID},
	)
	a.Summary = summary
	a.Date, a.Published, a.Updated = dated.Date, dated.Published, dated.Updated
	a.Created, a.Expired = dated.Created, dated.Expired
	return a, nil
}
