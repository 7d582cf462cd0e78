package migrations

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type Migration struct {
	ID    string
	UpSQL string
}

// DB - подмножество pgxpool.Pool, нужное для применения миграций.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

var allMigrations = []Migration{
	{
		ID: "20240310120000_create_webring_articles_table",
		UpSQL: `
		CREATE TABLE webring_articles(
		position INTEGER PRIMARY KEY,
		title TEXT NOT NULL DEFAULT '',
		link TEXT NOT NULL DEFAULT '',
		article_id TEXT NOT NULL DEFAULT '',
		author TEXT NOT NULL DEFAULT '',
		summary TEXT NOT NULL DEFAULT '',
		date TIMESTAMPTZ,
		published TIMESTAMPTZ,
		updated TIMESTAMPTZ,
		source_title TEXT NOT NULL DEFAULT '',
		source_link TEXT NOT NULL DEFAULT '',
		source_id TEXT NOT NULL DEFAULT '',
		generated_at TIMESTAMPTZ NOT NULL
		);`,
	},
	{
		ID: "20240312090000_add_created_expired_columns",
		UpSQL: `
		ALTER TABLE webring_articles
		ADD COLUMN created TIMESTAMPTZ,
		ADD COLUMN expired TIMESTAMPTZ;`,
	},
}

// Migrations возвращает известные миграции в порядке применения.
func Migrations() []Migration {
	out := make([]Migration, len(allMigrations))
	copy(out, allMigrations)
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})
	return out
}

// Apply применяет все необходимые миграции к базе данных.
func Apply(ctx context.Context, log *slog.Logger, db DB) error {
	log = log.With(slog.String("component", "migrations"))
	log.Info("Starting database migrations check")
	_, err := db.Exec(ctx, `
	CREATE TABLE IF NOT EXISTS schema_migrations (
	id TEXT PRIMARY KEY
	);
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}
	rows, err := db.Query(ctx, "SELECT id FROM schema_migrations")
	if err != nil {
		return fmt.Errorf("failed to query applied migrations: %w", err)
	}
	applied, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return fmt.Errorf("failed to scan migration id: %w", err)
	}
	done := make(map[string]bool, len(applied))
	for _, id := range applied {
		done[id] = true
	}
	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)
	count := 0
	for _, m := range Migrations() {
		if done[m.ID] {
			continue
		}
		log.Info("Applying migration", slog.String("id", m.ID))
		if _, err := tx.Exec(ctx, m.UpSQL); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", m.ID, err)
		}
		if _, err := tx.Exec(ctx, "INSERT INTO schema_migrations (id) VALUES ($1)", m.ID); err != nil {
			return fmt.Errorf("failed to record migration %s: %w", m.ID, err)
		}
		count++
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit migrations transaction: %w", err)
	}
	if count > 0 {
		log.Info("Database migrations applied successfully", slog.Int("count", count))
	} else {
		log.Info("Database is up to date, no new migrations found")
	}
	return nil
}
