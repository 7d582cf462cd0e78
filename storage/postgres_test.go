package storage

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"
	"webring/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (pgxmock.PgxPoolIface, *PostgresWebringDB) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return mock, NewPostgresWebringDB(mock, 3, log)
}

func sampleResult() domain.Result {
	date := time.Date(2024, 3, 10, 10, 0, 0, 0, time.UTC)
	r := domain.Result{GeneratedAt: date.Add(time.Hour)}
	for _, title := range []string{"first", "second"} {
		a := domain.NewArticle(
			domain.Entry{"title": title, "link": "https://example.com/" + title},
			domain.FeedMeta{"title": "Example"},
		)
		a.Date = &date
		a.Published = &date
		r.Articles = append(r.Articles, a)
	}
	return r
}

func TestPublish_ReplacesArticles(t *testing.T) {
	mock, db := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM webring_articles").
		WillReturnResult(pgxmock.NewResult("DELETE", 5))
	mock.ExpectCopyFrom(pgx.Identifier{"webring_articles"}, articleColumns).
		WillReturnResult(2)
	mock.ExpectCommit()

	require.NoError(t, db.Publish(context.Background(), sampleResult()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPublish_EmptyResultClearsTable(t *testing.T) {
	mock, db := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM webring_articles").
		WillReturnResult(pgxmock.NewResult("DELETE", 2))
	mock.ExpectCommit()

	require.NoError(t, db.Publish(context.Background(), domain.Result{}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPublish_RollsBackOnInsertError(t *testing.T) {
	mock, db := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM webring_articles").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"webring_articles"}, articleColumns).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := db.Publish(context.Background(), sampleResult())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPublish_RollsBackOnDeleteError(t *testing.T) {
	mock, db := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM webring_articles").
		WillReturnError(errors.New("relation does not exist"))
	mock.ExpectRollback()

	require.Error(t, db.Publish(context.Background(), sampleResult()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPublish_BeginError(t *testing.T) {
	mock, db := newMockDB(t)
	mock.ExpectBegin().WillReturnError(errors.New("connection refused"))

	err := db.Publish(context.Background(), sampleResult())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to begin transaction")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetArticles(t *testing.T) {
	date := time.Date(2024, 3, 10, 10, 0, 0, 0, time.UTC)
	var noTime *time.Time
	columns := []string{
		"title", "link", "article_id", "author", "summary",
		"date", "published", "updated", "created", "expired",
		"source_title", "source_link", "source_id",
	}

	tests := []struct {
		name      string
		limit     int
		wantLimit int
	}{
		{"explicit limit", 2, 2},
		{"default limit", 0, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, db := newMockDB(t)
			rows := pgxmock.NewRows(columns).
				AddRow("first", "https://example.com/first", "id-1", "Alice", "summary",
					&date, &date, noTime, noTime, noTime,
					"Example", "https://example.com/", "")
			mock.ExpectQuery("SELECT (.+) FROM webring_articles").
				WithArgs(tt.wantLimit).
				WillReturnRows(rows)

			articles, err := db.GetArticles(context.Background(), tt.limit)

			require.NoError(t, err)
			require.Len(t, articles, 1)
			a := articles[0]
			assert.Equal(t, "first", a.Title)
			assert.Equal(t, "id-1", a.ID)
			assert.Equal(t, "Alice", a.Author)
			assert.Equal(t, "summary", a.Summary)
			require.NotNil(t, a.Date)
			assert.True(t, a.Date.Equal(date))
			assert.Nil(t, a.Updated)
			assert.Equal(t, "Example", a.SourceTitle)
			assert.Equal(t, "Example", a.Field("source_title"))
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestGetArticles_QueryError(t *testing.T) {
	mock, db := newMockDB(t)
	mock.ExpectQuery("SELECT (.+) FROM webring_articles").
		WithArgs(3).
		WillReturnError(errors.New("timeout"))

	_, err := db.GetArticles(context.Background(), 0)
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
