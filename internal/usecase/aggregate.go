package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"webring/internal/article"
	"webring/internal/domain"
	"webring/internal/summary"

	"golang.org/x/sync/errgroup"
)

// AggregationUseCase реализует сбор вебринга: параллельно загружает и
// разбирает все ленты, объединяет статьи, сортирует и обрезает результат,
// после чего отдает его всем публикаторам.
type AggregationUseCase struct {
	fetcher     FeedFetcher
	parser      FeedParser
	publishers  []Publisher
	settings    domain.Settings
	concurrency int
	log         *slog.Logger
	now         func() time.Time
}

// NewAggregationUseCase создает UseCase агрегации. concurrency ограничивает
// число одновременно загружаемых лент, значение <= 0 снимает ограничение.
func NewAggregationUseCase(
	fetcher FeedFetcher,
	parser FeedParser,
	settings domain.Settings,
	concurrency int,
	log *slog.Logger,
	publishers ...Publisher,
) *AggregationUseCase {
	return &AggregationUseCase{
		fetcher:     fetcher,
		parser:      parser,
		publishers:  publishers,
		settings:    settings,
		concurrency: concurrency,
		log:         log.With(slog.String("component", "aggregator")),
		now:         time.Now,
	}
}

// Settings возвращает настройки, с которыми выполняется каждый прогон.
func (uc *AggregationUseCase) Settings() domain.Settings { return uc.settings }

// Run выполняет один прогон агрегации с настройками UseCase и публикует
// результат. Ошибки публикаторов объединяются, но не мешают остальным
// публикаторам получить результат.
func (uc *AggregationUseCase) Run(ctx context.Context) (domain.Result, error) {
	start := time.Now()
	result := domain.Result{
		Articles:    uc.Aggregate(ctx, uc.settings),
		GeneratedAt: uc.now(),
	}
	var errs []error
	for _, p := range uc.publishers {
		if err := p.Publish(ctx, result); err != nil {
			uc.log.Error("Publishing webring failed",
				slog.String("publisher", fmt.Sprintf("%T", p)),
				slog.Any("error", err),
			)
			errs = append(errs, err)
		}
	}
	uc.log.Info("Webring aggregation completed",
		slog.Int("feeds", len(uc.settings.FeedURLs)),
		slog.Int("count", len(result.Articles)),
		slog.Int("publishers", len(uc.publishers)),
		slog.Duration("duration", time.Since(start)),
	)
	return result, errors.Join(errs...)
}

// Aggregate собирает статьи со всех лент settings. Всегда возвращает
// корректный результат: сбойная лента просто не дает статей.
func (uc *AggregationUseCase) Aggregate(ctx context.Context, settings domain.Settings) []domain.Article {
	resolver := article.NewResolver(uc.log, summary.Options{
		Words: settings.SummaryWords,
		Clean: settings.CleanSummaryHTML,
	})
	perFeed := make([][]domain.Article, len(settings.FeedURLs))
	var g errgroup.Group
	if uc.concurrency > 0 {
		g.SetLimit(uc.concurrency)
	}
	for i, url := range settings.FeedURLs {
		g.Go(func() error {
			perFeed[i] = uc.collectFeed(ctx, url, settings.ArticlesPerFeed, resolver)
			return nil
		})
	}
	_ = g.Wait()

	total := 0
	for _, articles := range perFeed {
		total += len(articles)
	}
	all := make([]domain.Article, 0, total)
	for _, articles := range perFeed {
		all = append(all, articles...)
	}
	SortArticles(all)
	if settings.MaxArticles >= 0 && len(all) > settings.MaxArticles {
		all = all[:settings.MaxArticles]
	}
	return all
}

// collectFeed загружает, разбирает и конвертирует одну ленту. Любой сбой,
// включая панику, логируется и дает пустой результат.
func (uc *AggregationUseCase) collectFeed(
	ctx context.Context,
	url string,
	perFeed int,
	resolver *article.Resolver,
) (articles []domain.Article) {
	log := uc.log.With(slog.String("url", url))
	defer func() {
		if r := recover(); r != nil {
			log.Error("Feed processing panicked", slog.Any("panic", r))
			articles = nil
		}
	}()
	start := time.Now()
	text, err := uc.fetcher.Fetch(ctx, url)
	if err != nil {
		// загрузчик уже предупредил о причине
		log.Debug("Feed skipped", slog.String("stage", "fetch"), slog.Any("error", err))
		return nil
	}
	feed, err := uc.parser.Parse(ctx, url, text)
	if err != nil {
		log.Warn("Feed skipped", slog.String("stage", "parse"), slog.Any("error", err))
		return nil
	}
	articles = FeedArticles(feed, perFeed, resolver)
	log.Debug("Feed processed",
		slog.Int("items_found", len(feed.Entries)),
		slog.Int("count", len(articles)),
		slog.Duration("duration", time.Since(start)),
	)
	return articles
}
