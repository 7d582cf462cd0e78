package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
	"webring/internal/adapter/fetcher"
	"webring/internal/adapter/parser"
	"webring/internal/config"
	"webring/internal/logger"
	"webring/internal/migrations"
	"webring/internal/publish"
	server "webring/internal/transport/http"
	"webring/internal/usecase"
	"webring/internal/worker"
	"webring/storage"

	"github.com/jackc/pgx/v5/pgxpool"
)

// App связывает компоненты агрегатора вебринга: сборку, публикаторов,
// фоновый воркер, HTTP API и необязательное хранилище PostgreSQL.
type App struct {
	config     *config.Config
	logger     *slog.Logger
	logCloser  io.Closer
	aggregator *usecase.AggregationUseCase
	store      *publish.ContextStore
	db         storage.Storage
	router     http.Handler
	server     *http.Server
	worker     *worker.Worker
	stopChan   chan os.Signal
	wg         sync.WaitGroup
}

// New создает и инициализирует приложение: логгер, загрузчик и парсер лент,
// публикаторы и, если база включена, подключение к PostgreSQL с миграциями.
func New(cfg *config.Config) (*App, error) {
	appLogger, logCloser, err := logger.New(cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to setup logger: %w", err)
	}
	slog.SetDefault(appLogger)
	for _, w := range cfg.Warnings {
		appLogger.Warn(w, slog.String("component", "config"))
	}

	store := publish.NewContextStore(appLogger)
	publishers := []usecase.Publisher{store}
	if cfg.App.OutputFile != "" {
		publishers = append(publishers, publish.NewJSONFile(cfg.App.OutputFile, appLogger))
	}

	var db storage.Storage
	var getter usecase.ArticleStorage = store
	if cfg.Database.Enabled {
		pg, err := newPostgres(context.Background(), cfg, appLogger)
		if err != nil {
			logCloser.Close()
			return nil, err
		}
		db = pg
		getter = pg
		publishers = append(publishers, pg)
	}

	httpFetcher := fetcher.NewHTTPFetcher(appLogger, fetcher.Options{
		Timeout:      cfg.Fetch.TimeoutDuration(),
		MaxFeedBytes: cfg.Fetch.MaxFeedBytes,
		HostInterval: cfg.Fetch.HostIntervalDuration(),
	})
	feedParser := parser.NewFeedParser(appLogger)
	aggregator := usecase.NewAggregationUseCase(
		httpFetcher,
		feedParser,
		cfg.Settings(),
		cfg.Fetch.MaxConcurrency,
		appLogger,
		publishers...,
	)

	articlesGetter := usecase.NewArticlesGetterUseCase(getter)
	handler := server.NewHandler(appLogger, articlesGetter, cfg.Webring.MaxArticles)
	router := server.NewServer(appLogger, handler)

	return &App{
		config:     cfg,
		logger:     appLogger,
		logCloser:  logCloser,
		aggregator: aggregator,
		store:      store,
		db:         db,
		router:     router,
		server: &http.Server{
			Addr:              cfg.Server.Address,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		worker:   worker.New(aggregator, cfg.App.Interval(), cfg.App.CycleTimeoutDuration(), appLogger),
		stopChan: make(chan os.Signal, 1),
	}, nil
}

func newPostgres(ctx context.Context, cfg *config.Config, log *slog.Logger) (*storage.PostgresWebringDB, error) {
	dbPool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := dbPool.Ping(ctx); err != nil {
		dbPool.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}
	log.Info("Database connection established", slog.String("component", "database"))
	if err := migrations.Apply(ctx, log, dbPool); err != nil {
		dbPool.Close()
		return nil, fmt.Errorf("migrations failed: %w", err)
	}
	return storage.NewPostgresWebringDB(dbPool, cfg.Webring.MaxArticles, log), nil
}

// Handler возвращает HTTP-роутер API.
func (a *App) Handler() http.Handler { return a.router }

// Context возвращает переменные шаблона с последним результатом сборки.
func (a *App) Context() map[string]any { return a.store.Context() }

// RunOnce выполняет одну сборку вебринга, публикует результат и
// освобождает ресурсы.
func (a *App) RunOnce(ctx context.Context) error {
	defer a.close()
	result, err := a.aggregator.Run(ctx)
	if err != nil {
		return fmt.Errorf("failed to publish webring: %w", err)
	}
	a.logger.Info("Webring generated",
		slog.String("component", "app"),
		slog.Int("count", len(result.Articles)),
	)
	return nil
}

// Run запускает воркер и HTTP API и блокируется до сигнала завершения
// или ошибки сервера.
func (a *App) Run() error {
	a.logger.Info("Starting webring aggregator",
		slog.String("component", "app"),
		slog.Int("feed_count", len(a.aggregator.Settings().FeedURLs)),
		slog.String("processing_interval", a.worker.Interval().String()),
	)
	listener, err := net.Listen("tcp", a.server.Addr)
	if err != nil {
		a.close()
		return fmt.Errorf("failed to create listener: %w", err)
	}
	a.logger.Info("HTTP server ready",
		slog.String("component", "server"),
		slog.String("address", listener.Addr().String()),
	)
	a.worker.Start(context.Background())
	serverErr := make(chan error, 1)
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("HTTP server failed", slog.String("component", "server"), slog.Any("error", err))
			serverErr <- err
		}
	}()
	signal.Notify(a.stopChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(a.stopChan)
	var runErr error
	select {
	case sig := <-a.stopChan:
		a.logger.Info("Shutdown signal received",
			slog.String("component", "app"),
			slog.String("signal", sig.String()),
		)
	case runErr = <-serverErr:
	}
	return errors.Join(runErr, a.Shutdown())
}

// Shutdown останавливает воркер, завершает HTTP-сервер с таймаутом
// 10 секунд и закрывает соединение с базой.
func (a *App) Shutdown() error {
	a.logger.Info("Starting graceful shutdown", slog.String("component", "app"))
	a.worker.Stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	var err error
	if err = a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("HTTP server shutdown failed", slog.Any("error", err))
	}
	a.wg.Wait()
	a.logger.Info("Application stopped gracefully", slog.String("component", "app"))
	a.close()
	return err
}

func (a *App) close() {
	if a.db != nil {
		a.db.Close()
		a.db = nil
	}
	if a.logCloser != nil {
		a.logCloser.Close()
		a.logCloser = nil
	}
}
