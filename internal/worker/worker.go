package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"
	"webring/internal/domain"
)

// Aggregator определяет интерфейс одного прогона агрегации вебринга.
// Используется для внедрения зависимости в воркер.
type Aggregator interface {
	Run(ctx context.Context) (domain.Result, error)
}

// Worker периодически пересобирает вебринг. Первый прогон выполняется сразу
// после старта, следующие - по тикеру. Прогоны никогда не пересекаются:
// тик, пришедший во время прогона, пропускается.
type Worker struct {
	aggregator Aggregator
	interval   time.Duration
	timeout    time.Duration
	log        *slog.Logger
	cancel     context.CancelFunc
	wg         sync.WaitGroup
}

// New создает воркер. timeout ограничивает длительность одного прогона,
// нулевое значение означает отсутствие ограничения.
func New(aggregator Aggregator, interval, timeout time.Duration, log *slog.Logger) *Worker {
	return &Worker{
		aggregator: aggregator,
		interval:   interval,
		timeout:    timeout,
		log:        log.With(slog.String("component", "worker")),
	}
}

// Start запускает воркер в отдельной горутине.
func (w *Worker) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.run(ctx)
	}()
}

// Stop отменяет текущий прогон и дожидается завершения воркера.
func (w *Worker) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}

func (w *Worker) run(ctx context.Context) {
	w.log.Info("Webring worker started", slog.String("interval", w.interval.String()))
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	w.RunCycle(ctx)
	for {
		select {
		case <-ticker.C:
			w.RunCycle(ctx)
		case <-ctx.Done():
			w.log.Info("Worker stopping")
			return
		}
	}
}

// RunCycle выполняет один прогон агрегации и логирует его итог.
func (w *Worker) RunCycle(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}
	start := time.Now()
	w.log.Info("Webring cycle started")
	result, err := w.aggregator.Run(ctx)
	if err != nil {
		w.log.Error("Webring cycle finished with errors",
			slog.Int("count", len(result.Articles)),
			slog.Any("error", err),
			slog.Duration("duration", time.Since(start)),
		)
		return
	}
	w.log.Info("Webring cycle completed",
		slog.Int("count", len(result.Articles)),
		slog.Duration("duration", time.Since(start)),
	)
}

// Timeout возвращает ограничение длительности одного прогона.
func (w *Worker) Timeout() time.Duration { return w.timeout }

// Interval возвращает период пересборки вебринга.
func (w *Worker) Interval() time.Duration { return w.interval }
