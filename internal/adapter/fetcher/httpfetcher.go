package fetcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Version входит в User-Agent всех запросов к лентам.
const Version = "0.1"

// UserAgent - фиксированный заголовок, по которому владельцы лент узнают вебринг.
var UserAgent = fmt.Sprintf("Webring Go/%s +https://github.com/pelican-plugins/webring", Version)

const (
	DefaultTimeout      = 30 * time.Second
	DefaultMaxFeedBytes = 10 << 20
)

// Options задает ограничения HTTPFetcher. Нулевые значения заменяются
// значениями по умолчанию.
type Options struct {
	Timeout      time.Duration
	MaxFeedBytes int64
	HostInterval time.Duration
}

// HTTPFetcher реализует интерфейс FeedFetcher: один GET на ленту,
// ограниченный таймаутом и размером тела ответа.
// Поддерживает file:// для локальных файлов лент.
type HTTPFetcher struct {
	client   *http.Client
	limiter  *HostRateLimiter
	maxBytes int64
	log      *slog.Logger
}

// NewHTTPFetcher создает загрузчик лент. При HostInterval > 0 запросы к
// одному хосту разносятся во времени не чаще одного за интервал.
func NewHTTPFetcher(log *slog.Logger, opts Options) *HTTPFetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxFeedBytes <= 0 {
		opts.MaxFeedBytes = DefaultMaxFeedBytes
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.RegisterProtocol("file", http.NewFileTransport(http.Dir("/")))
	f := &HTTPFetcher{
		client: &http.Client{
			Transport: transport,
			Timeout:   opts.Timeout,
		},
		maxBytes: opts.MaxFeedBytes,
		log:      log.With(slog.String("component", "fetcher")),
	}
	if opts.HostInterval > 0 {
		f.limiter = NewHostRateLimiter(opts.HostInterval)
	}
	return f
}

// Fetch загружает ленту по URL и возвращает тело ответа как текст.
// Любая ошибка (некорректный URL, сеть, HTTP-статус) логируется как
// предупреждение с URL и причиной и возвращается вызывающему коду.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	log := f.log.With(slog.String("url", url))
	log.Debug("Fetching feed")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		log.Warn("Wrong feed url provided", slog.Any("error", err))
		return "", fmt.Errorf("failed to create request for url %s: %w", url, err)
	}
	req.Header.Set("User-Agent", UserAgent)
	if f.limiter != nil && req.URL.Host != "" {
		if err := f.limiter.Wait(ctx, req.URL.Host); err != nil {
			log.Warn("Host rate limit wait aborted", slog.Any("error", err))
			return "", fmt.Errorf("rate limit wait for url %s: %w", url, err)
		}
	}
	resp, err := f.client.Do(req)
	if err != nil {
		log.Warn("Failed to connect to feed url", slog.Any("error", err))
		return "", fmt.Errorf("failed to fetch url %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Warn("Server returned error status", slog.Int("status_code", resp.StatusCode))
		return "", fmt.Errorf("unexpected status code: %d for url %s", resp.StatusCode, url)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		log.Warn("Failed to read feed body", slog.Any("error", err))
		return "", fmt.Errorf("failed to read body of url %s: %w", url, err)
	}
	if int64(len(body)) > f.maxBytes {
		log.Warn("Feed body exceeds size limit", slog.Int64("max_bytes", f.maxBytes))
		return "", fmt.Errorf("feed body of url %s exceeds %d bytes", url, f.maxBytes)
	}
	log.Debug("Successfully fetched feed", slog.Int("bytes", len(body)))
	return string(body), nil
}
