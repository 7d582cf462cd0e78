package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"
	"webring/internal/domain"
)

type articlesGetter interface {
	GetArticles(ctx context.Context, limit int) ([]domain.Article, error)
}

type Handler struct {
	log            *slog.Logger
	articlesGetter articlesGetter
	defaultLimit   int
}

// NewHandler создает обработчик API. defaultLimit используется, когда
// клиент не передал параметр limit.
func NewHandler(log *slog.Logger, getter articlesGetter, defaultLimit int) *Handler {
	return &Handler{
		log:            log,
		articlesGetter: getter,
		defaultLimit:   defaultLimit,
	}
}

// getArticles - хендлер для эндпоинта GET /api/articles
func (h *Handler) getArticles(w http.ResponseWriter, r *http.Request) {
	const op = "transport.http/getArticles"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", requestID(r.Context())),
	)
	if r.Method != http.MethodGet {
		log.Warn("method not allowed", slog.String("method", r.Method))
		respondWithError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
		return
	}
	limit := h.defaultLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		var err error
		limit, err = strconv.Atoi(limitStr)
		if err != nil || limit <= 0 {
			log.Warn("invalid limit parameter", slog.String("limit", limitStr))
			respondWithError(w, http.StatusBadRequest, "Invalid 'limit' parameter")
			return
		}
	}

	articles, err := h.articlesGetter.GetArticles(r.Context(), limit)
	if err != nil {
		log.Error("Failed to get articles", slog.Any("error", err))
		respondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	if articles == nil {
		articles = []domain.Article{}
	}

	respondWithJSON(w, http.StatusOK, articles)
}

// healthCheck - хендлер для проверки состояния сервиса
func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Failed to marshal JSON response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

type requestIDKey struct{}

var requestSeq atomic.Uint64

func newRequestID() string {
	return fmt.Sprintf("req-%s-%d", time.Now().Format("20060102150405"), requestSeq.Add(1))
}

func withRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func requestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}
