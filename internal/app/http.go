package app

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"moderator_bot/internal/config"
)

const botName = "moderator"

type webhookResponse struct {
	OK bool `json:"ok"`
}

type statusResponse struct {
	Status          string `json:"status"`
	Bot             string `json:"bot"`
	WebhookEndpoint string `json:"webhook_endpoint,omitempty"`
	HealthEndpoint  string `json:"health_endpoint,omitempty"`
}

func (a *App) Handler() http.Handler {
	r := chi.NewRouter()
	applyMiddlewares(r, a.logger)

	r.Get("/", a.handleRoot)
	r.Get("/health", a.handleHealth)
	r.Post(config.WebhookPath, a.handleWebhook)
	return r
}

func applyMiddlewares(r chiRouter, log *zap.Logger) {
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))
	r.Use(requestLogger(log))
}

func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			if log != nil {
				log.Info("http_request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.String("request_id", chimiddleware.GetReqID(r.Context())),
					zap.Duration("duration", time.Since(start)),
				)
			}
		})
	}
}

type chiRouter interface {
	Use(middlewares ...func(http.Handler) http.Handler)
}

func (a *App) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{
		Status:          "ok",
		Bot:             botName,
		WebhookEndpoint: config.WebhookPath,
		HealthEndpoint:  "/health",
	})
}

func (a *App) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{Status: "ok", Bot: botName})
}

// handleWebhook answers 200 for every well-formed update, with ok=false
// when handling it blew up, so Telegram does not redeliver.
func (a *App) handleWebhook(w http.ResponseWriter, r *http.Request) {
	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		a.logger.Warn("decode webhook update", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, webhookResponse{OK: false})
		return
	}

	writeJSON(w, http.StatusOK, webhookResponse{OK: a.processUpdate(r.Context(), update)})
}

func (a *App) processUpdate(ctx context.Context, update tgbotapi.Update) (ok bool) {
	ctx = withCorrelationID(ctx, uuid.NewString())
	defer func() {
		if rec := recover(); rec != nil {
			a.log(ctx).Error("update handler panicked",
				zap.Int("update_id", update.UpdateID),
				zap.Any("panic", rec),
				zap.Stack("stack"),
			)
			ok = false
		}
	}()

	a.router.Dispatch(ctx, update)
	return true
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
