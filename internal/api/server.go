package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"autoposter-bot/internal/logger"
	"autoposter-bot/internal/usecase"
)

// UpdateHandler consumes Telegram updates delivered through the webhook.
type UpdateHandler interface {
	HandleUpdate(ctx context.Context, update tgbotapi.Update)
}

type Options struct {
	UseCases    *usecase.UseCases
	Updates     UpdateHandler
	WebhookPath string
	Version     string
}

// NewRouter builds the HTTP surface. The webhook route is only mounted
// when an update handler is given.
func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger.Component("http")))
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]string{"status": "healthy", "version": opts.Version})
	})

	if opts.Updates != nil && opts.WebhookPath != "" {
		r.Post(opts.WebhookPath, webhookHandler(opts.Updates))
	}
	if opts.UseCases != nil {
		r.Mount("/api/v1/posts", NewPostHandler(opts.UseCases).Routes())
	}
	return r
}

func requestLogger(log *logrus.Entry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			entry := log.WithField("request_id", middleware.GetReqID(r.Context()))
			next.ServeHTTP(ww, r.WithContext(logger.NewContext(r.Context(), entry)))
			entry.WithFields(logrus.Fields{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   ww.Status(),
				"bytes":    ww.BytesWritten(),
				"duration": time.Since(start).String(),
			}).Info("HTTP request")
		})
	}
}

func webhookHandler(updates UpdateHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var update tgbotapi.Update
		if err := render.DecodeJSON(r.Body, &update); err != nil {
			logger.WithContext(r.Context()).WithError(err).Warn("Rejected malformed webhook update")
			renderError(w, r, http.StatusBadRequest, "invalid update payload")
			return
		}
		updates.HandleUpdate(r.Context(), update)
		render.JSON(w, r, map[string]string{"status": "ok"})
	}
}
