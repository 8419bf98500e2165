package main

import (
	"context"
	"embed"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"autoposter-bot/config"
	"autoposter-bot/internal/ai"
	"autoposter-bot/internal/api"
	"autoposter-bot/internal/bot"
	"autoposter-bot/internal/domain"
	"autoposter-bot/internal/localization"
	"autoposter-bot/internal/logger"
	"autoposter-bot/internal/publisher"
	"autoposter-bot/internal/scheduler"
	"autoposter-bot/internal/session"
	"autoposter-bot/internal/source"
	"autoposter-bot/internal/storage"
	"autoposter-bot/internal/storage/memory"
	"autoposter-bot/internal/storage/postgres"
	"autoposter-bot/internal/usecase"
)

const (
	version           = "1.0.0"
	autoPublishJobTag = "auto_publish_confirmed"
	shutdownTimeout   = 15 * time.Second
)

//go:embed locales
var localeFiles embed.FS

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	logger.Init(cfg.LogLevel, cfg.LogFormat)
	log := logger.Component("main")
	log.WithField("version", version).Info("Starting AutoPoster bot...")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.WithError(err).Fatal("AutoPoster bot stopped with an error")
	}
	log.Info("AutoPoster bot stopped")
}

func run(ctx context.Context, cfg config.Config, log *logrus.Entry) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	repo, sessions, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	generator, err := ai.NewGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		return err
	}
	defer generator.Close()

	defaults, err := cfg.DefaultPlatformList()
	if err != nil {
		return err
	}
	fanOut := publisher.NewMultiPlatform(defaults, platformPublishers(cfg, log)...)
	fetcher := source.NewFetcher()
	useCases := usecase.New(repo, generator, fanOut, fetcher)

	localizer, err := localization.NewLocalizer(localeFiles)
	if err != nil {
		return err
	}

	tgAPI, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return err
	}
	tgAPI.Debug = cfg.Debug
	if err := tgbotapi.SetLogger(logger.Component("telegram")); err != nil {
		log.WithError(err).Warn("Failed to attach Telegram client logger")
	}
	log.WithField("username", tgAPI.Self.UserName).Info("Authorized on Telegram")

	telegramBot := bot.NewBot(tgAPI, bot.Options{
		UseCases:  useCases,
		Sessions:  sessions,
		Localizer: localizer,
		Ideas:     fetcher,
		FeedURLs:  cfg.TopicFeedURLs,
		Platforms: fanOut.SupportedPlatforms(),
		Language:  cfg.DefaultLanguage,
	})

	routerOpts := api.Options{UseCases: useCases, Version: version}
	webhookURL := cfg.WebhookURL()
	if webhookURL != "" {
		routerOpts.Updates = telegramBot
		routerOpts.WebhookPath = config.WebhookPath
	}
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.NewRouter(routerOpts),
		ReadHeaderTimeout: 10 * time.Second,
	}
	serverErr := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	appScheduler, err := scheduler.NewScheduler()
	if err != nil {
		return err
	}
	if interval := cfg.AutoPublishInterval(); interval > 0 {
		job := func() {
			res := useCases.PublishConfirmed.Execute(ctx, defaults)
			if !res.Success {
				log.WithError(res.Err).Error("Auto-publish run failed")
				return
			}
			log.WithFields(logrus.Fields{"published": res.Published, "failed": res.Failed}).Info("Auto-publish run finished")
		}
		if err := appScheduler.AddJob(autoPublishJobTag, interval, job); err != nil {
			return err
		}
		log.WithField("interval", interval.String()).Info("Auto-publish of confirmed posts scheduled")
	}
	appScheduler.Start()

	listenDone := make(chan struct{})
	if webhookURL != "" {
		close(listenDone)
		wh, err := tgbotapi.NewWebhook(webhookURL)
		if err != nil {
			return err
		}
		if _, err := tgAPI.Request(wh); err != nil {
			return err
		}
		log.WithField("url", webhookURL).Info("Telegram webhook registered")
	} else {
		if _, err := tgAPI.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
			log.WithError(err).Warn("Failed to remove Telegram webhook")
		}
		u := tgbotapi.NewUpdate(0)
		u.Timeout = 60
		updates := tgAPI.GetUpdatesChan(u)
		go func() {
			defer close(listenDone)
			telegramBot.Listen(ctx, updates)
		}()
		log.Info("Polling Telegram for updates")
	}

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	case err, ok := <-serverErr:
		if ok {
			runErr = err
		}
	}

	cancel()
	if webhookURL == "" {
		tgAPI.StopReceivingUpdates()
	}
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("HTTP server shutdown incomplete")
	}
	<-listenDone
	if err := appScheduler.Shutdown(); err != nil {
		log.WithError(err).Warn("Scheduler shutdown failed")
	}
	return runErr
}

// openStore picks the post repository from DATABASE_URL and the matching
// session store.
func openStore(ctx context.Context, cfg config.Config, log *logrus.Entry) (usecase.PostRepository, session.Store, func(), error) {
	var sessions session.Store = session.NewMemoryStore()
	switch {
	case cfg.UsesMemory():
		log.Warn("Using in-memory post storage, posts are lost on restart")
		return memory.NewPostRepository(), sessions, func() {}, nil
	case cfg.UsesPostgres():
		repo, err := postgres.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := repo.Migrate(ctx); err != nil {
			repo.Close()
			return nil, nil, nil, err
		}
		log.Info("Using PostgreSQL post storage")
		return repo, sessions, repo.Close, nil
	}

	db, err := storage.NewStorage(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, nil, err
	}
	if cfg.SessionStore == config.SessionStoreDatabase {
		sessions = db.Sessions()
	}
	log.WithField("path", cfg.DatabaseURL).Info("Using SQLite post storage")
	closeDB := func() {
		if err := db.Close(); err != nil {
			log.WithError(err).Warn("Failed to close database")
		}
	}
	return db, sessions, closeDB, nil
}

func platformPublishers(cfg config.Config, log *logrus.Entry) []publisher.PlatformPublisher {
	var pubs []publisher.PlatformPublisher
	if cfg.MediumAPIKey != "" {
		pubs = append(pubs, publisher.NewMedium(cfg.MediumAPIKey))
	}
	if cfg.DevToAPIKey != "" {
		pubs = append(pubs, publisher.NewDevTo(cfg.DevToAPIKey))
	}
	if cfg.RedditConfigured() {
		pubs = append(pubs, publisher.NewReddit(publisher.RedditConfig{
			ClientID:     cfg.RedditClientID,
			ClientSecret: cfg.RedditClientSecret,
			Username:     cfg.RedditUsername,
			Password:     cfg.RedditPassword,
			Subreddit:    cfg.RedditSubreddit,
			UserAgent:    cfg.RedditUserAgent,
		}))
	}
	names := make([]domain.Platform, 0, len(pubs))
	for _, p := range pubs {
		names = append(names, p.Platform())
	}
	log.WithField("platforms", names).Info("Configured publishers")
	return pubs
}
