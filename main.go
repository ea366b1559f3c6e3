package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/chucky-1/ledgerbot/internal/config"
	"github.com/chucky-1/ledgerbot/internal/consumer"
	"github.com/chucky-1/ledgerbot/internal/model"
	"github.com/chucky-1/ledgerbot/internal/producer"
	"github.com/chucky-1/ledgerbot/internal/repository"
	"github.com/chucky-1/ledgerbot/internal/service"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatal(err)
	}
	if err = setupLogger(cfg.Log); err != nil {
		logrus.Fatal(err)
	}

	storage, err := openStorage(ctx, cfg.Database)
	if err != nil {
		logrus.Fatal(err)
	}
	defer storage.Close()

	sessionsRepo, closeSessions, err := openSessions(ctx, cfg.Sessions)
	if err != nil {
		logrus.Fatal(err)
	}
	defer closeSessions()

	bot, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		logrus.Fatal(err)
	}
	bot.Debug = cfg.Telegram.Debug
	logrus.Infof("authorized on account %s", bot.Self.UserName)

	telegram := producer.NewTelegram(bot)
	if err = telegram.RegisterCommands(); err != nil {
		logrus.Errorf("couldn't register commands: %v", err)
	}

	updatesChan, stopUpdates, err := listen(bot, cfg)
	if err != nil {
		logrus.Fatal(err)
	}

	retrier := service.NewRetrier(cfg.Database.RetryAttempts, cfg.Database.RetryInterval)
	sessions := service.NewSessions(sessionsRepo)
	controller := consumer.NewController(
		sessions,
		service.NewRecorder(storage, retrier),
		service.NewDebtBook(storage, retrier),
		service.NewCleaner(storage, retrier),
		service.NewReporter(storage, retrier),
		validator.New(),
		cfg.Database.Timeout,
	)

	events := make(chan model.Event)
	hub := consumer.NewHub(controller, telegram, cfg.WorkerIdleTimeout)
	hubDone := make(chan struct{})
	go func() {
		// the hub finishes queued events after the bot closes events
		hub.Consume(context.Background(), events)
		close(hubDone)
	}()
	go consumer.NewBot(bot.Self.UserName, updatesChan, events).Consume(ctx)
	go consumer.NewJanitor(sessions, cfg.Sessions.CleanupInterval).Consume(ctx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, os.Interrupt)
	<-quit
	logrus.Info("shutting down")
	cancel()
	stopUpdates()

	select {
	case <-hubDone:
	case <-time.After(shutdownTimeout):
		logrus.Warn("hub didn't stop in time")
	}
}

func setupLogger(cfg config.Log) error {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("setupLogger: %w", err)
	}
	logrus.SetLevel(level)
	if cfg.Format == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return nil
}

func openStorage(ctx context.Context, cfg config.Database) (repository.Storage, error) {
	var (
		storage repository.Storage
		err     error
	)
	switch cfg.Driver {
	case config.DriverSQLite:
		storage, err = repository.NewSQLite(cfg.URL)
		if err != nil {
			return nil, err
		}
	default:
		connectCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
		pool, connErr := repository.ConnectPostgres(connectCtx, cfg.URL)
		if connErr != nil {
			return nil, connErr
		}
		storage = repository.NewPostgres(pool)
	}

	migrateCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	if err = storage.Migrate(migrateCtx); err != nil {
		storage.Close()
		return nil, err
	}
	logrus.Infof("%s storage is ready", cfg.Driver)
	return storage, nil
}

func openSessions(ctx context.Context, cfg config.Sessions) (repository.Sessions, func(), error) {
	if cfg.Backend != config.BackendMongo {
		logrus.Info("sessions are kept in memory")
		return repository.NewSessionsLocalStorage(cfg.TTL), func() {}, nil
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	cli, err := repository.ConnectMongo(connectCtx, cfg.MongoEndpoint)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := cli.Disconnect(disconnectCtx); err != nil {
			logrus.Errorf("couldn't disconnect from mongo: %v", err)
		}
	}

	sessions := repository.NewSessionsMongo(cli, cfg.MongoDatabase, cfg.TTL)
	if err = sessions.EnsureIndexes(connectCtx); err != nil {
		closeFn()
		return nil, nil, err
	}
	logrus.Info("sessions are kept in mongo")
	return sessions, closeFn, nil
}

// listen starts receiving updates by webhook when a public host is configured, by long polling otherwise
func listen(bot *tgbotapi.BotAPI, cfg *config.Config) (tgbotapi.UpdatesChannel, func(), error) {
	if !cfg.Webhook.Enabled() {
		// getUpdates is refused while a webhook is set
		if _, err := bot.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
			return nil, nil, fmt.Errorf("listen, couldn't delete webhook: %w", err)
		}
		u := tgbotapi.NewUpdate(0)
		u.Timeout = cfg.Telegram.Timeout
		logrus.Info("receiving updates by long polling")
		return bot.GetUpdatesChan(u), bot.StopReceivingUpdates, nil
	}

	wh, err := tgbotapi.NewWebhook(cfg.Webhook.URL())
	if err != nil {
		return nil, nil, fmt.Errorf("listen, bad webhook url: %w", err)
	}
	if _, err = bot.Request(wh); err != nil {
		return nil, nil, fmt.Errorf("listen, couldn't set webhook: %w", err)
	}

	updatesChan := bot.ListenForWebhook(cfg.Webhook.Path)
	server := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Webhook.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("webhook server: %v", err)
		}
	}()
	logrus.Infof("receiving updates by webhook %s on port %d", cfg.Webhook.URL(), cfg.Webhook.Port)

	stop := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logrus.Errorf("couldn't stop webhook server: %v", err)
		}
		if _, err := bot.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
			logrus.Errorf("couldn't delete webhook: %v", err)
		}
	}
	return updatesChan, stop, nil
}
