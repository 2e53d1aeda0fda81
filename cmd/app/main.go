package main

import (
	"context"
	"errors"
	"flag"
	"github.com/burenotti/nutrition_counselling/internal/adapter/api"
	"github.com/burenotti/nutrition_counselling/internal/adapter/notify"
	"github.com/burenotti/nutrition_counselling/internal/adapter/storage"
	counsellingstorage "github.com/burenotti/nutrition_counselling/internal/adapter/storage/counselling"
	sessionstorage "github.com/burenotti/nutrition_counselling/internal/adapter/storage/sessions"
	"github.com/burenotti/nutrition_counselling/internal/adapter/telemetry"
	"github.com/burenotti/nutrition_counselling/internal/adapter/webapi"
	"github.com/burenotti/nutrition_counselling/internal/app/messagebus"
	metabolicservice "github.com/burenotti/nutrition_counselling/internal/app/metabolic"
	sessionapp "github.com/burenotti/nutrition_counselling/internal/app/session"
	"github.com/burenotti/nutrition_counselling/internal/config"
	"github.com/burenotti/nutrition_counselling/internal/domain"
	"github.com/burenotti/nutrition_counselling/internal/domain/metabolic"
	"github.com/burenotti/nutrition_counselling/internal/domain/session"
	"github.com/leporo/sqlf"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "config/config.yaml", "path to config file")
	flag.Parse()

	if err := config.LoadDotEnv(".env"); err != nil {
		panic(err)
	}
	cfg := config.MustLoad(configPath)
	logger := initLogger(cfg)

	metrics := telemetry.New()
	webhook := notify.NewWebhook(cfg.Notify.WebhookURL, cfg.Notify.Timeout, logger)

	bus := messagebus.New(logger, cfg.Bus.Buffer)
	bus.Register(messagebus.AnyEvent, metrics.HandleEvent)
	bus.Register(session.EventFieldChanged, webhook.Handle)
	bus.Register(session.EventNotesSaved, webhook.Handle)
	bus.Register(session.EventRefreshed, func(event domain.Event) error {
		e := event.(session.RefreshedEvent)
		logger.Info("record refreshed", "session_id", e.SessionID, "changed", e.Changed)
		return nil
	})

	store, closeStore := initRecordStore(cfg, logger)
	defer closeStore()

	metabolicService := metabolicservice.New(store, logger, metrics)
	sessionService := sessionapp.New(metabolicService, logger)

	server := api.NewServer(
		api.Addr(cfg.Server.Host, cfg.Server.Port),
		api.Logger(logger),
		api.SessionStorage(sessionstorage.NewMemoryStorage()),
		api.MetabolicService(metabolicService),
		api.SessionService(sessionService),
		api.MessageBus(bus),
		api.Metrics(metrics),
		api.AllowOrigins(cfg.Server.AllowedOrigins...),
		api.ServerTimeouts(api.Timeouts{
			Read:       cfg.Server.ReadTimeout,
			Write:      cfg.Server.WriteTimeout,
			Idle:       cfg.Server.IdleTimeout,
			ReadHeader: cfg.Server.ReadHeaderTimeout,
		}),
	)

	ctx := context.Background()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error)

	go func() {
		defer close(errCh)
		errCh <- server.Start()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server was not shutdown gracefully", "error", err)
		}
	case err := <-errCh:
		if err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				logger.Error("server closed with unexpected error", "error", err)
			}
		}
	}

	sessionService.Wait()
	bus.Close()
	logger.Info("server shutdown")
}

func initRecordStore(cfg *config.Config, logger *slog.Logger) (metabolic.RecordStore, func()) {
	switch cfg.RecordStore.Driver {
	case config.DriverWebAPI:
		logger.Info("using web api record store", "base_url", cfg.RecordStore.BaseURL)
		client := webapi.New(cfg.RecordStore.BaseURL, cfg.RecordStore.Timeout, webapi.WithToken(cfg.RecordStore.Token))
		return client, func() {}
	default:
		sqlf.SetDialect(sqlf.PostgreSQL)

		ctx, cancel := context.WithTimeout(context.Background(), cfg.RecordStore.Timeout)
		defer cancel()

		db, err := storage.Open(ctx, cfg.RecordStore.DSN)
		if err != nil {
			panic("failed to connect database: " + err.Error())
		}
		logger.Info("using postgres record store")
		return counsellingstorage.NewPostgresStorage(db), func() {
			if err := db.Close(); err != nil {
				logger.Error("failed to close database", "error", err)
			}
		}
	}
}

func initLogger(cfg *config.Config) *slog.Logger {
	var handler slog.Handler
	switch cfg.App.Env {
	case config.Development:
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			AddSource: true,
			Level:     slog.LevelDebug,
		})
	case config.Production:
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			AddSource: false,
			Level:     slog.LevelInfo,
		})
	default:
		panic("invalid env")
	}

	return slog.New(handler)
}
