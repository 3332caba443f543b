package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"golang.org/x/sync/errgroup"

	"github.com/liquidevz/rangaone/internal/api"
	"github.com/liquidevz/rangaone/internal/api/auth"
	"github.com/liquidevz/rangaone/internal/backend"
	"github.com/liquidevz/rangaone/internal/config"
	"github.com/liquidevz/rangaone/internal/notify"
	"github.com/liquidevz/rangaone/internal/session"
	"github.com/liquidevz/rangaone/internal/stocks"
	"github.com/liquidevz/rangaone/internal/storage"
)

func main() {
	level := new(slog.LevelVar)

	// Pretty handler для stdout с цветами
	prettyHandler := tint.NewHandler(os.Stdout, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen, // "3:04PM"
	})

	logger := slog.New(prettyHandler)

	// Загрузка конфигурации
	cfg, err := config.Load(logger)
	if err != nil {
		logger.Error("Invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	level.Set(cfg.ParseLevel())

	logFile, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
	if err != nil {
		log.Fatal("Failed to open log file:", err)
	}
	defer logFile.Close()

	// Обычный текстовый handler для файла
	fileHandler := slog.NewTextHandler(logFile, &slog.HandlerOptions{
		Level: level,
	})

	// Мультиплексируем логи в оба handler'а
	logger = slog.New(&multiHandler{
		handlers: []slog.Handler{prettyHandler, fileHandler},
	})
	slog.SetDefault(logger)

	logger.Info("=== RangaOne Admin Dashboard ===")

	if err := run(cfg, logger); err != nil {
		logger.Error("Server stopped with error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("✅ Server stopped")
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Инициализация БД
	store, err := storage.New(cfg.DBPath, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	// Инициализация auth сервиса
	authService := auth.NewService(cfg.JWTSecret, 24*time.Hour) // Токен действителен 24 часа

	if err := authService.EnsureAdmin(ctx, store, cfg.AdminUsername, cfg.AdminPassword, logger); err != nil {
		return err
	}

	client := backend.NewClient(cfg.APIBaseURL, cfg.APIToken, logger)
	stockService := stocks.NewService(client, cfg.CacheTTL, logger)

	notifier := notify.Multi{
		notify.Logger{L: logger},
		notify.NewActivityLog(store, logger),
	}

	if cfg.TelegramToken != "" {
		tg, err := notify.NewTelegram(cfg.TelegramToken, cfg.TelegramChatID, logger)
		if err != nil {
			// Без Telegram дашборд работает, уведомления остаются в логе
			logger.Warn("⚠️  Telegram notifications unavailable", slog.Any("error", err))
		} else {
			notifier = append(notifier, tg)
		}
	}

	apiHandler := api.New(ctx, api.Deps{
		Storage:  store,
		Auth:     authService,
		Stocks:   stockService,
		Backend:  client,
		Notifier: notifier,
		Session: session.Config{
			QuietPeriod:     cfg.SearchDebounce,
			RefreshInterval: cfg.RefreshInterval,
		},
		Logger: logger,
	})

	// HTTP сервер
	srv := &http.Server{
		Addr:         cfg.Address,
		Handler:      apiHandler.SetupRouter(cfg.WebDir),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("🚀 Server starting...", slog.String("address", cfg.Address))
		logger.Info("📡 Backend", slog.String("url", cfg.APIBaseURL))

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()

		logger.Info("🛑 Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
