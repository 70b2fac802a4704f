package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mux-livestream/internal/livestream"
	"mux-livestream/internal/platform/config"
	"mux-livestream/internal/platform/logger"
	"mux-livestream/internal/platform/metrics"
	"mux-livestream/internal/platform/ratelimit"
	"mux-livestream/internal/settings"
	"mux-livestream/internal/storage"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const startupTimeout = 10 * time.Second

func main() {
	_ = config.Load()
	cfg := config.FromEnv()

	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	secrets, err := settings.NewSource(cfg.SettingsFile, cfg.WebhookSecret)
	if err != nil {
		log.Error("load settings failed", "error", err)
		os.Exit(1)
	}
	warnIfNoSecret(log, secrets)

	startCtx, cancelStart := context.WithTimeout(context.Background(), startupTimeout)
	store, closeStore, err := storage.Open(startCtx, storage.Options{
		Driver:        cfg.StoreDriver,
		TablePrefix:   cfg.TablePrefix,
		SQLitePath:    cfg.SQLitePath,
		DatabaseURL:   cfg.DatabaseURL,
		RedisAddr:     cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		RedisDB:       cfg.RedisDB,
	})
	if err != nil {
		cancelStart()
		log.Error("open store failed", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}
	if err := store.CreateTable(startCtx); err != nil {
		cancelStart()
		log.Error("create table failed", "driver", cfg.StoreDriver, "error", err)
		closeAndExit(log, closeStore, 1)
	}
	cancelStart()

	svc := livestream.NewService(livestream.NewVerifier(secrets), store)
	met := metrics.New()
	h := livestream.NewHandler(svc, logger.WithComponent(log, "livestream"), met).
		WithMaxBodyBytes(cfg.MaxBodyBytes)
	limiter := ratelimit.New(cfg.RateLimit, cfg.RateBurst)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logger.RequestLogger(log))
	r.Use(metrics.RequestMiddleware(met))
	r.Use(middleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		met.Handler(func() {
			if n, err := store.LiveCount(r.Context()); err == nil {
				met.SetLiveStreams(n)
			} else {
				log.Warn("count live streams failed", "error", err)
			}
		}).ServeHTTP(w, r)
	})
	r.Route("/"+cfg.Namespace+"/v1", func(r chi.Router) {
		h.Routes(r, ratelimit.Middleware(limiter))
	})

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
	}()

	log.Info("server starting",
		"port", cfg.Port,
		"store_driver", cfg.StoreDriver,
		"webhook_path", "/"+cfg.Namespace+"/v1/webhooks/mux",
		"log_level", cfg.LogLevel,
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
wait:
	for {
		select {
		case err := <-serveErr:
			log.Error("server error", "error", err)
			closeAndExit(log, closeStore, 1)
		case sig := <-sigCh:
			if sig != syscall.SIGHUP {
				break wait
			}
			if err := secrets.Reload(); err != nil {
				log.Error("reload settings failed", "error", err)
				continue
			}
			log.Info("settings reloaded", "file", cfg.SettingsFile)
			warnIfNoSecret(log, secrets)
		}
	}

	log.Info("shutdown signal received, draining connections")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	err = srv.Shutdown(ctx)
	cancel()
	if err != nil {
		log.Error("shutdown error", "error", err)
		closeAndExit(log, closeStore, 1)
	}

	closeAndExit(log, closeStore, 0)
}

// closeAndExit releases the store before exiting; os.Exit skips deferred calls.
func closeAndExit(log *slog.Logger, closeStore func() error, code int) {
	os.Exit(releaseStore(log, closeStore, code))
}

// releaseStore closes the store and returns the process exit code, which is
// raised to 1 when the close fails.
func releaseStore(log *slog.Logger, closeStore func() error, code int) int {
	if err := closeStore(); err != nil {
		log.Error("close store failed", "error", err)
		code = 1
	}
	if code == 0 {
		log.Info("server stopped")
	}
	return code
}

func warnIfNoSecret(log *slog.Logger, secrets *settings.Source) {
	if secrets.WebhookSecret() == "" {
		log.Warn("webhook secret is not configured; all webhook requests will be rejected",
			"hint", "set MUX_WEBHOOK_SECRET or run `migrate set-secret`")
	}
}
