package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/joho/godotenv"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/jomsplit/internal/auth"
	"github.com/mmynk/jomsplit/internal/config"
	"github.com/mmynk/jomsplit/internal/draft"
	"github.com/mmynk/jomsplit/internal/httpapi"
	"github.com/mmynk/jomsplit/internal/metrics"
	"github.com/mmynk/jomsplit/internal/middleware"
	"github.com/mmynk/jomsplit/internal/notify"
	"github.com/mmynk/jomsplit/internal/service"
	"github.com/mmynk/jomsplit/internal/storage"
	"github.com/mmynk/jomsplit/internal/storage/postgres"
	"github.com/mmynk/jomsplit/internal/storage/sqlite"
	"github.com/mmynk/jomsplit/pkg/api/apiconnect"
	"github.com/mmynk/jomsplit/pkg/logging"
)

// sweepInterval is how often expired drafts are dropped.
const sweepInterval = time.Minute

func main() {
	// A missing .env is fine; the environment and config.yaml still apply.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	logger := logging.Setup(cfg.Log.Level, cfg.Log.Format)

	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid config", "error", err)
		os.Exit(1)
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer store.Close()
	logger.Info("Storage initialized", "driver", cfg.Database.Driver)

	reg := metrics.NewRegistry()
	m := metrics.New(reg)
	verifier := auth.NewVerifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer)

	var notifier notify.Notifier = notify.LogNotifier{Logger: logger}
	if cfg.Notify.WebhookURL != "" {
		notifier = notify.NewWebhookNotifier(cfg.Notify.WebhookURL, nil)
		logger.Info("Notifications go to webhook", "url", cfg.Notify.WebhookURL)
	}
	dispatcher := notify.NewDispatcher(notifier, cfg.Notify.MaxRetries, cfg.Notify.Backoff,
		notify.WithMetrics(m),
		notify.WithLogger(logger),
		notify.WithTimeout(cfg.Notify.Timeout),
	)

	drafts := draft.NewStore(cfg.Draft.TTL, draft.WithMetrics(m))
	go drafts.Run(ctx, sweepInterval)

	// Splits and drafts work anonymously; receipts and friends belong to a user.
	opts := connect.WithInterceptors(
		middleware.LoggingInterceptor(logger),
		middleware.MetricsInterceptor(m),
		middleware.OptionalAuth(verifier),
	)
	authed := connect.WithInterceptors(
		middleware.LoggingInterceptor(logger),
		middleware.MetricsInterceptor(m),
		middleware.RequireAuth(verifier),
	)

	split := service.NewSplitService(m, cfg.Currency)
	mount := func(path string, h http.Handler) httpapi.Mount {
		return httpapi.Mount{Path: path, Handler: h}
	}
	mounts := []httpapi.Mount{
		mount(apiconnect.NewSplitServiceHandler(split, opts)),
		mount(apiconnect.NewDraftServiceHandler(service.NewDraftService(store, drafts, dispatcher, m, cfg.Currency), opts)),
		mount(apiconnect.NewReceiptServiceHandler(service.NewReceiptService(store, cfg.Currency), authed)),
		mount(apiconnect.NewFriendServiceHandler(service.NewFriendService(store), authed)),
	}

	router := httpapi.NewRouter(split, reg, logger, mounts...)

	// h2c for HTTP/2 without TLS, required for Connect streaming clients.
	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           h2c.NewHandler(router, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting", "address", server.Addr, "url", fmt.Sprintf("http://localhost%s", server.Addr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down", "timeout", cfg.Server.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	// Confirmed receipts may still have notifications in flight.
	if err := dispatcher.Wait(shutdownCtx); err != nil {
		logger.Warn("Notifications still pending at shutdown", "error", err)
	}
	return nil
}

func openStore(ctx context.Context, db config.DatabaseConfig) (storage.Store, error) {
	if db.Driver == "postgres" {
		s, err := postgres.New(ctx, db.URL)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	s, err := sqlite.New(db.Path)
	if err != nil {
		return nil, err
	}
	return s, nil
}
