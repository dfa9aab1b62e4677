package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"finance-tracker-backend/internal/api"
	"finance-tracker-backend/internal/auth"
	"finance-tracker-backend/internal/cache"
	"finance-tracker-backend/internal/config"
	"finance-tracker-backend/internal/dashboard"
	"finance-tracker-backend/internal/ledger"
	"finance-tracker-backend/internal/mail"
	"finance-tracker-backend/internal/session"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger := setup()
			if err := cfg.Validate(); err != nil {
				return err
			}
			return serve(cmd.Context(), cfg, logger)
		},
	}
}

// newMailer picks the reset-mail transport named by MAIL_BACKEND. The
// returned close function is never nil.
func newMailer(cfg *config.Config, logger *slog.Logger) (mail.Mailer, func() error, error) {
	switch cfg.MailBackend {
	case "resend":
		return mail.NewResendMailer(cfg.ResendAPIKey, cfg.EmailFrom), func() error { return nil }, nil
	case "amqp":
		client, err := mail.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize AMQP client: %w", err)
		}
		return client, client.Close, nil
	default:
		return mail.NewLogMailer(logger), func() error { return nil }, nil
	}
}

func serve(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if strings.EqualFold(cfg.LogLevel, "debug") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	st, err := openStore(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer st.Close()

	var (
		redisClient *redis.Client
		sessions    session.Store
	)
	redisClient, err = cache.Connect(ctx, cfg.RedisURL)
	if err != nil {
		logger.Warn("Failed to initialize Redis, continuing with in-memory sessions and no cache", "error", err)
		sessions = session.NewMemory(cfg.SessionTTL)
	} else {
		defer redisClient.Close()
		sessions = session.NewRedis(redisClient, cfg.SessionTTL)
	}
	dashboardCache := cache.NewDashboard(redisClient, cfg.DashboardCacheTTL, logger)

	mailer, closeMailer, err := newMailer(cfg, logger)
	if err != nil {
		return err
	}
	defer closeMailer()

	authSvc := auth.NewService(st, sessions, mailer, cfg.SessionSecret, cfg.AppBaseURL, logger)
	srv := api.NewServer(st, authSvc, ledger.NewService(st, dashboardCache), dashboard.NewService(st, dashboardCache), api.Options{
		CORSOrigins:  cfg.CORSOrigins,
		SessionTTL:   cfg.SessionTTL,
		SecureCookie: strings.HasPrefix(cfg.AppBaseURL, "https://"),
		Logger:       logger,
	})

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting", "port", cfg.Port, "data_backend", cfg.DataBackend, "mail_backend", cfg.MailBackend)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	logger.Info("Server stopped gracefully")
	return nil
}
