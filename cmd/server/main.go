// Package main runs the webhook behind a gin HTTP server for local use and
// container deployments.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"shopping-list-bot/internal/app"
	"shopping-list-bot/internal/config"
	"shopping-list-bot/internal/logger"
	"shopping-list-bot/internal/metrics"
	"shopping-list-bot/internal/sentry"
)

const (
	shutdownTimeout = 10 * time.Second
	// Clearing the list waits for DynamoDB to drop the table.
	writeTimeout = 3 * time.Minute
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New("info").WithError(err).Error("invalid configuration")
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	if err := sentry.Initialize(sentry.Config{DSN: cfg.SentryDSN, Environment: cfg.SentryEnvironment}); err != nil {
		log.WithError(err).Warn("sentry disabled")
	}
	defer sentry.Flush(2 * time.Second)

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	h, err := app.NewWebhookHandler(ctx, cfg, log, m)
	if err != nil {
		log.WithError(err).Error("failed to create webhook handler")
		os.Exit(1)
	}

	if cfg.LogLevel == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	setupRoutes(router, h, registry)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      writeTimeout,
	}

	go func() {
		log.Info("server listening", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
	log.Info("server stopped")
}
