package main

import (
	"context"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/prometheus/client_golang/prometheus"

	"shopping-list-bot/internal/app"
	"shopping-list-bot/internal/config"
	"shopping-list-bot/internal/logger"
	"shopping-list-bot/internal/metrics"
	"shopping-list-bot/internal/sentry"
)

const sentryFlushTimeout = 2 * time.Second

func main() {
	ctx := context.Background()

	// ---- Configuration (read only here) ----
	cfg, err := config.Load()
	if err != nil {
		logger.New("info").WithError(err).Error("invalid configuration")
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	if err := sentry.Initialize(sentry.Config{
		DSN:         cfg.SentryDSN,
		Environment: cfg.SentryEnvironment,
		Release:     os.Getenv("AWS_LAMBDA_FUNCTION_VERSION"),
	}); err != nil {
		log.WithError(err).Warn("sentry disabled")
	}

	// Nothing scrapes a Lambda; the registry only keeps the counters alive.
	m := metrics.New(prometheus.NewRegistry())

	// ---- Handler ----
	h, err := app.NewWebhookHandler(ctx, cfg, log, m)
	if err != nil {
		log.WithError(err).Error("failed to create webhook handler")
		sentry.CaptureException(err)
		sentry.Flush(sentryFlushTimeout)
		os.Exit(1)
	}

	lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		defer sentry.Flush(sentryFlushTimeout)
		return h.Handle(ctx, req)
	})
}
