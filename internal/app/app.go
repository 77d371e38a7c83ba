// Package app wires configuration, AWS clients, and the LINE adapter into a
// webhook handler shared by the Lambda and server entry points.
package app

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"

	"shopping-list-bot/handler"
	"shopping-list-bot/internal/config"
	"shopping-list-bot/internal/integrations/line"
	"shopping-list-bot/internal/integrations/paramstore"
	"shopping-list-bot/internal/logger"
	"shopping-list-bot/internal/metrics"
	"shopping-list-bot/internal/repository"
	"shopping-list-bot/internal/sentry"
	"shopping-list-bot/internal/usecase"
)

// NewWebhookHandler builds the full dependency graph. It resolves the channel
// access token once, so it belongs to cold start.
func NewWebhookHandler(ctx context.Context, cfg *config.Config, log *logger.Logger, m *metrics.Metrics) (*handler.Handler, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("app: load AWS config: %w", err)
	}

	params, err := paramstore.New(awsssm.NewFromConfig(awsCfg))
	if err != nil {
		return nil, fmt.Errorf("app: create SSM client: %w", err)
	}
	token, err := params.ResolveSecret(ctx, cfg.AccessToken, cfg.AccessTokenParam)
	if err != nil {
		return nil, fmt.Errorf("app: resolve channel access token: %w", err)
	}

	ddb := awsdynamodb.NewFromConfig(awsCfg)
	clearer, err := NewClearer(ddb, cfg)
	if err != nil {
		return nil, err
	}
	store, err := repository.New(ddb, cfg.TableName, repository.WithClearer(clearer))
	if err != nil {
		return nil, fmt.Errorf("app: create list store: %w", err)
	}

	messenger, err := line.NewMessenger(token)
	if err != nil {
		return nil, fmt.Errorf("app: create messenger: %w", err)
	}

	svc, err := usecase.NewShoppingService(store, messenger, usecase.Options{
		NotifyID:    cfg.NotifyID,
		Logger:      log,
		Metrics:     m,
		ReportError: sentry.CaptureExceptionWithContext,
	})
	if err != nil {
		return nil, fmt.Errorf("app: create shopping service: %w", err)
	}

	log.Info("webhook handler ready",
		"table", store.TableName(),
		"clear_strategy", store.ClearStrategy(),
		"signature_check", cfg.ChannelSecret != "",
		"notify_target_set", cfg.NotifyID != "",
	)
	return handler.NewHandler(svc, cfg.ChannelSecret, log)
}

// NewClearer picks the delete-all implementation named by CLEAR_STRATEGY.
func NewClearer(api *awsdynamodb.Client, cfg *config.Config) (repository.Clearer, error) {
	switch cfg.ClearStrategy {
	case config.ClearStrategyScan:
		return repository.NewBatchClearer(api, cfg.TableName)
	case config.ClearStrategyRecreate, "":
		return repository.NewTableResetter(api, cfg.TableName, cfg.TableDropTimeout)
	default:
		return nil, fmt.Errorf("app: unknown clear strategy %q", cfg.ClearStrategy)
	}
}
