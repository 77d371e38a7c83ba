// Package config loads the bot configuration from environment variables,
// optionally seeded from a local .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Clear strategies for the delete-all command.
const (
	ClearStrategyRecreate = "recreate"
	ClearStrategyScan     = "scan"
)

const (
	defaultTableName        = "shopping-list"
	defaultTableDropTimeout = 2 * time.Minute
	defaultLogLevel         = "info"
	defaultPort             = "8080"
)

// Config holds all application configuration
type Config struct {
	// LINE
	AccessToken      string // channel access token; wins over AccessTokenParam
	AccessTokenParam string // SSM parameter holding the token
	ChannelSecret    string // empty disables signature validation
	NotifyID         string // push target for add confirmations; empty = sender

	// DynamoDB
	TableName        string
	ClearStrategy    string
	TableDropTimeout time.Duration

	// Observability
	LogLevel          string
	SentryDSN         string
	SentryEnvironment string

	// gin server only
	Port string
}

// Load reads configuration from environment variables.
// A .env file in the working directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		AccessToken:      getEnv(EnvAccessToken, ""),
		AccessTokenParam: getEnv(EnvAccessTokenParam, ""),
		ChannelSecret:    getEnv(EnvChannelSecret, ""),
		NotifyID:         getEnv(EnvNotifyID, ""),

		TableName:        getEnv(EnvTableName, defaultTableName),
		ClearStrategy:    strings.ToLower(getEnv(EnvClearStrategy, ClearStrategyRecreate)),
		TableDropTimeout: getDurationEnv(EnvTableDropTimeout, defaultTableDropTimeout),

		LogLevel:          strings.ToLower(getEnv(EnvLogLevel, defaultLogLevel)),
		SentryDSN:         getEnv(EnvSentryDSN, ""),
		SentryEnvironment: getEnv(EnvSentryEnvironment, ""),

		Port: getEnv(EnvPort, defaultPort),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration and reports every problem at once.
func (c *Config) Validate() error {
	var errs []error

	if c.AccessToken == "" && c.AccessTokenParam == "" {
		errs = append(errs, fmt.Errorf("%s or %s is required", EnvAccessToken, EnvAccessTokenParam))
	}
	if strings.TrimSpace(c.TableName) == "" {
		errs = append(errs, fmt.Errorf("%s must not be empty", EnvTableName))
	}
	switch c.ClearStrategy {
	case ClearStrategyRecreate, ClearStrategyScan:
	default:
		errs = append(errs, fmt.Errorf("%s must be %q or %q, got %q", EnvClearStrategy, ClearStrategyRecreate, ClearStrategyScan, c.ClearStrategy))
	}
	if c.TableDropTimeout <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %v", EnvTableDropTimeout, c.TableDropTimeout))
	}
	if c.Port == "" {
		errs = append(errs, errors.New("PORT is required"))
	}

	return errors.Join(errs...)
}

// getEnv retrieves environment variable with fallback to default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDurationEnv retrieves duration environment variable with fallback to default value
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
