package config

//nolint:gosec // Environment variable keys are not credentials.
const (
	// LINE
	EnvAccessToken      = "ACCESS_TOKEN"
	EnvAccessTokenParam = "ACCESS_TOKEN_PARAM"
	EnvChannelSecret    = "CHANNEL_SECRET"
	EnvNotifyID         = "NOTIFY_ID"

	// Storage
	EnvTableName        = "TABLE_NAME"
	EnvClearStrategy    = "CLEAR_STRATEGY"
	EnvTableDropTimeout = "TABLE_DROP_TIMEOUT"

	// Observability
	EnvLogLevel          = "LOG_LEVEL"
	EnvSentryDSN         = "SENTRY_DSN"
	EnvSentryEnvironment = "SENTRY_ENVIRONMENT"

	// Server
	EnvPort = "PORT"
)
