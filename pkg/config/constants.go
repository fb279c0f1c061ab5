package config

// EnvPrefix is passed to envconfig; individual tags carry the full names.
const EnvPrefix = "PROFITLENS"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv    = "PROFITLENS_APP_ENV"
	EnvPort      = "PROFITLENS_APP_PORT"
	EnvDBDSN     = "PROFITLENS_DB_DSN"
	EnvDBHost    = "PROFITLENS_DB_HOST"
	EnvDBUser    = "PROFITLENS_DB_USER"
	EnvDBName    = "PROFITLENS_DB_NAME"
	EnvRedisURL  = "PROFITLENS_REDIS_URL"
	EnvJWTSecret = "PROFITLENS_JWT_SECRET"
	EnvJWTIssuer = "PROFITLENS_JWT_ISSUER"

	EnvPubSubReportsTopic = "PROFITLENS_PUBSUB_REPORTS_TOPIC"
	EnvPubSubReportsSub   = "PROFITLENS_PUBSUB_REPORTS_SUBSCRIPTION"
)

// componentDBEnvVars are required when no full DSN is supplied.
var componentDBEnvVars = []string{
	EnvDBHost,
	EnvDBUser,
	EnvDBName,
}
