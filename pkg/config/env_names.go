package config

// EnvPrefix namespaces every environment variable the service reads.
const EnvPrefix = "STYLEKART"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv   = "STYLEKART_APP_ENV"
	EnvPort     = "STYLEKART_APP_PORT"
	EnvLogLevel = "STYLEKART_LOG_LEVEL"

	EnvDBDSN  = "STYLEKART_DB_DSN"
	EnvDBHost = "STYLEKART_DB_HOST"
	EnvDBUser = "STYLEKART_DB_USER"
	EnvDBName = "STYLEKART_DB_NAME"

	EnvRedisURL = "STYLEKART_REDIS_URL"

	EnvJWTSecret  = "STYLEKART_JWT_SECRET"
	EnvJWTIssuer  = "STYLEKART_JWT_ISSUER"
	EnvJWTExpMins = "STYLEKART_JWT_EXPIRATION_MINUTES"

	EnvGCPProjectID = "STYLEKART_GCP_PROJECT_ID"

	EnvPubSubNotificationTopic = "STYLEKART_PUBSUB_NOTIFICATION_TOPIC"
	EnvPubSubNotificationSub   = "STYLEKART_PUBSUB_NOTIFICATION_SUBSCRIPTION"
)

// legacyDBEnvVars are the discrete connection variables accepted when a
// full DSN is not supplied.
var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
