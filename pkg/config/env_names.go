package config

// EnvPrefix namespaces all environment variables consumed by envconfig.
const EnvPrefix = "CHEMTRADE"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvAppEnv   = "CHEMTRADE_APP_ENV"
	EnvPort     = "CHEMTRADE_APP_PORT"
	EnvDBDSN    = "CHEMTRADE_DB_DSN"
	EnvDBHost   = "CHEMTRADE_DB_HOST"
	EnvDBUser   = "CHEMTRADE_DB_USER"
	EnvDBName   = "CHEMTRADE_DB_NAME"
	EnvRedisURL = "CHEMTRADE_REDIS_URL"
	EnvJWTKey   = "CHEMTRADE_JWT_SECRET"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
