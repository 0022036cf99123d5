package config

// EnvPrefix is handed to envconfig; every field carries an explicit key so the
// prefix only matters for unnamed fields.
const EnvPrefix = "RECRUITDESK"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
)

const (
	EnvAppEnv       = "RECRUITDESK_APP_ENV"
	EnvPort         = "RECRUITDESK_APP_PORT"
	EnvDBDSN        = "RECRUITDESK_DB_DSN"
	EnvDBDriver     = "RECRUITDESK_DB_DRIVER"
	EnvDBHost       = "RECRUITDESK_DB_HOST"
	EnvDBUser       = "RECRUITDESK_DB_USER"
	EnvDBName       = "RECRUITDESK_DB_NAME"
	EnvDBPassword   = "RECRUITDESK_DB_PASSWORD"
	EnvRedisURL     = "RECRUITDESK_REDIS_URL"
	EnvJWTSecret    = "RECRUITDESK_JWT_SECRET"
	EnvJWTIssuer    = "RECRUITDESK_JWT_ISSUER"
	EnvJWTExpMins   = "RECRUITDESK_JWT_EXPIRATION_MINUTES"
	EnvTZOffset     = "RECRUITDESK_FOLLOWUP_TZ_OFFSET_MINUTES"
	EnvMaskWindow   = "RECRUITDESK_FOLLOWUP_MASK_WINDOW_DAYS"
	EnvCronSchedule = "RECRUITDESK_CRON_SCHEDULE"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
