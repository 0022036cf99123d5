package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	FollowUp      FollowUpConfig
	Directory     DirectoryConfig
	Cron          CronConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
	Outbox        OutboxConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"RECRUITDESK_APP_ENV" required:"true"`
	Port         string `envconfig:"RECRUITDESK_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"RECRUITDESK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"RECRUITDESK_LOG_WARN_STACK" default:"false"`
	// CORSOrigins is a comma separated list of dashboard origins.
	CORSOrigins []string `envconfig:"RECRUITDESK_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd) || strings.EqualFold(a.Env, "production")
}

type ServiceConfig struct {
	Kind string `envconfig:"RECRUITDESK_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"RECRUITDESK_DB_DSN"`
	Driver string `envconfig:"RECRUITDESK_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"RECRUITDESK_DB_HOST"`
	LegacyPort     int    `envconfig:"RECRUITDESK_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"RECRUITDESK_DB_USER"`
	LegacyPassword string `envconfig:"RECRUITDESK_DB_PASSWORD"`
	LegacyName     string `envconfig:"RECRUITDESK_DB_NAME"`
	LegacySSLMode  string `envconfig:"RECRUITDESK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"RECRUITDESK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"RECRUITDESK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"RECRUITDESK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"RECRUITDESK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// NormalizedDriver returns the lower-cased driver name, defaulting to postgres.
func (db DBConfig) NormalizedDriver() string {
	driver := strings.ToLower(strings.TrimSpace(db.Driver))
	if driver == "" {
		return DriverPostgres
	}
	return driver
}

type RedisConfig struct {
	URL          string        `envconfig:"RECRUITDESK_REDIS_URL" required:"true"`
	Address      string        `envconfig:"RECRUITDESK_REDIS_ADDR"`
	Password     string        `envconfig:"RECRUITDESK_REDIS_PASSWORD"`
	DB           int           `envconfig:"RECRUITDESK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"RECRUITDESK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"RECRUITDESK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"RECRUITDESK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"RECRUITDESK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"RECRUITDESK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"RECRUITDESK_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"RECRUITDESK_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"RECRUITDESK_JWT_EXPIRATION_MINUTES" required:"true"`
}

// TTL returns the access token lifetime.
func (j JWTConfig) TTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"RECRUITDESK_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"RECRUITDESK_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"RECRUITDESK_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"RECRUITDESK_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"RECRUITDESK_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"RECRUITDESK_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	// LoginIdentityLimit applies per employee code or email named in the body.
	LoginIdentityLimit int           `envconfig:"RECRUITDESK_AUTH_RATE_LIMIT_LOGIN_IDENTITY_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"RECRUITDESK_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"RECRUITDESK_AUTO_MIGRATE" default:"false"`
}

// FollowUpConfig tunes the assignment lifecycle rules.
type FollowUpConfig struct {
	TimezoneOffsetMinutes int           `envconfig:"RECRUITDESK_FOLLOWUP_TZ_OFFSET_MINUTES" default:"330"`
	MaskWindowDays        int           `envconfig:"RECRUITDESK_FOLLOWUP_MASK_WINDOW_DAYS" default:"100"`
	ReassignLockTTL       time.Duration `envconfig:"RECRUITDESK_FOLLOWUP_REASSIGN_LOCK_TTL" default:"30s"`
}

// DirectoryConfig controls the employee directory cache.
type DirectoryConfig struct {
	CacheTTL time.Duration `envconfig:"RECRUITDESK_DIRECTORY_CACHE_TTL" default:"15m"`
}

type CronConfig struct {
	Schedule string        `envconfig:"RECRUITDESK_CRON_SCHEDULE" default:"CRON_TZ=Asia/Kolkata 5 0 * * *"`
	LockTTL  time.Duration `envconfig:"RECRUITDESK_CRON_LOCK_TTL" default:"1h"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"RECRUITDESK_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	AssignmentsTopic string `envconfig:"RECRUITDESK_PUBSUB_ASSIGNMENTS_TOPIC" default:"rd-assignment-events"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"RECRUITDESK_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"RECRUITDESK_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"RECRUITDESK_OUTBOX_MAX_ATTEMPTS" default:"10"`
	RetentionDays  int `envconfig:"RECRUITDESK_OUTBOX_RETENTION_DAYS" default:"30"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.NormalizedDriver() == DriverSQLite {
		db.DSN = "file:recruitdesk.db?cache=shared"
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	if db.NormalizedDriver() == DriverMySQL {
		db.DSN = fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4",
			db.LegacyUser, db.LegacyPassword, db.LegacyHost, db.LegacyPort, db.LegacyName)
		return nil
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
