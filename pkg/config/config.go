package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	Fees          FeesConfig
	Delivery      DeliveryConfig
	OTP           OTPConfig
	Cron          CronConfig
	FeatureFlags  FeatureFlagsConfig
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
	Env          string `envconfig:"STYLEKART_APP_ENV" required:"true"`
	Port         string `envconfig:"STYLEKART_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"STYLEKART_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STYLEKART_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"STYLEKART_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"STYLEKART_DB_DSN"`
	Driver string `envconfig:"STYLEKART_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"STYLEKART_DB_HOST"`
	LegacyPort     int    `envconfig:"STYLEKART_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"STYLEKART_DB_USER"`
	LegacyPassword string `envconfig:"STYLEKART_DB_PASSWORD"`
	LegacyName     string `envconfig:"STYLEKART_DB_NAME"`
	LegacySSLMode  string `envconfig:"STYLEKART_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"STYLEKART_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"STYLEKART_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"STYLEKART_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"STYLEKART_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"STYLEKART_REDIS_URL" required:"true"`
	Address      string        `envconfig:"STYLEKART_REDIS_ADDR"`
	Password     string        `envconfig:"STYLEKART_REDIS_PASSWORD"`
	DB           int           `envconfig:"STYLEKART_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STYLEKART_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STYLEKART_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STYLEKART_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STYLEKART_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"STYLEKART_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"STYLEKART_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"STYLEKART_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"STYLEKART_JWT_EXPIRATION_MINUTES" required:"true"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"STYLEKART_AUTH_LOGIN_WINDOW" default:"15m"`
	LoginIPLimit       int           `envconfig:"STYLEKART_AUTH_LOGIN_IP_LIMIT" default:"30"`
	LoginEmailLimit    int           `envconfig:"STYLEKART_AUTH_LOGIN_EMAIL_LIMIT" default:"10"`
	RegisterWindow     time.Duration `envconfig:"STYLEKART_AUTH_REGISTER_WINDOW" default:"1h"`
	RegisterIPLimit    int           `envconfig:"STYLEKART_AUTH_REGISTER_IP_LIMIT" default:"10"`
	RegisterEmailLimit int           `envconfig:"STYLEKART_AUTH_REGISTER_EMAIL_LIMIT" default:"5"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"STYLEKART_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"STYLEKART_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"STYLEKART_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"STYLEKART_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"STYLEKART_ARGON_KEY_LEN" default:"32"`
}

type FeesConfig struct {
	ExpressPickup string `envconfig:"STYLEKART_FEES_EXPRESS_PICKUP" default:"50.00"`
}

// ExpressPickupFee parses the configured flat express pickup fee. A bad
// value falls back to the default rather than silently charging zero.
func (f FeesConfig) ExpressPickupFee() decimal.Decimal {
	fee, err := decimal.NewFromString(f.ExpressPickup)
	if err != nil || fee.IsNegative() {
		return decimal.NewFromInt(50)
	}
	return fee
}

type DeliveryConfig struct {
	ExpressWindow  time.Duration `envconfig:"STYLEKART_DELIVERY_EXPRESS_WINDOW" default:"1h"`
	StandardWindow time.Duration `envconfig:"STYLEKART_DELIVERY_STANDARD_WINDOW" default:"48h"`
}

type OTPConfig struct {
	Length        int           `envconfig:"STYLEKART_OTP_LENGTH" default:"6"`
	TTL           time.Duration `envconfig:"STYLEKART_OTP_TTL" default:"10m"`
	SweepInterval time.Duration `envconfig:"STYLEKART_OTP_SWEEP_INTERVAL" default:"5m"`
}

type CronConfig struct {
	LockTTL      time.Duration `envconfig:"STYLEKART_CRON_LOCK_TTL" default:"60s"`
	TickInterval time.Duration `envconfig:"STYLEKART_CRON_TICK_INTERVAL" default:"1m"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"STYLEKART_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"STYLEKART_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"STYLEKART_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"STYLEKART_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"STYLEKART_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	NotificationTopic        string `envconfig:"STYLEKART_PUBSUB_NOTIFICATION_TOPIC" required:"true"`
	NotificationSubscription string `envconfig:"STYLEKART_PUBSUB_NOTIFICATION_SUBSCRIPTION" required:"true"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"STYLEKART_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"STYLEKART_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"STYLEKART_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
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
