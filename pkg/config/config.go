package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix  = ""
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	AuthRateLimit AuthRateLimitConfig
	Password      PasswordConfig
	Settlement    SettlementConfig
	FeatureFlags  FeatureFlagsConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
	Outbox        OutboxConfig
	Cron          CronConfig
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
	Env          string `envconfig:"MESHMART_APP_ENV" required:"true"`
	Port         string `envconfig:"MESHMART_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"MESHMART_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MESHMART_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"MESHMART_DB_DSN"`
	Driver string `envconfig:"MESHMART_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"MESHMART_DB_HOST"`
	Port     int    `envconfig:"MESHMART_DB_PORT" default:"5432"`
	User     string `envconfig:"MESHMART_DB_USER"`
	Password string `envconfig:"MESHMART_DB_PASSWORD"`
	Name     string `envconfig:"MESHMART_DB_NAME"`
	SSLMode  string `envconfig:"MESHMART_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"MESHMART_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MESHMART_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MESHMART_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MESHMART_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (d *DBConfig) ensureDSN() error {
	if d.DSN != "" {
		return nil
	}
	if d.Host == "" || d.User == "" || d.Name == "" {
		return fmt.Errorf("either MESHMART_DB_DSN or host/user/name parts are required")
	}
	d.DSN = fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(d.User),
		url.QueryEscape(d.Password),
		d.Host,
		d.Port,
		d.Name,
		d.SSLMode,
	)
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"MESHMART_REDIS_URL"`
	Address      string        `envconfig:"MESHMART_REDIS_ADDR"`
	Password     string        `envconfig:"MESHMART_REDIS_PASSWORD"`
	DB           int           `envconfig:"MESHMART_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MESHMART_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MESHMART_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MESHMART_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MESHMART_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MESHMART_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"MESHMART_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"MESHMART_JWT_ISSUER" default:"meshmart"`
	ExpirationMinutes int    `envconfig:"MESHMART_JWT_EXPIRATION_MINUTES" default:"60"`
}

// AuthRateLimitConfig throttles credential guessing on the login surface.
type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"MESHMART_AUTH_RL_LOGIN_WINDOW" default:"15m"`
	LoginIPLimit    int           `envconfig:"MESHMART_AUTH_RL_LOGIN_IP_LIMIT" default:"30"`
	LoginEmailLimit int           `envconfig:"MESHMART_AUTH_RL_LOGIN_EMAIL_LIMIT" default:"10"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"MESHMART_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"MESHMART_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"MESHMART_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"MESHMART_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"MESHMART_ARGON_KEY_LEN" default:"32"`
}

// SettlementConfig tunes order settlement behavior. The commission rate is
// expressed in basis points so it can be stored and compared exactly.
type SettlementConfig struct {
	CommissionBasisPoints  int           `envconfig:"MESHMART_COMMISSION_BASIS_POINTS" default:"200"`
	NotificationAttempts   int           `envconfig:"MESHMART_NOTIFICATION_ATTEMPTS" default:"3"`
	NotificationRetryDelay time.Duration `envconfig:"MESHMART_NOTIFICATION_RETRY_DELAY" default:"200ms"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"MESHMART_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"MESHMART_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"MESHMART_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	TopicID string `envconfig:"MESHMART_PUBSUB_TOPIC_ID" default:"meshmart-domain-events"`
}

type OutboxConfig struct {
	BatchSize    int           `envconfig:"MESHMART_OUTBOX_BATCH_SIZE" default:"100"`
	PollInterval time.Duration `envconfig:"MESHMART_OUTBOX_POLL_INTERVAL" default:"5s"`
	RetentionAge time.Duration `envconfig:"MESHMART_OUTBOX_RETENTION_AGE" default:"720h"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"MESHMART_CRON_INTERVAL" default:"1h"`
	LockTTL  time.Duration `envconfig:"MESHMART_CRON_LOCK_TTL" default:"2h"`
}
