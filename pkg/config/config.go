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
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	OTP           OTPConfig
	Mail          MailConfig
	GCS           GCSConfig
	Orders        OrdersConfig
	Outbox        OutboxConfig
	PubSub        PubSubConfig
	FeatureFlags  FeatureFlagsConfig
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
	Env          string `envconfig:"SPICEPALACE_APP_ENV" required:"true"`
	Port         string `envconfig:"SPICEPALACE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SPICEPALACE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SPICEPALACE_LOG_WARN_STACK" default:"false"`
	CORSOrigins  string `envconfig:"SPICEPALACE_CORS_ORIGINS" default:"http://localhost:8080"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// CORSOriginList splits the configured comma-separated origins.
func (a AppConfig) CORSOriginList() []string {
	parts := strings.Split(a.CORSOrigins, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

type DBConfig struct {
	DSN    string `envconfig:"SPICEPALACE_DB_DSN"`
	Driver string `envconfig:"SPICEPALACE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SPICEPALACE_DB_HOST"`
	LegacyPort     int    `envconfig:"SPICEPALACE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SPICEPALACE_DB_USER"`
	LegacyPassword string `envconfig:"SPICEPALACE_DB_PASSWORD"`
	LegacyName     string `envconfig:"SPICEPALACE_DB_NAME"`
	LegacySSLMode  string `envconfig:"SPICEPALACE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SPICEPALACE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SPICEPALACE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SPICEPALACE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SPICEPALACE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SPICEPALACE_REDIS_URL" required:"true"`
	PoolSize     int           `envconfig:"SPICEPALACE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SPICEPALACE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SPICEPALACE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SPICEPALACE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SPICEPALACE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"SPICEPALACE_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"SPICEPALACE_JWT_ISSUER" default:"spicepalace"`
	ExpirationMinutes int    `envconfig:"SPICEPALACE_JWT_EXPIRATION_MINUTES" default:"10080"`
}

// Expiration returns the access token lifetime.
func (j JWTConfig) Expiration() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"SPICEPALACE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"SPICEPALACE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"SPICEPALACE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"SPICEPALACE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"SPICEPALACE_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"SPICEPALACE_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit int           `envconfig:"SPICEPALACE_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit    int           `envconfig:"SPICEPALACE_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	OTPWindow       time.Duration `envconfig:"SPICEPALACE_AUTH_RATE_LIMIT_OTP_WINDOW" default:"5m"`
	OTPEmailLimit   int           `envconfig:"SPICEPALACE_AUTH_RATE_LIMIT_OTP_EMAIL_LIMIT" default:"3"`
	OTPIPLimit      int           `envconfig:"SPICEPALACE_AUTH_RATE_LIMIT_OTP_IP_LIMIT" default:"20"`
}

type OTPConfig struct {
	TTL time.Duration `envconfig:"SPICEPALACE_OTP_TTL" default:"5m"`
}

type MailConfig struct {
	ResendAPIKey string `envconfig:"SPICEPALACE_RESEND_API_KEY"`
	FromAddress  string `envconfig:"SPICEPALACE_MAIL_FROM" default:"Spice Palace <no-reply@spicepalace.example>"`
}

type GCSConfig struct {
	BucketName      string        `envconfig:"SPICEPALACE_GCS_BUCKET_NAME"`
	CredentialsJSON string        `envconfig:"SPICEPALACE_GCP_CREDENTIALS_JSON"`
	UploadTimeout   time.Duration `envconfig:"SPICEPALACE_GCS_UPLOAD_TIMEOUT" default:"30s"`
}

type OrdersConfig struct {
	TransitionPolicy string `envconfig:"SPICEPALACE_ORDERS_TRANSITION_POLICY" default:"strict"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"SPICEPALACE_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"SPICEPALACE_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"SPICEPALACE_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type PubSubConfig struct {
	ProjectID   string `envconfig:"SPICEPALACE_GCP_PROJECT_ID"`
	OrdersTopic string `envconfig:"SPICEPALACE_PUBSUB_ORDERS_TOPIC" default:"sp-order-events"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"SPICEPALACE_AUTO_MIGRATE" default:"false"`
	// AdminGuard gates mutating catalog and order-status routes behind an
	// admin JWT. Off by default to match the frontend's current contract.
	AdminGuard bool `envconfig:"SPICEPALACE_ADMIN_GUARD" default:"false"`
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
