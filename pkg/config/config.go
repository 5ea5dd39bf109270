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
	CORS          CORSConfig
	FeatureFlags  FeatureFlagsConfig
	GCP           GCPConfig
	GCS           GCSConfig
	Media         MediaConfig
	Invoicing     InvoicingConfig
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
	Env          string `envconfig:"PRINTFORGE_APP_ENV" required:"true"`
	Port         string `envconfig:"PRINTFORGE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"PRINTFORGE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PRINTFORGE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"PRINTFORGE_DB_DSN"`
	Driver string `envconfig:"PRINTFORGE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"PRINTFORGE_DB_HOST"`
	LegacyPort     int    `envconfig:"PRINTFORGE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"PRINTFORGE_DB_USER"`
	LegacyPassword string `envconfig:"PRINTFORGE_DB_PASSWORD"`
	LegacyName     string `envconfig:"PRINTFORGE_DB_NAME"`
	LegacySSLMode  string `envconfig:"PRINTFORGE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"PRINTFORGE_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"PRINTFORGE_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"PRINTFORGE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PRINTFORGE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"PRINTFORGE_REDIS_URL" required:"true"`
	Password     string        `envconfig:"PRINTFORGE_REDIS_PASSWORD"`
	DB           int           `envconfig:"PRINTFORGE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PRINTFORGE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PRINTFORGE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PRINTFORGE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PRINTFORGE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PRINTFORGE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"PRINTFORGE_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"PRINTFORGE_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"PRINTFORGE_JWT_EXPIRATION_MINUTES" default:"30"`
	RefreshTokenTTLMinutes int    `envconfig:"PRINTFORGE_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"PRINTFORGE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"PRINTFORGE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"PRINTFORGE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"PRINTFORGE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"PRINTFORGE_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"PRINTFORGE_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit int           `envconfig:"PRINTFORGE_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit    int           `envconfig:"PRINTFORGE_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"PRINTFORGE_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"PRINTFORGE_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"PRINTFORGE_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"PRINTFORGE_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"PRINTFORGE_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName        string        `envconfig:"PRINTFORGE_GCS_BUCKET_NAME" required:"true"`
	UploadURLExpiry   time.Duration `envconfig:"PRINTFORGE_GCS_UPLOAD_URL_EXPIRY" default:"15m"`
	DownloadURLExpiry time.Duration `envconfig:"PRINTFORGE_GCS_DOWNLOAD_URL_EXPIRY" default:"1h"`
}

type MediaConfig struct {
	ImageMaxUploadMB int `envconfig:"PRINTFORGE_MEDIA_IMAGE_MAX_UPLOAD_MB" default:"5"`
	ModelMaxUploadMB int `envconfig:"PRINTFORGE_MEDIA_MODEL_MAX_UPLOAD_MB" default:"100"`
}

type InvoicingConfig struct {
	// NumberMaxAttempts bounds the retry loop when a generated invoice
	// number collides with an existing one.
	NumberMaxAttempts int `envconfig:"PRINTFORGE_INVOICE_NUMBER_MAX_ATTEMPTS" default:"5"`
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
