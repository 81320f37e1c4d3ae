package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App       AppConfig
	DB        DBConfig
	Redis     RedisConfig
	Security  SecurityConfig
	Session   SessionConfig
	RateLimit RateLimitConfig
	Features  FeaturesConfig
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
	Env          string `envconfig:"CAFENOWA_APP_ENV" required:"true"`
	Port         string `envconfig:"CAFENOWA_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"CAFENOWA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CAFENOWA_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"CAFENOWA_DB_DSN"`
	Driver string `envconfig:"CAFENOWA_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"CAFENOWA_DB_HOST"`
	Port     int    `envconfig:"CAFENOWA_DB_PORT" default:"5432"`
	User     string `envconfig:"CAFENOWA_DB_USER"`
	Password string `envconfig:"CAFENOWA_DB_PASSWORD"`
	Name     string `envconfig:"CAFENOWA_DB_NAME"`
	SSLMode  string `envconfig:"CAFENOWA_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CAFENOWA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CAFENOWA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CAFENOWA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CAFENOWA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
	QueryTimeout    time.Duration `envconfig:"CAFENOWA_DB_QUERY_TIMEOUT" default:"5s"`
}

type RedisConfig struct {
	URL          string        `envconfig:"CAFENOWA_REDIS_URL"`
	Address      string        `envconfig:"CAFENOWA_REDIS_ADDR"`
	Password     string        `envconfig:"CAFENOWA_REDIS_PASSWORD"`
	DB           int           `envconfig:"CAFENOWA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CAFENOWA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CAFENOWA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CAFENOWA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CAFENOWA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CAFENOWA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// SecurityConfig carries credential hashing and lockout accounting knobs.
// Defaults mirror the values the café has run with in production: bcrypt
// cost 12, five failed attempts inside a 15 minute window.
type SecurityConfig struct {
	BcryptCost       int           `envconfig:"CAFENOWA_BCRYPT_COST" default:"12"`
	MaxLoginAttempts int           `envconfig:"CAFENOWA_MAX_LOGIN_ATTEMPTS" default:"5"`
	LockoutWindow    time.Duration `envconfig:"CAFENOWA_LOCKOUT_WINDOW" default:"15m"`
}

type SessionConfig struct {
	TTL        time.Duration `envconfig:"CAFENOWA_SESSION_TTL" default:"1h"`
	CookieName string        `envconfig:"CAFENOWA_SESSION_COOKIE" default:"cafenowa_session"`
}

type RateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"CAFENOWA_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit int           `envconfig:"CAFENOWA_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"10"`
	LoginIPLimit    int           `envconfig:"CAFENOWA_RATE_LIMIT_LOGIN_IP_LIMIT" default:"30"`
}

type FeaturesConfig struct {
	UseSQLite   bool `envconfig:"CAFENOWA_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"CAFENOWA_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	for env, value := range map[string]string{
		"CAFENOWA_DB_HOST": db.Host,
		"CAFENOWA_DB_USER": db.User,
		"CAFENOWA_DB_NAME": db.Name,
	} {
		if value == "" {
			missing = append(missing, env)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("either CAFENOWA_DB_DSN or %s are required", strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
