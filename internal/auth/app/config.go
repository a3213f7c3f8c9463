package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/NathanHTC/Authentication/pkg/jwtx"
	"github.com/caarlos0/env/v11"
)

const (
	DatabaseDriverSQLite   = "sqlite"
	DatabaseDriverPostgres = "postgres"

	LockDriverMemory = "memory"
	LockDriverRedis  = "redis"
)

type Config struct {
	Env                 string        `env:"ENV" envDefault:"dev"`
	LogLevel            string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat           string        `env:"LOG_FORMAT" envDefault:"json"`
	Port                int           `env:"PORT" envDefault:"8080"`
	ShutdownGracePeriod time.Duration `env:"SHUTDOWN_GRACE_PERIOD" envDefault:"10s"`

	// ClientURL is the frontend origin used in mailed links.
	ClientURL string `env:"CLIENT_URL" envDefault:"http://localhost:3000"`

	AccessTokenSecret  string `env:"ACCESS_TOKEN_SECRET,required"`
	RefreshTokenSecret string `env:"REFRESH_TOKEN_SECRET,required"`
	EmailVerifySecret  string `env:"EMAIL_VERIFY_SECRET,required"`

	Database Database `envPrefix:"DATABASE_"`
	Email    Email    `envPrefix:"EMAIL_"`
	Lock     Lock     `envPrefix:"LOCK_"`
	Cookie   Cookie   `envPrefix:"COOKIE_"`

	// LogoutRevokesRefresh clears the stored refresh token on logout
	// instead of only clearing the cookie.
	LogoutRevokesRefresh bool `env:"AUTH_LOGOUT_REVOKES_REFRESH" envDefault:"false"`
}

// Database selects and configures the credential store.
type Database struct {
	Driver string `env:"DRIVER" envDefault:"sqlite"`

	// File is the sqlite database path.
	File string `env:"FILE" envDefault:"auth.db"`

	// DSN is the postgres connection string.
	DSN string `env:"DSN"`
}

// Email configures SMTP delivery. An empty Host logs mails instead.
type Email struct {
	Host           string `env:"HOST"`
	Port           int    `env:"PORT" envDefault:"587"`
	User           string `env:"USER"`
	Password       string `env:"PASSWORD"`
	From           string `env:"FROM"`
	FromName       string `env:"FROM_NAME" envDefault:"Mail"`
	AllowPlaintext bool   `env:"ALLOW_PLAINTEXT" envDefault:"false"`
}

// Lock selects the per-account lock used around refresh rotation.
type Lock struct {
	Driver    string        `env:"DRIVER" envDefault:"memory"`
	RedisAddr string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	TTL       time.Duration `env:"TTL" envDefault:"5s"`
}

type Cookie struct {
	Secure bool   `env:"SECURE" envDefault:"true"`
	Domain string `env:"DOMAIN"`
}

// LoadConfig reads the configuration from the process environment.
func LoadConfig() (Config, error) {
	return parseConfig(env.Options{})
}

func parseConfig(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Secrets returns the token signing secrets.
func (c Config) Secrets() jwtx.Secrets {
	return jwtx.Secrets{
		Access:      []byte(c.AccessTokenSecret),
		Refresh:     []byte(c.RefreshTokenSecret),
		EmailVerify: []byte(c.EmailVerifySecret),
	}
}

func (c Config) Validate() error {
	var errs []error

	if err := c.Secrets().Validate(); err != nil {
		errs = append(errs, err)
	}

	switch c.Database.Driver {
	case DatabaseDriverSQLite:
		if c.Database.File == "" {
			errs = append(errs, errors.New("DATABASE_FILE is required for sqlite"))
		}
	case DatabaseDriverPostgres:
		if c.Database.DSN == "" {
			errs = append(errs, errors.New("DATABASE_DSN is required for postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown DATABASE_DRIVER %q", c.Database.Driver))
	}

	switch c.Lock.Driver {
	case LockDriverMemory:
	case LockDriverRedis:
		if c.Lock.RedisAddr == "" {
			errs = append(errs, errors.New("LOCK_REDIS_ADDR is required for redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown LOCK_DRIVER %q", c.Lock.Driver))
	}

	if c.Email.Host != "" && c.Email.From == "" && c.Email.User == "" {
		errs = append(errs, errors.New("EMAIL_FROM or EMAIL_USER is required when EMAIL_HOST is set"))
	}

	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid PORT %d", c.Port))
	}

	return errors.Join(errs...)
}
