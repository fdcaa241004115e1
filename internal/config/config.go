package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-faster/errors"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const devJWTSecret = "dev-secret-change-me"

// Config holds all application configuration.
type Config struct {
	Database DatabaseConfig
	GRPC     GRPCConfig
	Ops      OpsConfig
	Auth     AuthConfig
	COD      CODConfig
	Billing  BillingConfig
	Log      LogConfig
}

// DatabaseConfig contains database-related settings.
type DatabaseConfig struct {
	Driver string `env:"DB_DRIVER" envDefault:"sqlite3"` // sqlite3 | pgx
	DSN    string `env:"DB_DSN" envDefault:"app.db"`     // file path for sqlite3, connection string for pgx
}

// GRPCConfig contains gRPC server settings.
type GRPCConfig struct {
	Address string `env:"GRPC_ADDRESS" envDefault:":50051"`
}

// OpsConfig contains the health/metrics HTTP listener settings.
type OpsConfig struct {
	Address string `env:"OPS_ADDRESS" envDefault:":9090"`
}

// AuthConfig contains authentication settings.
type AuthConfig struct {
	JWTSecret string `env:"JWT_SECRET"`
}

// CODConfig tunes the request lifecycle.
type CODConfig struct {
	ExpiryWindow  time.Duration `env:"COD_EXPIRY_WINDOW" envDefault:"24h"`
	SweepInterval time.Duration `env:"COD_SWEEP_INTERVAL" envDefault:"5m"`
	StrictFee     bool          `env:"COD_STRICT_FEE" envDefault:"false"`
}

// BillingConfig holds the platform service fee charged per COD.
type BillingConfig struct {
	ServiceFee int64 `env:"BILLING_SERVICE_FEE" envDefault:"20000"`
}

// LogConfig controls the logrus logger.
type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"text"` // text | json
}

// Load loads configuration from .env files and environment variables.
// JWT_SECRET is required.
func Load() (*Config, error) {
	cfg, err := parse()
	if err != nil {
		return nil, err
	}
	if cfg.Auth.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET environment variable is not set; required for production")
	}
	return cfg, nil
}

// LoadWithDefaults is like Load but uses a safe default for JWT_SECRET in development.
// WARNING: Only use in development! Use Load() in production.
func LoadWithDefaults() (*Config, error) {
	cfg, err := parse()
	if err != nil {
		return nil, err
	}
	if cfg.Auth.JWTSecret == "" {
		cfg.Auth.JWTSecret = devJWTSecret
	}
	return cfg, nil
}

func parse() (*Config, error) {
	if err := loadEnvFiles(".env", ".env.local"); err != nil {
		return nil, errors.Wrap(err, "load env files")
	}
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.Wrap(err, "parse env")
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadEnvFiles loads the files that exist; variables already set in the environment win.
func loadEnvFiles(files ...string) error {
	existing := make([]string, 0, len(files))
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "sqlite3", "pgx":
	default:
		return errors.Errorf("invalid DB_DRIVER=%q (expected sqlite3|pgx)", c.Database.Driver)
	}
	if c.COD.ExpiryWindow <= 0 {
		return errors.Errorf("COD_EXPIRY_WINDOW must be positive, got %s", c.COD.ExpiryWindow)
	}
	if c.Billing.ServiceFee < 0 {
		return errors.Errorf("BILLING_SERVICE_FEE must be non-negative, got %d", c.Billing.ServiceFee)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return errors.Errorf("invalid LOG_FORMAT=%q (expected text|json)", c.Log.Format)
	}
	return nil
}

// Logger builds the process logger from the log settings.
func (c *Config) Logger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	level, err := logrus.ParseLevel(c.Log.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)
	if strings.EqualFold(c.Log.Format, "json") {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return l
}

// String returns a string representation of the config (sensitive values are masked).
func (c *Config) String() string {
	dsn := c.Database.DSN
	if c.Database.Driver == "pgx" {
		dsn = "*** (masked) ***"
	}
	return fmt.Sprintf("Config{DB: %s %s, gRPC: %s, ops: %s, expiry: %s, Auth: *** (masked) ***}",
		c.Database.Driver, dsn, c.GRPC.Address, c.Ops.Address, c.COD.ExpiryWindow)
}
