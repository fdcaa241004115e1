package config

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func TestLoadWithDefaults_Succeeds(t *testing.T) {
	// Ensure envs are clean to use defaults
	os.Unsetenv("DB_DSN")
	os.Unsetenv("DB_DRIVER")
	os.Unsetenv("GRPC_ADDRESS")
	os.Unsetenv("JWT_SECRET")
	os.Unsetenv("COD_EXPIRY_WINDOW")
	cfg, err := LoadWithDefaults()
	if err != nil {
		t.Fatalf("LoadWithDefaults: %v", err)
	}
	if cfg.GRPC.Address == "" || cfg.Database.DSN == "" || cfg.Auth.JWTSecret == "" {
		t.Fatalf("unexpected empty defaults: %+v", cfg)
	}
	if cfg.COD.ExpiryWindow != 24*time.Hour {
		t.Fatalf("expiry window = %s, want 24h", cfg.COD.ExpiryWindow)
	}
	if cfg.Billing.ServiceFee != 20000 {
		t.Fatalf("service fee = %d, want 20000", cfg.Billing.ServiceFee)
	}
}

func TestLoad_RequiresJWTSecret(t *testing.T) {
	os.Unsetenv("JWT_SECRET")
	t.Setenv("DB_DSN", "test.db")
	t.Setenv("GRPC_ADDRESS", ":1234")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error when JWT_SECRET is not set")
	}
	t.Setenv("JWT_SECRET", "x")
	if _, err := Load(); err != nil {
		t.Fatalf("Load with secret set: %v", err)
	}
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	t.Setenv("JWT_SECRET", "x")
	t.Setenv("DB_DRIVER", "oracle")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unsupported driver")
	}
	t.Setenv("DB_DRIVER", "sqlite3")
	t.Setenv("COD_EXPIRY_WINDOW", "not-a-duration")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for malformed duration")
	}
}

func TestString_MasksSecrets(t *testing.T) {
	cfg := &Config{
		Database: DatabaseConfig{Driver: "pgx", DSN: "postgres://u:p@h/db"},
		Auth:     AuthConfig{JWTSecret: "top-secret"},
	}
	s := cfg.String()
	if strings.Contains(s, "top-secret") || strings.Contains(s, "u:p@") {
		t.Fatalf("secrets leaked: %s", s)
	}
}

func TestLogger_Level(t *testing.T) {
	cfg := &Config{Log: LogConfig{Level: "debug", Format: "json"}}
	l := cfg.Logger()
	if l.GetLevel() != logrus.DebugLevel {
		t.Fatalf("level = %s, want debug", l.GetLevel())
	}
	if _, ok := l.Formatter.(*logrus.JSONFormatter); !ok {
		t.Fatalf("expected json formatter")
	}
}
