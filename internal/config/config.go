// Package config reads server settings from the environment, after loading a
// .env file when one exists.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverMongo  = "mongo"
	DriverSQLite = "sqlite"
)

type Config struct {
	Port   string
	AppEnv string

	StoreDriver string
	MongoURI    string
	DBName      string
	SQLitePath  string

	JWTSecret  string
	SessionTTL time.Duration

	AdminUsername string
	AdminPassword string

	ClassifierURL     string
	ClassifierTimeout time.Duration

	ResendAPIKey string
	FromEmail    string
	NotifyEmail  string

	CORSOrigins []string
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// Load ignores a missing .env; variables set directly always win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	sessionTTL, err := getDuration("SESSION_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}
	classifierTimeout, err := getDuration("CLASSIFIER_TIMEOUT", 3*time.Second)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:              getEnv("PORT", "8080"),
		AppEnv:            getEnv("APP_ENV", "production"),
		StoreDriver:       strings.ToLower(getEnv("STORE_DRIVER", DriverMongo)),
		MongoURI:          getEnv("MONGODB_URI", ""),
		DBName:            getEnv("DB_NAME", "feedback"),
		SQLitePath:        getEnv("SQLITE_PATH", "feedback.db"),
		JWTSecret:         getEnv("JWT_SECRET", ""),
		SessionTTL:        sessionTTL,
		AdminUsername:     getEnv("ADMIN_USERNAME", ""),
		AdminPassword:     getEnv("ADMIN_PASSWORD", ""),
		ClassifierURL:     getEnv("CLASSIFIER_URL", ""),
		ClassifierTimeout: classifierTimeout,
		ResendAPIKey:      getEnv("RESEND_API_KEY", ""),
		FromEmail:         getEnv("FROM_EMAIL", "feedback@resend.dev"),
		NotifyEmail:       getEnv("NOTIFY_EMAIL", ""),
		CORSOrigins:       splitList(getEnv("CORS_ORIGINS", "*")),
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	switch c.StoreDriver {
	case DriverMongo:
		if c.MongoURI == "" {
			errs = append(errs, errors.New("MONGODB_URI is required when STORE_DRIVER=mongo"))
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			errs = append(errs, errors.New("SQLITE_PATH is required when STORE_DRIVER=sqlite"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", DriverMongo, DriverSQLite, c.StoreDriver))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	if c.ClassifierTimeout <= 0 {
		errs = append(errs, errors.New("CLASSIFIER_TIMEOUT must be positive"))
	}
	if (c.AdminUsername == "") != (c.AdminPassword == "") {
		errs = append(errs, errors.New("ADMIN_USERNAME and ADMIN_PASSWORD must be set together"))
	}
	return errors.Join(errs...)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
