package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Supported values of DATABASE_DRIVER.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	App struct {
		Port     string
		LogLevel string
	}
	Database struct {
		Driver string
		DSN    string
	}
	Auth struct {
		JWTSecret    string
		TokenTTL     time.Duration
		AdminUser    string
		AdminPass    string
		AdminDisplay string
	}
	RabbitMQ struct {
		URL string
	}
	Redis struct {
		URL string
		TTL time.Duration
	}
}

// Load reads the configuration from the environment. If path names a .env
// file it is loaded first; variables already set in the environment win.
func Load(path string) (*Config, error) {
	if path != "" {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
	}

	v := viper.New()
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DATABASE_DRIVER", DriverSQLite)
	v.SetDefault("DATABASE_DSN", "inventory.db")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_TTL", 24*time.Hour)
	v.SetDefault("ADMIN_USERNAME", "admin")
	v.SetDefault("ADMIN_PASSWORD", "admin")
	v.SetDefault("ADMIN_DISPLAY_NAME", "Administrator")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("REDIS_TTL", 5*time.Minute)
	v.AutomaticEnv()

	cfg := &Config{}
	cfg.App.Port = v.GetString("APP_PORT")
	cfg.App.LogLevel = v.GetString("LOG_LEVEL")
	cfg.Database.Driver = v.GetString("DATABASE_DRIVER")
	cfg.Database.DSN = v.GetString("DATABASE_DSN")
	cfg.Auth.JWTSecret = v.GetString("JWT_SECRET")
	cfg.Auth.TokenTTL = v.GetDuration("JWT_TTL")
	cfg.Auth.AdminUser = v.GetString("ADMIN_USERNAME")
	cfg.Auth.AdminPass = v.GetString("ADMIN_PASSWORD")
	cfg.Auth.AdminDisplay = v.GetString("ADMIN_DISPLAY_NAME")
	cfg.RabbitMQ.URL = v.GetString("RABBITMQ_URL")
	cfg.Redis.URL = v.GetString("REDIS_URL")
	cfg.Redis.TTL = v.GetDuration("REDIS_TTL")

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	switch c.Database.Driver {
	case DriverSQLite, DriverPostgres, DriverMemory:
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.Database.Driver)
	}
	if c.Database.Driver != DriverMemory && c.Database.DSN == "" {
		return errors.New("DATABASE_DSN is required")
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("JWT_TTL must be positive")
	}
	return nil
}
