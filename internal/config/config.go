// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package config handles application configuration loading from an
// optional YAML file and environment variables. Environment variables win
// over file values, which win over built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Database drivers.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// devSessionSecret signs development sessions. Other environments refuse to
// start with it.
const devSessionSecret = "mochireviews-development-secret-do-not-use"

// minSecretLen is the minimum SESSION_SECRET length outside development.
const minSecretLen = 32

// Config holds all application configuration values.
type Config struct {
	// Server settings
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	Env      string `yaml:"env"` // "development", "production", "testing"
	LogLevel string `yaml:"log_level"`

	// Storage driver: "sqlite3" (default) or "postgres".
	DBDriver   string `yaml:"db_driver"`
	SQLitePath string `yaml:"sqlite_path"`

	// PostgreSQL connection
	DBHost     string `yaml:"postgres_host"`
	DBPort     string `yaml:"postgres_port"`
	DBUser     string `yaml:"postgres_user"`
	DBPassword string `yaml:"postgres_password"`
	DBName     string `yaml:"postgres_db"`

	// Valkey (session revocation). An empty host disables it.
	ValkeyHost     string `yaml:"valkey_host"`
	ValkeyPort     string `yaml:"valkey_port"`
	ValkeyPassword string `yaml:"valkey_password"`

	// Admin authentication
	AdminPassword     string `yaml:"admin_password"`
	AdminPasswordHash string `yaml:"admin_password_hash"`
	SessionSecret     string `yaml:"session_secret"`

	// Local uploads
	UploadDir string `yaml:"upload_dir"`

	// S3-compatible object storage. When configured, uploads go to S3
	// instead of UploadDir.
	S3Endpoint  string `yaml:"s3_endpoint"`
	S3Region    string `yaml:"s3_region"`
	S3AccessKey string `yaml:"s3_access_key"`
	S3SecretKey string `yaml:"s3_secret_key"`
	S3Bucket    string `yaml:"s3_bucket"`
	S3PublicURL string `yaml:"s3_public_url"`
}

// defaults returns the development configuration.
func defaults() *Config {
	return &Config{
		Host:     "0.0.0.0",
		Port:     "8080",
		Env:      "development",
		LogLevel: "info",

		DBDriver:   DriverSQLite,
		SQLitePath: "data/mochi.db",

		DBHost:     "localhost",
		DBPort:     "5432",
		DBUser:     "mochireviews",
		DBPassword: "changeme",
		DBName:     "mochireviews",

		ValkeyPort: "6379",

		UploadDir: "data/uploads",

		S3Region: "us-east-1",
		S3Bucket: "mochireviews-uploads",
	}
}

// Load builds the configuration. If CONFIG_FILE names a YAML file, its
// values replace the defaults; environment variables are applied last.
// Outside development, missing secrets are an error instead of falling back
// to the development defaults.
func Load() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	cfg.Host = envOrDefault("APP_HOST", cfg.Host)
	cfg.Port = envOrDefault("APP_PORT", cfg.Port)
	cfg.Env = envOrDefault("APP_ENV", cfg.Env)
	cfg.LogLevel = envOrDefault("LOG_LEVEL", cfg.LogLevel)

	cfg.DBDriver = envOrDefault("DB_DRIVER", cfg.DBDriver)
	cfg.SQLitePath = envOrDefault("SQLITE_PATH", cfg.SQLitePath)

	cfg.DBHost = envOrDefault("POSTGRES_HOST", cfg.DBHost)
	cfg.DBPort = envOrDefault("POSTGRES_PORT", cfg.DBPort)
	cfg.DBUser = envOrDefault("POSTGRES_USER", cfg.DBUser)
	cfg.DBPassword = envOrDefault("POSTGRES_PASSWORD", cfg.DBPassword)
	cfg.DBName = envOrDefault("POSTGRES_DB", cfg.DBName)

	cfg.ValkeyHost = envOrDefault("VALKEY_HOST", cfg.ValkeyHost)
	cfg.ValkeyPort = envOrDefault("VALKEY_PORT", cfg.ValkeyPort)
	cfg.ValkeyPassword = envOrDefault("VALKEY_PASSWORD", cfg.ValkeyPassword)

	cfg.AdminPassword = envOrDefault("ADMIN_PASSWORD", cfg.AdminPassword)
	cfg.AdminPasswordHash = envOrDefault("ADMIN_PASSWORD_HASH", cfg.AdminPasswordHash)
	cfg.SessionSecret = envOrDefault("SESSION_SECRET", cfg.SessionSecret)

	cfg.UploadDir = envOrDefault("UPLOAD_DIR", cfg.UploadDir)

	cfg.S3Endpoint = envOrDefault("S3_ENDPOINT", cfg.S3Endpoint)
	cfg.S3Region = envOrDefault("S3_REGION", cfg.S3Region)
	cfg.S3AccessKey = envOrDefault("S3_ACCESS_KEY", cfg.S3AccessKey)
	cfg.S3SecretKey = envOrDefault("S3_SECRET_KEY", cfg.S3SecretKey)
	cfg.S3Bucket = envOrDefault("S3_BUCKET", cfg.S3Bucket)
	cfg.S3PublicURL = envOrDefault("S3_PUBLIC_URL", cfg.S3PublicURL)

	if cfg.DBDriver != DriverSQLite && cfg.DBDriver != DriverPostgres {
		return nil, fmt.Errorf("DB_DRIVER must be %q or %q, got %q", DriverSQLite, DriverPostgres, cfg.DBDriver)
	}

	if cfg.IsDev() {
		if cfg.AdminPassword == "" && cfg.AdminPasswordHash == "" {
			cfg.AdminPassword = "admin"
		}
		if cfg.SessionSecret == "" {
			cfg.SessionSecret = devSessionSecret
		}
		return cfg, nil
	}

	if cfg.DBDriver == DriverPostgres && cfg.DBPassword == "changeme" {
		return nil, errors.New("POSTGRES_PASSWORD must be set outside development")
	}
	if cfg.AdminPassword == "" && cfg.AdminPasswordHash == "" {
		return nil, errors.New("ADMIN_PASSWORD or ADMIN_PASSWORD_HASH must be set outside development")
	}
	if len(cfg.SessionSecret) < minSecretLen {
		return nil, fmt.Errorf("SESSION_SECRET must be at least %d bytes outside development", minSecretLen)
	}

	return cfg, nil
}

// loadFile merges the YAML file at path into cfg.
func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// DSN returns the connection string for the configured driver.
func (c *Config) DSN() string {
	if c.DBDriver == DriverSQLite {
		return c.SQLitePath
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// ValkeyEnabled reports whether a Valkey host is configured.
func (c *Config) ValkeyEnabled() bool {
	return c.ValkeyHost != ""
}

// S3Enabled reports whether object storage credentials are configured.
func (c *Config) S3Enabled() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
