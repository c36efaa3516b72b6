// Package config loads server settings from an optional TOML file with
// environment variable overrides.
package config

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/BurntSushi/toml"
)

// Config is the full application configuration.
type Config struct {
	Server   Server   `toml:"server"`
	Database Database `toml:"database"`
	Auth     Auth     `toml:"auth"`
	Payments Payments `toml:"payments"`
}

// Server holds HTTP listener settings.
type Server struct {
	Port     string `toml:"port"`
	LogLevel string `toml:"log_level"`
}

// Database holds PostgreSQL connection settings.
type Database struct {
	Host     string `toml:"host"`
	Port     string `toml:"port"`
	Name     string `toml:"name"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	SSLMode  string `toml:"sslmode"`
}

// Auth holds HTTP Basic Auth credentials. Both empty disables auth.
type Auth struct {
	User     string `toml:"user"`
	Password string `toml:"password"`
}

// Payments holds ledger defaults.
type Payments struct {
	DefaultType string `toml:"default_type"`
}

// DSN returns the pgx connection string.
func (d Database) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

// Load reads the TOML file named by SGPS_CONFIG (default "sgps.toml" when it
// exists), then applies environment overrides on top of the defaults.
func Load() (Config, error) {
	cfg := Config{
		Server:   Server{Port: "3000", LogLevel: "info"},
		Database: Database{Host: "localhost", Port: "5432", Name: "sgps_db", User: "postgres", SSLMode: "disable"},
		Payments: Payments{DefaultType: "efectivo"},
	}

	path := os.Getenv("SGPS_CONFIG")
	explicit := path != ""
	if path == "" {
		path = "sgps.toml"
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if explicit || !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("loading config %s: %w", path, err)
		}
	} else {
		slog.Info("config loaded", "path", path)
	}

	override(&cfg.Server.Port, "PORT")
	override(&cfg.Server.LogLevel, "LOG_LEVEL")
	override(&cfg.Database.Host, "DB_HOST")
	override(&cfg.Database.Port, "DB_PORT")
	override(&cfg.Database.Name, "DB_DATABASE")
	override(&cfg.Database.User, "DB_USER")
	override(&cfg.Database.Password, "DB_PASSWORD")
	override(&cfg.Database.SSLMode, "DB_SSLMODE")
	override(&cfg.Auth.User, "AUTH_USER")
	override(&cfg.Auth.Password, "AUTH_PASS")
	override(&cfg.Payments.DefaultType, "PAYMENT_DEFAULT_TYPE")

	return cfg, nil
}

func override(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
