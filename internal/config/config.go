package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Supported store drivers.
const (
	DriverMongo  = "mongo"
	DriverSQLite = "sqlite"
)

// Config holds the application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Store      StoreConfig      `yaml:"store"`
	Security   SecurityConfig   `yaml:"security"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Log        LogConfig        `yaml:"log"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Port           int      `yaml:"port"`
	PublicDir      string   `yaml:"publicDir"` // Static assets root
	AllowedOrigins []string `yaml:"allowedOrigins"`
}

// StoreConfig selects and addresses the user store.
type StoreConfig struct {
	Driver     string `yaml:"driver"`
	MongoURI   string `yaml:"mongoURI"`
	Database   string `yaml:"database"`
	SQLitePath string `yaml:"sqlitePath"`
}

type SecurityConfig struct {
	BcryptCost int `yaml:"bcryptCost"`
}

type MonitoringConfig struct {
	HealthSchedule string `yaml:"healthSchedule"` // cron spec, e.g. "@every 30s"
}

// LogConfig configures the global logger. An empty File disables file output.
type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"maxSizeMB"`
	MaxBackups int    `yaml:"maxBackups"`
	MaxAgeDays int    `yaml:"maxAgeDays"`
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           8081,
			PublicDir:      "./public",
			AllowedOrigins: []string{"*"},
		},
		Store: StoreConfig{
			Driver:     DriverMongo,
			MongoURI:   "mongodb://localhost:27017",
			Database:   "userdir",
			SQLitePath: "./users.db",
		},
		Security: SecurityConfig{
			BcryptCost: 10,
		},
		Monitoring: MonitoringConfig{
			HealthSchedule: "@every 30s",
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  100,
			MaxBackups: 7,
			MaxAgeDays: 30,
		},
	}
}

// Load builds the configuration from defaults, the YAML file at path (if it
// exists) and finally the PORT and MONGODB_URI environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	if portStr, ok := os.LookupEnv("PORT"); ok {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT %q: %w", portStr, err)
		}
		cfg.Server.Port = port
	}
	cfg.Store.MongoURI = getEnv("MONGODB_URI", cfg.Store.MongoURI)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	switch c.Store.Driver {
	case DriverMongo:
		if c.Store.MongoURI == "" || c.Store.Database == "" {
			return errors.New("mongo store requires mongoURI and database")
		}
	case DriverSQLite:
		if c.Store.SQLitePath == "" {
			return errors.New("sqlite store requires sqlitePath")
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	if _, err := cron.ParseStandard(c.Monitoring.HealthSchedule); err != nil {
		return fmt.Errorf("invalid health schedule: %w", err)
	}
	return nil
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
