package config

import (
	"errors"
	"fmt"
)

// DatabaseConfig holds the issue mirror database configuration.
// Only used when the tracker source is "database".
type DatabaseConfig struct {
	// Driver is postgres or sqlite.
	Driver   string `yaml:"driver"`
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"sslmode"`
	TimeZone string `yaml:"timezone"`
	// Path is the sqlite database file.
	Path string `yaml:"path"`
	// MigrationsPath is the golang-migrate source directory.
	MigrationsPath string `yaml:"migrations_path"`
}

// DefaultDatabaseConfig returns database defaults.
func DefaultDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Driver:         "postgres",
		Host:           "localhost",
		Port:           "5432",
		User:           "postgres",
		Password:       "postgres",
		Name:           "jira_digest",
		SSLMode:        "disable",
		TimeZone:       "UTC",
		Path:           "jira_digest.db",
		MigrationsPath: "migrations",
	}
}

// LoadDatabaseConfigFromEnv loads database configuration from environment variables.
func LoadDatabaseConfigFromEnv() DatabaseConfig {
	return DefaultDatabaseConfig().withEnv()
}

func (c DatabaseConfig) withEnv() DatabaseConfig {
	return DatabaseConfig{
		Driver:         GetEnv("DB_DRIVER", c.Driver),
		Host:           GetEnv("DB_HOST", c.Host),
		Port:           GetEnv("DB_PORT", c.Port),
		User:           GetEnv("DB_USER", c.User),
		Password:       GetEnv("DB_PASSWORD", c.Password),
		Name:           GetEnv("DB_NAME", c.Name),
		SSLMode:        GetEnv("DB_SSLMODE", c.SSLMode),
		TimeZone:       GetEnv("DB_TIMEZONE", c.TimeZone),
		Path:           GetEnv("DB_PATH", c.Path),
		MigrationsPath: GetEnv("MIGRATIONS_PATH", c.MigrationsPath),
	}
}

// DSN builds the driver specific data source name.
func (c DatabaseConfig) DSN() string {
	if c.Driver == "sqlite" {
		return c.Path
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		c.Host, c.User, c.Password, c.Name, c.Port, c.SSLMode, c.TimeZone)
}

// Validate validates database configuration.
func (c DatabaseConfig) Validate() error {
	switch c.Driver {
	case "sqlite":
		if c.Path == "" {
			return errors.New("DB_PATH is required for sqlite")
		}
	case "postgres":
		if c.Host == "" || c.Name == "" {
			return errors.New("DB_HOST and DB_NAME are required for postgres")
		}
	default:
		return fmt.Errorf("invalid DB_DRIVER: %s (must be: postgres, sqlite)", c.Driver)
	}
	return nil
}
