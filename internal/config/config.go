// Package config provides typed, environment-driven configuration for the digest.
package config

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig marks missing or invalid settings. It is fatal before any query is issued.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds application configuration.
type Config struct {
	// Tracker selects and configures the issue source.
	Tracker TrackerConfig `yaml:"tracker"`
	// Database configures the issue mirror (tracker source "database").
	Database DatabaseConfig `yaml:"database"`
	// Report controls digest contents.
	Report ReportConfig `yaml:"report"`
	// Mail, Chat and Telegram are the optional delivery channels.
	Mail     MailConfig     `yaml:"mail"`
	Chat     ChatConfig     `yaml:"chat"`
	Telegram TelegramConfig `yaml:"telegram"`
	// Schedule drives the scheduler command.
	Schedule ScheduleConfig `yaml:"schedule"`
	// Server holds the health/preview HTTP server configuration.
	Server ServerConfig `yaml:"server"`
	// Logger holds logger configuration.
	Logger LoggerConfig `yaml:"logger"`
	// GinMode is the Gin framework mode (debug, release, test).
	GinMode string `yaml:"gin_mode"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Tracker:  DefaultTrackerConfig(),
		Database: DefaultDatabaseConfig(),
		Report:   DefaultReportConfig(),
		Mail:     DefaultMailConfig(),
		Chat:     DefaultChatConfig(),
		Telegram: DefaultTelegramConfig(),
		Schedule: DefaultScheduleConfig(),
		Server:   DefaultServerConfig(),
		Logger:   DefaultLoggerConfig(),
		GinMode:  "release",
	}
}

// LoadFromEnv loads all configuration from environment variables on top of defaults.
func LoadFromEnv() Config {
	return Default().WithEnv()
}

// WithEnv returns c with every section overridden by the environment.
func (c Config) WithEnv() Config {
	return Config{
		Tracker:  c.Tracker.withEnv(),
		Database: c.Database.withEnv(),
		Report:   c.Report.withEnv(),
		Mail:     c.Mail.withEnv(),
		Chat:     c.Chat.withEnv(),
		Telegram: c.Telegram.withEnv(),
		Schedule: c.Schedule.withEnv(),
		Server:   c.Server.withEnv(),
		Logger:   c.Logger.withEnv(),
		GinMode:  GetEnv("GIN_MODE", c.GinMode),
	}
}

// Validate validates all configuration. Every failure wraps ErrInvalidConfig.
func (c Config) Validate() error {
	if err := c.Tracker.Validate(); err != nil {
		return fmt.Errorf("%w: tracker config validation failed: %w", ErrInvalidConfig, err)
	}

	if c.Tracker.Source == SourceDatabase {
		if err := c.Database.Validate(); err != nil {
			return fmt.Errorf("%w: database config validation failed: %w", ErrInvalidConfig, err)
		}
	}

	if err := c.Report.Validate(); err != nil {
		return fmt.Errorf("%w: report config validation failed: %w", ErrInvalidConfig, err)
	}

	if err := c.Mail.Validate(); err != nil {
		return fmt.Errorf("%w: mail config validation failed: %w", ErrInvalidConfig, err)
	}

	if err := c.Chat.Validate(); err != nil {
		return fmt.Errorf("%w: chat config validation failed: %w", ErrInvalidConfig, err)
	}

	if err := c.Telegram.Validate(); err != nil {
		return fmt.Errorf("%w: telegram config validation failed: %w", ErrInvalidConfig, err)
	}

	if err := c.Schedule.Validate(); err != nil {
		return fmt.Errorf("%w: schedule config validation failed: %w", ErrInvalidConfig, err)
	}

	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("%w: server config validation failed: %w", ErrInvalidConfig, err)
	}

	if err := c.Logger.Validate(); err != nil {
		return fmt.Errorf("%w: logger config validation failed: %w", ErrInvalidConfig, err)
	}

	validGinModes := map[string]bool{
		"debug":   true,
		"release": true,
		"test":    true,
	}
	if !validGinModes[c.GinMode] {
		return fmt.Errorf("%w: invalid GIN_MODE: %s (must be: debug, release, test)", ErrInvalidConfig, c.GinMode)
	}

	return nil
}
