package config

import (
	"fmt"
	"net"
	"strings"
	"time"
)

// ServerConfig holds the optional health/preview HTTP server configuration.
// The server only runs alongside the scheduler.
type ServerConfig struct {
	// Enabled starts the HTTP server next to the scheduler.
	Enabled bool `yaml:"enabled"`
	// Host is the server host (empty string means all interfaces).
	Host string `yaml:"host"`
	// Port is the server port (e.g., ":8080" or "8080").
	Port string `yaml:"port"`
	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeout time.Duration `yaml:"read_timeout"`
	// WriteTimeout is the maximum duration before timing out writes.
	// Preview requests build a digest, so this needs to cover a full run.
	WriteTimeout time.Duration `yaml:"write_timeout"`
	// IdleTimeout is the maximum amount of time to wait for the next request.
	IdleTimeout time.Duration `yaml:"idle_timeout"`
}

// DefaultServerConfig returns server defaults.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Port:         ":8080",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}
}

// LoadServerConfigFromEnv loads server configuration from environment variables.
func LoadServerConfigFromEnv() ServerConfig {
	return DefaultServerConfig().withEnv()
}

func (c ServerConfig) withEnv() ServerConfig {
	return ServerConfig{
		Enabled:      GetEnvBool("SERVER_ENABLED", c.Enabled),
		Host:         GetEnv("SERVER_HOST", c.Host),
		Port:         GetEnv("SERVER_PORT", c.Port),
		ReadTimeout:  GetEnvDuration("SERVER_READ_TIMEOUT", c.ReadTimeout),
		WriteTimeout: GetEnvDuration("SERVER_WRITE_TIMEOUT", c.WriteTimeout),
		IdleTimeout:  GetEnvDuration("SERVER_IDLE_TIMEOUT", c.IdleTimeout),
	}
}

// GetAddress returns the full server address (host:port).
func (c ServerConfig) GetAddress() string {
	if c.Host == "" {
		return c.Port
	}

	// Remove leading colon from port if present, as net.JoinHostPort adds it
	port := strings.TrimPrefix(c.Port, ":")
	return net.JoinHostPort(c.Host, port)
}

// Validate validates server configuration. A disabled server is always valid.
func (c ServerConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.ReadTimeout <= 0 {
		return fmt.Errorf("ReadTimeout must be greater than 0")
	}
	if c.WriteTimeout <= 0 {
		return fmt.Errorf("WriteTimeout must be greater than 0")
	}
	if c.IdleTimeout <= 0 {
		return fmt.Errorf("IdleTimeout must be greater than 0")
	}
	return nil
}
